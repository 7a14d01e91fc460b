// Package documents generates draft compliance documents for a company from
// its profile and selected standards, falling back to templated content when
// the text-generation service fails.
package documents

import (
	"context"
	"errors"
	"fmt"

	e "github.com/gartstein/isocompliance/internal/compliance/errors"
	"github.com/gartstein/isocompliance/internal/compliance/llm"
	"github.com/gartstein/isocompliance/internal/compliance/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the persistence the generator needs.
type Store interface {
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	ListSelections(ctx context.Context, companyID uuid.UUID) ([]models.StandardSelection, error)
	AppendDocuments(ctx context.Context, companyID uuid.UUID, drafts []models.DocumentDraft) ([]models.Document, error)
}

// Result holds the documents created by one generation run.
type Result struct {
	Documents []models.Document
	// Fallback is set when the templated content was used.
	Fallback bool
}

// Service drafts compliance documents and stores them for a company.
type Service struct {
	store     Store
	generator llm.Generator
	logger    *zap.Logger
}

// NewService builds the document service.
func NewService(store Store, generator llm.Generator, logger *zap.Logger) *Service {
	return &Service{
		store:     store,
		generator: generator,
		logger:    logger.Named("documents"),
	}
}

// Generate drafts and appends a new set of documents for the company.
// It fails with ErrNotFound for an unknown company and ErrNoStandardsSelected
// when nothing is selected; neither case reaches the generator.
func (s *Service) Generate(ctx context.Context, companyID uuid.UUID) (*Result, error) {
	company, err := s.store.GetCompany(ctx, companyID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	selections, err := s.store.ListSelections(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list selections: %w", err)
	}
	standards := models.Codes(selections)
	if len(standards) == 0 {
		return nil, e.ErrNoStandardsSelected
	}

	drafts, fallback := s.draft(ctx, company, standards)

	// a client disconnect during generation must not discard the drafts
	docs, err := s.store.AppendDocuments(context.WithoutCancel(ctx), companyID, drafts)
	if err != nil {
		return nil, fmt.Errorf("failed to save documents: %w", err)
	}
	return &Result{Documents: docs, Fallback: fallback}, nil
}

func (s *Service) draft(ctx context.Context, company *models.Company, standards []string) ([]models.DocumentDraft, bool) {
	text, err := s.generator.Generate(ctx, BuildPrompt(company, standards))
	if err != nil {
		s.logger.Warn("Document generation failed, using fallback content",
			zap.Error(err),
			zap.String("company_id", company.ID.String()),
		)
		return Fallback(company, standards), true
	}

	parsed := ParseDrafts(text)
	if !parsed.Parsed() {
		s.logger.Warn("Generated documents unparseable, using fallback content",
			zap.String("reason", parsed.Reason),
			zap.String("company_id", company.ID.String()),
		)
		return Fallback(company, standards), true
	}
	return parsed.Drafts, false
}
