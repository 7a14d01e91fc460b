// Package controller implements the compliance workflow service layer:
// it validates requests, checks preconditions, orchestrates the store and
// the generation services, and publishes domain events.
package controller

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gartstein/isocompliance/internal/compliance/chat"
	"github.com/gartstein/isocompliance/internal/compliance/documents"
	e "github.com/gartstein/isocompliance/internal/compliance/errors"
	"github.com/gartstein/isocompliance/internal/compliance/events"
	"github.com/gartstein/isocompliance/internal/compliance/models"
	"github.com/gartstein/isocompliance/internal/compliance/recommend"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventProducer interface {
	Produce(event events.Event)
}

// Repository defines the storage interface the workflow needs.
type Repository interface {
	CreateCompany(ctx context.Context, company *models.Company) error
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	ListCompanies(ctx context.Context) ([]models.Company, error)
	ReplaceSelections(ctx context.Context, companyID uuid.UUID, codes []string) ([]models.StandardSelection, error)
	ListSelections(ctx context.Context, companyID uuid.UUID) ([]models.StandardSelection, error)
	ListDocuments(ctx context.Context, companyID uuid.UUID) ([]models.Document, error)
	ListChatMessages(ctx context.Context, companyID uuid.UUID) ([]models.ChatMessage, error)
}

type DocumentGenerator interface {
	Generate(ctx context.Context, companyID uuid.UUID) (*documents.Result, error)
}

type ChatResponder interface {
	Send(ctx context.Context, companyID uuid.UUID, content string) (*chat.Exchange, error)
}

// CompanyService runs the compliance workflow for companies.
type CompanyService struct {
	repo      Repository
	documents DocumentGenerator
	chat      ChatResponder
	producer  EventProducer
	logger    *zap.Logger
}

func NewCompanyService(
	repo Repository,
	docs DocumentGenerator,
	responder ChatResponder,
	producer EventProducer,
	logger *zap.Logger,
) *CompanyService {
	return &CompanyService{
		repo:      repo,
		documents: docs,
		chat:      responder,
		producer:  producer,
		logger:    logger.Named("company_service"),
	}
}

// CreateCompany validates the profile, assigns an ID and stores it.
func (s *CompanyService) CreateCompany(ctx context.Context, company *models.Company) (*models.Company, error) {
	company.Name = strings.TrimSpace(company.Name)
	company.Sector = strings.TrimSpace(company.Sector)
	company.Size = strings.TrimSpace(company.Size)
	switch {
	case company.Name == "":
		return nil, e.Invalid("name", "name is required")
	case company.Sector == "":
		return nil, e.Invalid("sector", "sector is required")
	case company.Size == "":
		return nil, e.Invalid("size", "size is required")
	}

	company.ID = uuid.New()
	if err := s.repo.CreateCompany(ctx, company); err != nil {
		return nil, fmt.Errorf("failed to create company: %w", err)
	}
	s.publish(events.NewEvent(events.CompanyCreated, company.ID, map[string]interface{}{
		"name":   company.Name,
		"sector": company.Sector,
		"size":   company.Size,
	}))
	return company, nil
}

func (s *CompanyService) ListCompanies(ctx context.Context) ([]models.Company, error) {
	companies, err := s.repo.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list companies: %w", err)
	}
	return companies, nil
}

// GetCompany retrieves a Company by ID, returning an error if not found.
func (s *CompanyService) GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error) {
	company, err := s.repo.GetCompany(ctx, id)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}
	return company, nil
}

// RecommendStandards suggests standards for a free-text sector. Any sector,
// including an empty one, yields at least the baseline standard.
func (s *CompanyService) RecommendStandards(sector string) []string {
	return recommend.Standards(sector)
}

func (s *CompanyService) StandardCatalog() []recommend.Standard {
	return recommend.Catalog()
}

// SelectStandards replaces the company's selection with codes. Codes are
// trimmed and deduplicated keeping first occurrence; an empty list clears
// the selection.
func (s *CompanyService) SelectStandards(ctx context.Context, companyID uuid.UUID, codes []string) ([]models.StandardSelection, error) {
	normalized, err := normalizeCodes(codes)
	if err != nil {
		return nil, err
	}

	selections, err := s.repo.ReplaceSelections(ctx, companyID, normalized)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to save selections: %w", err)
	}
	s.publish(events.NewEvent(events.StandardsSelected, companyID, map[string]interface{}{
		"isos": normalized,
	}))
	return selections, nil
}

func normalizeCodes(codes []string) ([]string, error) {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.TrimSpace(code)
		if code == "" {
			return nil, e.Invalid("isos", "standard codes must not be blank")
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out, nil
}

func (s *CompanyService) ListStandards(ctx context.Context, companyID uuid.UUID) ([]models.StandardSelection, error) {
	if _, err := s.GetCompany(ctx, companyID); err != nil {
		return nil, err
	}
	selections, err := s.repo.ListSelections(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list selections: %w", err)
	}
	return selections, nil
}

// GenerateDocuments drafts and stores a document set for the company. It
// fails only when the company is unknown, has no standards selected, or
// the documents cannot be stored.
func (s *CompanyService) GenerateDocuments(ctx context.Context, companyID uuid.UUID) ([]models.Document, error) {
	result, err := s.documents.Generate(ctx, companyID)
	if err != nil {
		return nil, err
	}
	types := make([]string, 0, len(result.Documents))
	for _, doc := range result.Documents {
		types = append(types, doc.Type)
	}
	s.publish(events.NewEvent(events.DocumentsGenerated, companyID, map[string]interface{}{
		"types":    types,
		"fallback": result.Fallback,
	}))
	return result.Documents, nil
}

func (s *CompanyService) ListDocuments(ctx context.Context, companyID uuid.UUID) ([]models.Document, error) {
	if _, err := s.GetCompany(ctx, companyID); err != nil {
		return nil, err
	}
	docs, err := s.repo.ListDocuments(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func (s *CompanyService) ListChatMessages(ctx context.Context, companyID uuid.UUID) ([]models.ChatMessage, error) {
	if _, err := s.GetCompany(ctx, companyID); err != nil {
		return nil, err
	}
	msgs, err := s.repo.ListChatMessages(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	return msgs, nil
}

// SendChatMessage stores the question and the assistant's reply and
// returns the reply.
func (s *CompanyService) SendChatMessage(ctx context.Context, companyID uuid.UUID, content string) (*models.ChatMessage, error) {
	if strings.TrimSpace(content) == "" {
		return nil, e.Invalid("content", "message content is required")
	}

	exchange, err := s.chat.Send(ctx, companyID, content)
	if err != nil {
		return nil, err
	}
	s.publish(events.NewEvent(events.ChatMessageSent, companyID, map[string]interface{}{
		"fallback": exchange.Fallback,
	}))
	return exchange.Assistant, nil
}

func (s *CompanyService) publish(event events.Event) {
	go func() {
		s.producer.Produce(event)
	}()
}
