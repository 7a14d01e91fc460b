// Package chat answers support questions for a company, using its profile,
// selected standards and conversation history as context.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	e "github.com/gartstein/isocompliance/internal/compliance/errors"
	"github.com/gartstein/isocompliance/internal/compliance/llm"
	"github.com/gartstein/isocompliance/internal/compliance/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is the persistence the chat needs.
type Store interface {
	GetCompany(ctx context.Context, id uuid.UUID) (*models.Company, error)
	ListSelections(ctx context.Context, companyID uuid.UUID) ([]models.StandardSelection, error)
	ListChatMessages(ctx context.Context, companyID uuid.UUID) ([]models.ChatMessage, error)
	AppendChatMessage(ctx context.Context, msg *models.ChatMessage) error
}

// Exchange is the pair of messages stored by one Send.
type Exchange struct {
	User      *models.ChatMessage
	Assistant *models.ChatMessage
	// Fallback is set when the assistant turn is the fixed apology.
	Fallback bool
}

// Service answers support questions in the context of a company.
type Service struct {
	store         Store
	generator     llm.Generator
	historyWindow int
	logger        *zap.Logger
}

// NewService builds the chat service. historyWindow limits how many prior
// messages are rendered into the prompt; zero or less means no limit.
func NewService(store Store, generator llm.Generator, historyWindow int, logger *zap.Logger) *Service {
	return &Service{
		store:         store,
		generator:     generator,
		historyWindow: historyWindow,
		logger:        logger.Named("chat"),
	}
}

// Send stores the user message, asks the generator for a reply and stores
// the reply. A reply turn is always stored, even when generation fails.
func (s *Service) Send(ctx context.Context, companyID uuid.UUID, content string) (*Exchange, error) {
	company, err := s.store.GetCompany(ctx, companyID)
	if err != nil {
		if errors.Is(err, e.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get company: %w", err)
	}

	history, err := s.store.ListChatMessages(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}
	selections, err := s.store.ListSelections(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list selections: %w", err)
	}

	userMsg := &models.ChatMessage{CompanyID: companyID, Role: models.RoleUser, Content: content}
	if err := s.store.AppendChatMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	prompt := BuildPrompt(company, models.Codes(selections), window(history, s.historyWindow), content)
	reply, fallback := s.reply(ctx, companyID, prompt)

	// the user turn is already stored, so a client disconnect must not
	// leave it without a reply
	assistantMsg := &models.ChatMessage{CompanyID: companyID, Role: models.RoleAssistant, Content: reply}
	if err := s.store.AppendChatMessage(context.WithoutCancel(ctx), assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	return &Exchange{User: userMsg, Assistant: assistantMsg, Fallback: fallback}, nil
}

func (s *Service) reply(ctx context.Context, companyID uuid.UUID, prompt llm.Prompt) (string, bool) {
	text, err := s.generator.Generate(ctx, prompt)
	if err == nil && strings.TrimSpace(text) != "" {
		return text, false
	}
	if err == nil {
		err = llm.ErrEmptyResponse
	}
	s.logger.Warn("Chat generation failed, replying with fallback",
		zap.Error(err),
		zap.String("company_id", companyID.String()),
	)
	return FallbackReply, true
}
