// Package llm wraps the external text-generation service used to draft
// compliance documents and answer support questions.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	ProviderGemini   = "gemini"
	ProviderDisabled = "disabled"

	defaultModel      = "gemini-2.5-pro"
	defaultTimeout    = 60 * time.Second
	defaultMaxRetries = 1
)

var (
	// ErrUnavailable is returned when no text-generation backend is configured.
	ErrUnavailable = errors.New("text generation unavailable")
	// ErrEmptyResponse is returned when the backend answers with no text.
	ErrEmptyResponse = errors.New("empty response from text generation")
)

// Prompt is a role-tagged generation request: a system instruction plus the
// user message.
type Prompt struct {
	System string
	User   string
}

// Generator produces text for a prompt. Implementations may fail or return
// text that is not in the requested shape.
type Generator interface {
	Generate(ctx context.Context, prompt Prompt) (string, error)
}

// Config selects and tunes the backend.
type Config struct {
	Provider   string
	Model      string
	APIKey     string
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
}

// New builds the configured generator wrapped with the timeout and retry
// policy. Without an API key the disabled backend is used, so callers fall
// back to their deterministic content.
func New(ctx context.Context, cfg Config, logger *zap.Logger) (Generator, error) {
	logger = logger.Named("llm")
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}

	var backend Generator
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderGemini:
		if strings.TrimSpace(cfg.APIKey) == "" {
			logger.Warn("LLM API key not set; text generation disabled")
			backend = Disabled{}
			break
		}
		g, err := NewGemini(ctx, cfg.APIKey, cfg.BaseURL, cfg.Model)
		if err != nil {
			return nil, err
		}
		logger.Info("Gemini provider selected", zap.String("model", cfg.Model))
		backend = g
	case ProviderDisabled:
		backend = Disabled{}
	default:
		return nil, fmt.Errorf("unknown llm provider %q: supported providers are gemini, disabled", cfg.Provider)
	}

	return NewRetrying(backend, cfg.Timeout, cfg.MaxRetries, logger), nil
}

// Disabled always fails with ErrUnavailable.
type Disabled struct{}

func (Disabled) Generate(context.Context, Prompt) (string, error) {
	return "", ErrUnavailable
}
