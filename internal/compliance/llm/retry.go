package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	e "github.com/gartstein/isocompliance/internal/compliance/errors"
	"go.uber.org/zap"
)

// Retrying bounds each call to the wrapped generator with a timeout and
// retries failed calls with exponential backoff.
type Retrying struct {
	next       Generator
	timeout    time.Duration
	maxRetries int
	logger     *zap.Logger
	newBackOff func() backoff.BackOff
}

func NewRetrying(next Generator, timeout time.Duration, maxRetries int, logger *zap.Logger) *Retrying {
	return &Retrying{
		next:       next,
		timeout:    timeout,
		maxRetries: maxRetries,
		logger:     logger,
		newBackOff: func() backoff.BackOff { return backoff.NewExponentialBackOff() },
	}
}

// Generate returns the first successful response. The returned error wraps
// ErrExternalService.
func (r *Retrying) Generate(ctx context.Context, prompt Prompt) (string, error) {
	var text string
	attempt := 0
	op := func() error {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		out, err := r.next.Generate(callCtx, prompt)
		if err != nil {
			if errors.Is(err, ErrUnavailable) || ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			return err
		}
		text = out
		return nil
	}
	notify := func(err error, wait time.Duration) {
		r.logger.Warn("Text generation failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
		)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(r.newBackOff(), uint64(r.maxRetries)), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return "", fmt.Errorf("%w: %w", e.ErrExternalService, err)
	}
	return text, nil
}
