package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	e "github.com/gartstein/isocompliance/internal/compliance/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

// MockGenerator is a testify mock of Generator.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) Generate(ctx context.Context, prompt Prompt) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func newTestRetrying(next Generator, timeout time.Duration, retries int, logger *zap.Logger) *Retrying {
	r := NewRetrying(next, timeout, retries, logger)
	r.newBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return r
}

func TestRetrying_Success(t *testing.T) {
	gen := new(MockGenerator)
	prompt := Prompt{System: "sys", User: "hello"}
	gen.On("Generate", mock.Anything, prompt).Return("world", nil).Once()

	r := newTestRetrying(gen, time.Second, 1, zaptest.NewLogger(t))
	out, err := r.Generate(context.Background(), prompt)

	require.NoError(t, err)
	assert.Equal(t, "world", out)
	gen.AssertNumberOfCalls(t, "Generate", 1)
}

func TestRetrying_SingleRetryThenSuccess(t *testing.T) {
	core, recorded := observer.New(zap.WarnLevel)
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("503")).Once()
	gen.On("Generate", mock.Anything, mock.Anything).Return("recovered", nil).Once()

	r := newTestRetrying(gen, time.Second, 1, zap.New(core))
	out, err := r.Generate(context.Background(), Prompt{User: "q"})

	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
	gen.AssertNumberOfCalls(t, "Generate", 2)
	assert.Equal(t, 1, recorded.FilterMessage("Text generation failed, retrying").Len())
}

func TestRetrying_GivesUpAfterMaxRetries(t *testing.T) {
	gen := new(MockGenerator)
	gen.On("Generate", mock.Anything, mock.Anything).Return("", errors.New("boom"))

	r := newTestRetrying(gen, time.Second, 1, zaptest.NewLogger(t))
	_, err := r.Generate(context.Background(), Prompt{User: "q"})

	require.Error(t, err)
	assert.ErrorIs(t, err, e.ErrExternalService)
	gen.AssertNumberOfCalls(t, "Generate", 2)
}

func TestRetrying_DisabledIsNotRetried(t *testing.T) {
	r := newTestRetrying(Disabled{}, time.Second, 3, zaptest.NewLogger(t))
	_, err := r.Generate(context.Background(), Prompt{User: "q"})

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, e.ErrExternalService)
}

type slowGenerator struct{}

func (slowGenerator) Generate(ctx context.Context, _ Prompt) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestRetrying_TimeoutBoundsEachCall(t *testing.T) {
	r := newTestRetrying(slowGenerator{}, 20*time.Millisecond, 0, zaptest.NewLogger(t))

	start := time.Now()
	_, err := r.Generate(context.Background(), Prompt{User: "q"})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNew_WithoutAPIKeyIsDisabled(t *testing.T) {
	gen, err := New(context.Background(), Config{Provider: ProviderGemini}, zaptest.NewLogger(t))
	require.NoError(t, err)

	_, err = gen.Generate(context.Background(), Prompt{User: "q"})
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: "mystery"}, zaptest.NewLogger(t))
	assert.Error(t, err)
}
