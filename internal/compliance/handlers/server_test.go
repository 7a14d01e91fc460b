package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gartstein/isocompliance/internal/compliance/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestServer_RegisterHTTPHandler(t *testing.T) {
	logger := zaptest.NewLogger(t)
	s := NewServer(50051, 8080, logger)

	err := s.RegisterHTTPHandler(NewCompanyHandler(&mockController{}, logger), "secret")
	require.NoError(t, err)

	assert.NotNil(t, s.Handler())
	assert.Equal(t, s.httpEndpoint, s.httpServer.Addr)
}

func TestServer_Healthz(t *testing.T) {
	logger := zaptest.NewLogger(t)
	s := NewServer(0, 0, logger)
	require.NoError(t, s.RegisterHTTPHandler(NewCompanyHandler(&mockController{}, logger), ""))

	rec := do(s.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	s.health.Shutdown()
	rec = do(s.Handler(), http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_UnknownRoute(t *testing.T) {
	logger := zaptest.NewLogger(t)
	s := NewServer(0, 0, logger)
	require.NoError(t, s.RegisterHTTPHandler(NewCompanyHandler(&mockController{}, logger), ""))

	rec := do(s.Handler(), http.MethodGet, "/api/unknown", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestServer_AuthGuardsWrites(t *testing.T) {
	logger := zaptest.NewLogger(t)
	s := NewServer(0, 0, logger)
	require.NoError(t, s.RegisterHTTPHandler(NewCompanyHandler(&mockController{}, logger), "secret"))

	rec := do(s.Handler(), http.MethodPost, "/api/companies", `{"name":"Acme"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token, err := auth.GenerateToken("tester", "secret", time.Minute)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/iso/catalog", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestLogger(t *testing.T) {
	core, recorded := observer.New(zap.InfoLevel)
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	requestLogger(next, zap.New(core)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/brew", nil))

	entries := recorded.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "GET", fields["method"])
	assert.Equal(t, "/brew", fields["path"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
}

func TestServer_StartStop(t *testing.T) {
	logger := zaptest.NewLogger(t)
	// Use fixed ports so we know what address to dial.
	s := NewServer(50061, 8091, logger, grpc.Creds(insecure.NewCredentials()))
	require.NoError(t, s.RegisterHTTPHandler(NewCompanyHandler(&mockController{}, logger), ""))

	// Start the server in a separate goroutine.
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	// Give the server a moment to start.
	time.Sleep(200 * time.Millisecond)

	conn, err := grpc.NewClient("localhost:50061", grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{})
	if assert.NoError(t, err) {
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	}
	conn.Close()

	httpResp, err := http.Get("http://localhost:8091/healthz")
	if assert.NoError(t, err) {
		assert.Equal(t, http.StatusOK, httpResp.StatusCode)
		httpResp.Body.Close()
	}

	s.Stop()

	// Wait for Start() to return.
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for server to stop")
	}
}
