package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestTokenHandler(t *testing.T) {
	handler := tokenHandler("test-secret", zaptest.NewLogger(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/token?sub=alice", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.ExpiresAt.IsZero())

	token, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) {
		return []byte("test-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "alice", claims["sub"])
}

func TestTokenHandlerDefaultSubject(t *testing.T) {
	rec := httptest.NewRecorder()
	tokenHandler("s", zaptest.NewLogger(t)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/token", nil))

	var resp TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	token, _, err := jwt.NewParser().ParseUnverified(resp.Token, jwt.MapClaims{})
	require.NoError(t, err)
	assert.Equal(t, "dev-user", token.Claims.(jwt.MapClaims)["sub"])
}

func TestGetenv(t *testing.T) {
	t.Setenv("AUTH_TEST_KEY", "set")
	assert.Equal(t, "set", getenv("AUTH_TEST_KEY", "fallback"))
	assert.Equal(t, "fallback", getenv("AUTH_TEST_MISSING", "fallback"))
}
