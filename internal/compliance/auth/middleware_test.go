package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMiddleware(t *testing.T) {
	const (
		validSecret   = "test-secret"
		invalidSecret = "wrong-secret"
		userID        = "test-user"
	)

	// Helper to generate test tokens
	generateToken := func(secret string, expiresAt time.Time) string {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sub": userID,
			"exp": expiresAt.Unix(),
		})
		tokenString, _ := token.SignedString([]byte(secret))
		return tokenString
	}

	tests := []struct {
		name       string
		method     string
		path       string
		header     string
		wantStatus int
		wantUser   bool
	}{
		{
			name:       "protected route valid token",
			method:     http.MethodPost,
			path:       "/api/companies",
			header:     "Bearer " + generateToken(validSecret, time.Now().Add(time.Hour)),
			wantStatus: http.StatusOK,
			wantUser:   true,
		},
		{
			name:       "nested protected route valid token",
			method:     http.MethodPost,
			path:       "/api/companies/123/chat",
			header:     "Bearer " + generateToken(validSecret, time.Now().Add(time.Hour)),
			wantStatus: http.StatusOK,
			wantUser:   true,
		},
		{
			name:       "protected route wrong secret",
			method:     http.MethodPost,
			path:       "/api/companies",
			header:     "Bearer " + generateToken(invalidSecret, time.Now().Add(time.Hour)),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "protected route expired token",
			method:     http.MethodPost,
			path:       "/api/companies",
			header:     "Bearer " + generateToken(validSecret, time.Now().Add(-time.Hour)),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "protected route missing header",
			method:     http.MethodPost,
			path:       "/api/companies",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "protected route without bearer prefix",
			method:     http.MethodPost,
			path:       "/api/companies",
			header:     generateToken(validSecret, time.Now().Add(time.Hour)),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "read route no token",
			method:     http.MethodGet,
			path:       "/api/companies",
			wantStatus: http.StatusOK,
		},
		{
			name:       "recommend route no token",
			method:     http.MethodPost,
			path:       "/api/iso/recommend",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser bool
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				claims, ok := ClaimsFromContext(r.Context())
				gotUser = ok && claims["sub"] == userID
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			HTTPMiddleware(next, validSecret).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantUser, gotUser)
		})
	}
}

func TestHTTPMiddlewareDisabledWithoutSecret(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	rec := httptest.NewRecorder()
	HTTPMiddleware(next, "").ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/companies", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestGenerateToken(t *testing.T) {
	token, err := GenerateToken("user-1", "secret", time.Hour)
	require.NoError(t, err)

	claims, err := validateToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims["sub"])
	assert.Equal(t, Issuer, claims["iss"])

	_, err = validateToken(token, "other")
	assert.Error(t, err)
}
