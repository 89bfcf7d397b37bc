package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/booklend/booklend/internal/auth"
	"github.com/booklend/booklend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokens() *auth.TokenService {
	return auth.NewTokenService(&config.AuthConfig{
		JWTSecret:     "test-secret-that-is-long-enough-0000",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
	})
}

func TestRequireAuth(t *testing.T) {
	tokens := testTokens()
	userID := uuid.New()
	pair, err := tokens.IssuePair(userID, false)
	require.NoError(t, err)

	var seen Principal
	handler := RequireAuth(tokens)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetPrincipal(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid token", "Bearer " + pair.Access, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"garbage token", "Bearer garbage", http.StatusUnauthorized},
		{"refresh token rejected", "Bearer " + pair.Refresh, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}

	assert.Equal(t, userID, seen.UserID)
}

func TestRequireStaff(t *testing.T) {
	tokens := testTokens()

	handler := RequireAuth(tokens)(RequireStaff(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})))

	staffPair, err := tokens.IssuePair(uuid.New(), true)
	require.NoError(t, err)
	readerPair, err := tokens.IssuePair(uuid.New(), false)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+staffPair.Access)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Authorization", "Bearer "+readerPair.Access)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
