package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	catalogApp "github.com/booklend/booklend/internal/application/catalog"
	"github.com/booklend/booklend/internal/auth"
	"github.com/booklend/booklend/internal/infrastructure/config"
	"github.com/booklend/booklend/internal/infrastructure/observability"
	"github.com/booklend/booklend/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (http.Handler, *auth.TokenService) {
	t.Helper()

	tokens := auth.NewTokenService(&config.AuthConfig{
		JWTSecret:     "test-secret-that-is-long-enough-0000",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
	})

	bookRepo := testutil.NewMockBookRepository()
	bookRepo.AddBook(testutil.NewTestBook("A Book", 2, 150))
	catalogSvc := catalogApp.NewService(bookRepo, nil, zerolog.Nop())

	router := NewRouter(RouterDeps{
		Tokens:     tokens,
		Books:      NewBookController(catalogSvc),
		Borrowings: NewBorrowingController(nil, nil, nil, nil),
		Payments:   NewPaymentController(nil, nil, nil, nil),
		Users:      NewUserController(nil, nil, nil, tokens, nil),
		Metrics:    observability.NewMetrics("test", prometheus.NewRegistry()),
	})
	return router, tokens
}

func doRequest(t *testing.T, router http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestRouter_BookReadsArePublic(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/books", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_BookWritesNeedStaff(t *testing.T) {
	router, tokens := newTestRouter(t)

	rec := doRequest(t, router, http.MethodPost, "/api/v1/books", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	reader, err := tokens.IssuePair(testutil.NewTestUser("reader@example.com", false).ID, false)
	require.NoError(t, err)
	rec = doRequest(t, router, http.MethodPost, "/api/v1/books", reader.Access)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_ProfileRoutesNeedAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	// Both update verbs are routed; unauthenticated callers stop at the
	// middleware rather than falling through to 404/405.
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodPatch} {
		rec := doRequest(t, router, method, "/api/v1/users/me", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, method)
	}
}

func TestRouter_BorrowingsNeedAuth(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/v1/borrowings", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
