package auth

import (
	"testing"
	"time"

	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/booklend/booklend/internal/infrastructure/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() *TokenService {
	return NewTokenService(&config.AuthConfig{
		JWTSecret:     "test-secret-that-is-long-enough-0000",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
	})
}

func TestIssueAndVerify(t *testing.T) {
	svc := newTestTokenService()
	userID := uuid.New()

	pair, err := svc.IssuePair(userID, true)
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	claims, err := svc.Verify(pair.Access, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.True(t, claims.IsStaff)
}

func TestVerify_KindMismatch(t *testing.T) {
	svc := newTestTokenService()

	pair, err := svc.IssuePair(uuid.New(), false)
	require.NoError(t, err)

	_, err = svc.Verify(pair.Refresh, KindAccess)
	assert.ErrorIs(t, err, domainErrors.ErrUnauthorized)

	_, err = svc.Verify(pair.Access, KindRefresh)
	assert.ErrorIs(t, err, domainErrors.ErrUnauthorized)
}

func TestVerify_WrongSecret(t *testing.T) {
	svc := newTestTokenService()
	other := NewTokenService(&config.AuthConfig{
		JWTSecret:     "another-secret-that-is-long-enough-1",
		AccessExpiry:  time.Minute,
		RefreshExpiry: time.Hour,
	})

	pair, err := svc.IssuePair(uuid.New(), false)
	require.NoError(t, err)

	_, err = other.Verify(pair.Access, KindAccess)
	assert.ErrorIs(t, err, domainErrors.ErrUnauthorized)
}

func TestVerify_Garbage(t *testing.T) {
	svc := newTestTokenService()
	_, err := svc.Verify("not-a-token", KindAccess)
	assert.ErrorIs(t, err, domainErrors.ErrUnauthorized)
}

func TestRefresh(t *testing.T) {
	svc := newTestTokenService()
	userID := uuid.New()

	pair, err := svc.IssuePair(userID, false)
	require.NoError(t, err)

	fresh, err := svc.Refresh(pair.Refresh)
	require.NoError(t, err)

	claims, err := svc.Verify(fresh.Access, KindAccess)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	// An access token cannot be used to refresh.
	_, err = svc.Refresh(pair.Access)
	assert.ErrorIs(t, err, domainErrors.ErrUnauthorized)
}
