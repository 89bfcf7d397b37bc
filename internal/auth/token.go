package auth

import (
	"time"

	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/booklend/booklend/internal/infrastructure/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind tags a JWT as access or refresh so one cannot stand in for the
// other.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

// Claims carried inside every token.
type Claims struct {
	UserID  uuid.UUID `json:"user_id"`
	IsStaff bool      `json:"is_staff"`
	Kind    TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// TokenPair is what a successful login or refresh returns.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenService issues and verifies the HMAC-signed JWTs used by the API.
type TokenService struct {
	secret        []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
}

// NewTokenService creates a new TokenService.
func NewTokenService(cfg *config.AuthConfig) *TokenService {
	return &TokenService{
		secret:        []byte(cfg.JWTSecret),
		accessExpiry:  cfg.AccessExpiry,
		refreshExpiry: cfg.RefreshExpiry,
	}
}

// IssuePair issues a fresh access and refresh token for the user.
func (s *TokenService) IssuePair(userID uuid.UUID, isStaff bool) (*TokenPair, error) {
	access, err := s.issue(userID, isStaff, KindAccess, s.accessExpiry)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issue(userID, isStaff, KindRefresh, s.refreshExpiry)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a valid refresh token for a new pair.
func (s *TokenService) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := s.Verify(refreshToken, KindRefresh)
	if err != nil {
		return nil, err
	}
	return s.IssuePair(claims.UserID, claims.IsStaff)
}

// Verify parses the token and checks its signature, expiry and kind.
func (s *TokenService) Verify(token string, kind TokenKind) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domainErrors.ErrUnauthorized
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, domainErrors.ErrUnauthorized
	}
	if claims.Kind != kind {
		return nil, domainErrors.ErrUnauthorized
	}
	return claims, nil
}

func (s *TokenService) issue(userID uuid.UUID, isStaff bool, kind TokenKind, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:  userID,
		IsStaff: isStaff,
		Kind:    kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}
