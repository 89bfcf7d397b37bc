package user

import (
	"context"
	"errors"

	"github.com/booklend/booklend/internal/auth"
	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/booklend/booklend/internal/domain/user"
)

// AuthenticateUserUseCase checks credentials and issues tokens.
type AuthenticateUserUseCase struct {
	userRepo user.Repository
	tokens   *auth.TokenService
}

// NewAuthenticateUserUseCase creates a new AuthenticateUserUseCase.
func NewAuthenticateUserUseCase(userRepo user.Repository, tokens *auth.TokenService) *AuthenticateUserUseCase {
	return &AuthenticateUserUseCase{userRepo: userRepo, tokens: tokens}
}

// Execute verifies the email and password and returns a token pair. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (uc *AuthenticateUserUseCase) Execute(ctx context.Context, email, password string) (*auth.TokenPair, error) {
	u, err := uc.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainErrors.ErrUserNotFound) {
			return nil, domainErrors.ErrBadCredentials
		}
		return nil, err
	}
	if !u.CheckPassword(password) {
		return nil, domainErrors.ErrBadCredentials
	}
	return uc.tokens.IssuePair(u.ID, u.IsStaff)
}
