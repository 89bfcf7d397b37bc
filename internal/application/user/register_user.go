package user

import (
	"context"

	"github.com/booklend/booklend/internal/domain/user"
)

// RegisterUserRequest holds the input for creating an account.
type RegisterUserRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// RegisterUserUseCase creates a new account.
type RegisterUserUseCase struct {
	userRepo user.Repository
}

// NewRegisterUserUseCase creates a new RegisterUserUseCase.
func NewRegisterUserUseCase(userRepo user.Repository) *RegisterUserUseCase {
	return &RegisterUserUseCase{userRepo: userRepo}
}

// Execute registers the user. A duplicate email fails with ErrEmailTaken.
func (uc *RegisterUserUseCase) Execute(ctx context.Context, req RegisterUserRequest) (*user.User, error) {
	u, err := user.New(req.Email, req.Password, req.FirstName, req.LastName)
	if err != nil {
		return nil, err
	}
	if err := uc.userRepo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
