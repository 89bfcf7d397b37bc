package user

import (
	"context"

	"github.com/booklend/booklend/internal/domain/user"
	"github.com/google/uuid"
)

// UpdateProfileRequest holds the editable account fields. Nil fields are left
// unchanged.
type UpdateProfileRequest struct {
	FirstName *string
	LastName  *string
	Password  *string
}

// UpdateProfileUseCase edits the caller's own account.
type UpdateProfileUseCase struct {
	userRepo user.Repository
}

// NewUpdateProfileUseCase creates a new UpdateProfileUseCase.
func NewUpdateProfileUseCase(userRepo user.Repository) *UpdateProfileUseCase {
	return &UpdateProfileUseCase{userRepo: userRepo}
}

// Execute applies the requested changes and persists the user.
func (uc *UpdateProfileUseCase) Execute(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*user.User, error) {
	u, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Password != nil {
		if err := u.SetPassword(*req.Password); err != nil {
			return nil, err
		}
	}

	if err := uc.userRepo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
