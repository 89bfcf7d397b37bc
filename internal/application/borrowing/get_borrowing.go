package borrowing

import (
	"context"

	"github.com/booklend/booklend/internal/domain/borrowing"
	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/google/uuid"
)

// GetBorrowingUseCase fetches a single borrowing with ownership rules.
type GetBorrowingUseCase struct {
	borrowingRepo borrowing.Repository
}

// NewGetBorrowingUseCase creates a new GetBorrowingUseCase.
func NewGetBorrowingUseCase(borrowingRepo borrowing.Repository) *GetBorrowingUseCase {
	return &GetBorrowingUseCase{borrowingRepo: borrowingRepo}
}

// Execute fetches the borrowing. Non-staff callers only see their own.
func (uc *GetBorrowingUseCase) Execute(ctx context.Context, id, actorID uuid.UUID, actorStaff bool) (*borrowing.Borrowing, error) {
	b, err := uc.borrowingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actorStaff && b.UserID != actorID {
		return nil, domainErrors.ErrBorrowingNotFound
	}
	return b, nil
}
