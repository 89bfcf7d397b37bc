package borrowing

import (
	"context"

	"github.com/booklend/booklend/internal/domain/borrowing"
	"github.com/google/uuid"
)

// ListBorrowingsRequest holds the listing filters. UserID is honored for
// staff only; everyone else is pinned to their own borrowings.
type ListBorrowingsRequest struct {
	ActorID    uuid.UUID
	ActorStaff bool
	UserID     *uuid.UUID
	Active     borrowing.ActiveFilter
	Limit      int
	Offset     int
}

// ListBorrowingsUseCase lists borrowings with ownership rules applied.
type ListBorrowingsUseCase struct {
	borrowingRepo borrowing.Repository
}

// NewListBorrowingsUseCase creates a new ListBorrowingsUseCase.
func NewListBorrowingsUseCase(borrowingRepo borrowing.Repository) *ListBorrowingsUseCase {
	return &ListBorrowingsUseCase{borrowingRepo: borrowingRepo}
}

// Execute lists borrowings.
func (uc *ListBorrowingsUseCase) Execute(ctx context.Context, req ListBorrowingsRequest) ([]*borrowing.Borrowing, error) {
	filter := borrowing.ListFilter{
		Active: req.Active,
		Limit:  req.Limit,
		Offset: req.Offset,
	}

	if req.ActorStaff {
		filter.UserID = req.UserID
	} else {
		actor := req.ActorID
		filter.UserID = &actor
	}

	return uc.borrowingRepo.List(ctx, filter)
}
