package borrowing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ActiveFilter narrows a listing to open or returned borrowings.
// The zero value applies no filter.
type ActiveFilter int

const (
	ActiveAny ActiveFilter = iota
	ActiveOnly
	ReturnedOnly
)

// ParseActiveFilter maps the is_active query parameter to a filter.
// "true"/"1" selects open borrowings, "false"/"0" returned ones; anything
// else applies no filter.
func ParseActiveFilter(s string) ActiveFilter {
	switch s {
	case "true", "1", "True", "TRUE":
		return ActiveOnly
	case "false", "0", "False", "FALSE":
		return ReturnedOnly
	default:
		return ActiveAny
	}
}

// ListFilter selects borrowings for listing.
type ListFilter struct {
	UserID *uuid.UUID
	Active ActiveFilter
	Limit  int
	Offset int
}

// Repository is the persistence port for borrowings.
type Repository interface {
	Create(ctx context.Context, b *Borrowing) error
	GetByID(ctx context.Context, id uuid.UUID) (*Borrowing, error)

	// LockByID fetches a borrowing holding a row lock for the duration of
	// the surrounding transaction.
	LockByID(ctx context.Context, id uuid.UUID) (*Borrowing, error)

	Update(ctx context.Context, b *Borrowing) error
	List(ctx context.Context, f ListFilter) ([]*Borrowing, error)

	// HasOpenBorrowing reports whether the user currently holds the book.
	HasOpenBorrowing(ctx context.Context, userID, bookID uuid.UUID) (bool, error)

	// ListDueBy returns open borrowings whose expected return date is on or
	// before the given day.
	ListDueBy(ctx context.Context, day time.Time) ([]*Borrowing, error)
}
