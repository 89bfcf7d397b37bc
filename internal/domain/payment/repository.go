package payment

import (
	"context"

	"github.com/google/uuid"
)

// ListFilter selects payments for listing.
type ListFilter struct {
	// UserID restricts results to payments on the user's borrowings.
	UserID *uuid.UUID
	Status *Status
	Limit  int
	Offset int
}

// Repository is the persistence port for payments.
type Repository interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	// LockByID fetches the payment with a row lock. Must run inside a
	// transaction.
	LockByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	GetBySessionID(ctx context.Context, sessionID string) (*Payment, error)
	Update(ctx context.Context, p *Payment) error
	List(ctx context.Context, f ListFilter) ([]*Payment, error)
	ListByBorrowing(ctx context.Context, borrowingID uuid.UUID) ([]*Payment, error)
	ListPending(ctx context.Context) ([]*Payment, error)

	// HasPendingForUser reports whether any of the user's borrowings carry
	// an unsettled payment.
	HasPendingForUser(ctx context.Context, userID uuid.UUID) (bool, error)
}
