package book

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence port for books.
type Repository interface {
	Create(ctx context.Context, b *Book) error
	GetByID(ctx context.Context, id uuid.UUID) (*Book, error)
	List(ctx context.Context, limit, offset int) ([]*Book, error)
	Update(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id uuid.UUID) error

	// DecrementInventory atomically takes one copy off the shelf. It must
	// fail with errors.ErrOutOfStock when no copies remain, and must never
	// let the count go negative under concurrent callers.
	DecrementInventory(ctx context.Context, id uuid.UUID) error

	// IncrementInventory puts one copy back. No upper bound is enforced.
	IncrementInventory(ctx context.Context, id uuid.UUID) error
}
