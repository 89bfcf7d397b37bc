package book

import (
	"time"

	"github.com/booklend/booklend/internal/domain/errors"
	"github.com/google/uuid"
)

// Cover is the physical cover type of a book.
type Cover string

const (
	CoverHard Cover = "HARD"
	CoverSoft Cover = "SOFT"
)

// Book represents a title in the catalog. Inventory counts the currently
// lendable copies; DailyFeeCents is the borrowing fee per day in minor
// currency units.
type Book struct {
	ID            uuid.UUID
	Title         string
	Author        string
	Cover         Cover
	Inventory     int
	DailyFeeCents int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// New creates a catalog entry after validating its fields.
func New(title, author string, cover Cover, inventory int, dailyFeeCents int64) (*Book, error) {
	if title == "" {
		return nil, errors.NewValidationError("title", "cannot be empty")
	}
	if cover != CoverHard && cover != CoverSoft {
		return nil, errors.NewValidationError("cover", "must be HARD or SOFT")
	}
	if inventory < 0 {
		return nil, errors.NewValidationError("inventory", "cannot be negative")
	}
	if dailyFeeCents <= 0 {
		return nil, errors.NewValidationError("daily_fee", "must be greater than 0")
	}

	now := time.Now()
	return &Book{
		ID:            uuid.New(),
		Title:         title,
		Author:        author,
		Cover:         cover,
		Inventory:     inventory,
		DailyFeeCents: dailyFeeCents,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// InStock reports whether at least one copy is lendable.
func (b *Book) InStock() bool {
	return b.Inventory > 0
}
