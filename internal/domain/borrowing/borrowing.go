package borrowing

import (
	"time"

	"github.com/booklend/booklend/internal/domain/errors"
	"github.com/google/uuid"
)

// FineMultiplier scales the daily fee when a book comes back late.
// TODO: product has not confirmed the multiplier; source systems disagree.
const FineMultiplier = 2

// Borrowing records a user holding one copy of a book for a bounded period.
// A borrowing is OPEN until ActualReturnDate is set, then RETURNED; there are
// no further transitions.
type Borrowing struct {
	ID                 uuid.UUID
	BookID             uuid.UUID
	UserID             uuid.UUID
	BorrowDate         time.Time
	ExpectedReturnDate time.Time
	ActualReturnDate   *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// New creates an open borrowing dated today. ExpectedReturnDate must be
// strictly after the borrow date.
func New(userID, bookID uuid.UUID, expectedReturn, today time.Time) (*Borrowing, error) {
	today = DateOnly(today)
	expectedReturn = DateOnly(expectedReturn)

	if !expectedReturn.After(today) {
		return nil, errors.NewValidationError("expected_return_date", "must be after borrow date")
	}

	now := time.Now()
	return &Borrowing{
		ID:                 uuid.New(),
		BookID:             bookID,
		UserID:             userID,
		BorrowDate:         today,
		ExpectedReturnDate: expectedReturn,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// IsOpen reports whether the book is still out.
func (b *Borrowing) IsOpen() bool {
	return b.ActualReturnDate == nil
}

// Return closes the borrowing. Returning twice is an error; a return date
// before the borrow date is rejected.
func (b *Borrowing) Return(today time.Time) error {
	if b.ActualReturnDate != nil {
		return errors.ErrAlreadyReturned
	}
	today = DateOnly(today)
	if today.Before(b.BorrowDate) {
		return errors.NewValidationError("actual_return_date", "cannot be before borrow date")
	}
	b.ActualReturnDate = &today
	b.UpdatedAt = time.Now()
	return nil
}

// Days is the paid-for borrowing period in days.
func (b *Borrowing) Days() int {
	return daysBetween(b.BorrowDate, b.ExpectedReturnDate)
}

// OverdueDays is how many days past the expected return date the given day
// is; never negative.
func (b *Borrowing) OverdueDays(asOf time.Time) int {
	d := daysBetween(b.ExpectedReturnDate, DateOnly(asOf))
	if d < 0 {
		return 0
	}
	return d
}

// PaymentAmountCents is the up-front borrowing charge in minor units.
func (b *Borrowing) PaymentAmountCents(dailyFeeCents int64) int64 {
	return dailyFeeCents * int64(b.Days())
}

// FineAmountCents is the late-return charge in minor units. All operands are
// integers, so the result is exact (no rounding question arises).
func (b *Borrowing) FineAmountCents(dailyFeeCents int64, asOf time.Time) int64 {
	return FineMultiplier * int64(b.OverdueDays(asOf)) * dailyFeeCents
}

// DateOnly truncates a timestamp to its UTC calendar date.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)) / (24 * time.Hour))
}
