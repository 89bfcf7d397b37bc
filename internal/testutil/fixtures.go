package testutil

import (
	"time"

	"github.com/booklend/booklend/internal/domain/book"
	"github.com/booklend/booklend/internal/domain/borrowing"
	"github.com/booklend/booklend/internal/domain/payment"
	"github.com/booklend/booklend/internal/domain/user"
	"github.com/google/uuid"
)

func NewTestBook(title string, inventory int, dailyFeeCents int64) *book.Book {
	now := time.Now()
	return &book.Book{
		ID:            uuid.New(),
		Title:         title,
		Author:        "Test Author",
		Cover:         book.CoverSoft,
		Inventory:     inventory,
		DailyFeeCents: dailyFeeCents,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func NewTestUser(email string, isStaff bool) *user.User {
	now := time.Now()
	return &user.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "$2a$10$invalidhashforfixturesonly000000000000000000000000000",
		FirstName:    "Test",
		LastName:     "User",
		IsStaff:      isStaff,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestBorrowing creates an open borrowing with the given dates truncated
// to calendar days.
func NewTestBorrowing(userID, bookID uuid.UUID, borrowDate, expectedReturn time.Time) *borrowing.Borrowing {
	now := time.Now()
	return &borrowing.Borrowing{
		ID:                 uuid.New(),
		BookID:             bookID,
		UserID:             userID,
		BorrowDate:         borrowing.DateOnly(borrowDate),
		ExpectedReturnDate: borrowing.DateOnly(expectedReturn),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func NewTestPayment(borrowingID uuid.UUID, typ payment.Type, status payment.Status, amountCents int64) *payment.Payment {
	now := time.Now()
	return &payment.Payment{
		ID:          uuid.New(),
		BorrowingID: borrowingID,
		Status:      status,
		Type:        typ,
		SessionID:   "sess_" + uuid.New().String(),
		SessionURL:  "https://checkout.example.com/" + uuid.New().String(),
		AmountCents: amountCents,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
