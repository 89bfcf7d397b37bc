package controller

import (
	"math"
	"time"

	"github.com/booklend/booklend/internal/domain/book"
	"github.com/booklend/booklend/internal/domain/borrowing"
	"github.com/booklend/booklend/internal/domain/payment"
	"github.com/booklend/booklend/internal/domain/user"
)

// --- Request DTOs ---
// DTOs carry HTTP/JSON concerns (float64 for money, strings for IDs and
// dates, validation tags). Controllers convert them before touching the
// application layer.

// CreateBookRequest holds the input for adding a book.
type CreateBookRequest struct {
	Title     string  `json:"title" validate:"required"`
	Author    string  `json:"author"`
	Cover     string  `json:"cover" validate:"required,oneof=HARD SOFT"`
	Inventory int     `json:"inventory" validate:"gte=0"`
	DailyFee  float64 `json:"daily_fee" validate:"required,gt=0"`
}

// UpdateBookRequest holds the input for editing a book. Omitted fields are
// left unchanged.
type UpdateBookRequest struct {
	Title     *string  `json:"title,omitempty"`
	Author    *string  `json:"author,omitempty"`
	Cover     *string  `json:"cover,omitempty" validate:"omitempty,oneof=HARD SOFT"`
	Inventory *int     `json:"inventory,omitempty" validate:"omitempty,gte=0"`
	DailyFee  *float64 `json:"daily_fee,omitempty" validate:"omitempty,gt=0"`
}

// CreateBorrowingRequest holds the input for borrowing a book.
type CreateBorrowingRequest struct {
	BookID             string `json:"book_id" validate:"required,uuid"`
	ExpectedReturnDate string `json:"expected_return_date" validate:"required"`
}

// RegisterUserRequest holds the input for creating an account.
type RegisterUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// LoginRequest holds the credentials for obtaining a token pair.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest holds a refresh token.
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// VerifyRequest holds a token to check.
type VerifyRequest struct {
	Token string `json:"token" validate:"required"`
}

// UpdateUserRequest holds the editable profile fields. Omitted fields are
// left unchanged.
type UpdateUserRequest struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Password  *string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// --- Response DTOs ---

// BookResponse represents a book in API responses.
type BookResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Cover     string    `json:"cover"`
	Inventory int       `json:"inventory"`
	DailyFee  float64   `json:"daily_fee"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BorrowingResponse represents a borrowing in API responses.
type BorrowingResponse struct {
	ID                 string  `json:"id"`
	BookID             string  `json:"book_id"`
	UserID             string  `json:"user_id"`
	BorrowDate         string  `json:"borrow_date"`
	ExpectedReturnDate string  `json:"expected_return_date"`
	ActualReturnDate   *string `json:"actual_return_date,omitempty"`
	PaymentURL         string  `json:"payment_url,omitempty"`
}

// PaymentResponse represents a payment in API responses.
type PaymentResponse struct {
	ID          string     `json:"id"`
	BorrowingID string     `json:"borrowing_id"`
	Status      string     `json:"status"`
	Type        string     `json:"type"`
	SessionURL  string     `json:"session_url,omitempty"`
	Amount      float64    `json:"amount"`
	CreatedAt   time.Time  `json:"created_at"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	IsStaff   bool      `json:"is_staff"`
	CreatedAt time.Time `json:"created_at"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// --- Conversion helpers ---

// FromBook converts a domain book to an API response.
func FromBook(b *book.Book) *BookResponse {
	return &BookResponse{
		ID:        b.ID.String(),
		Title:     b.Title,
		Author:    b.Author,
		Cover:     string(b.Cover),
		Inventory: b.Inventory,
		DailyFee:  centsToFloat(b.DailyFeeCents),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// FromBorrowing converts a domain borrowing to an API response.
func FromBorrowing(b *borrowing.Borrowing) *BorrowingResponse {
	resp := &BorrowingResponse{
		ID:                 b.ID.String(),
		BookID:             b.BookID.String(),
		UserID:             b.UserID.String(),
		BorrowDate:         b.BorrowDate.Format(time.DateOnly),
		ExpectedReturnDate: b.ExpectedReturnDate.Format(time.DateOnly),
	}
	if b.ActualReturnDate != nil {
		s := b.ActualReturnDate.Format(time.DateOnly)
		resp.ActualReturnDate = &s
	}
	return resp
}

// FromPayment converts a domain payment to an API response.
func FromPayment(p *payment.Payment) *PaymentResponse {
	return &PaymentResponse{
		ID:          p.ID.String(),
		BorrowingID: p.BorrowingID.String(),
		Status:      string(p.Status),
		Type:        string(p.Type),
		SessionURL:  p.SessionURL,
		Amount:      centsToFloat(p.AmountCents),
		CreatedAt:   p.CreatedAt,
		PaidAt:      p.PaidAt,
	}
}

// FromUser converts a domain user to an API response.
func FromUser(u *user.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID.String(),
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		IsStaff:   u.IsStaff,
		CreatedAt: u.CreatedAt,
	}
}

func centsToFloat(cents int64) float64 {
	return float64(cents) / 100
}

func floatToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
