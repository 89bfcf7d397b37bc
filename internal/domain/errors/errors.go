package errors

import (
	"errors"
	"fmt"
)

var (
	// Book errors
	ErrBookNotFound = errors.New("book not found")
	ErrOutOfStock   = errors.New("the book is out of stock")

	// Borrowing errors
	ErrBorrowingNotFound = errors.New("borrowing not found")
	ErrAlreadyBorrowed   = errors.New("you have already borrowed this book")
	ErrAlreadyReturned   = errors.New("book has already been returned")
	ErrPendingPayments   = errors.New("you have pending payments, please complete them before borrowing a new book")

	// Payment errors
	ErrPaymentNotFound        = errors.New("payment not found")
	ErrInvalidStateTransition = errors.New("invalid state transition")
	ErrPaymentNotExpired      = errors.New("only expired payments can be renewed")
	ErrPaymentGateway         = errors.New("payment gateway unavailable")

	// User errors
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("email is already registered")
	ErrBadCredentials = errors.New("invalid email or password")

	// Auth errors
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("permission denied")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")
)

// DomainError wraps errors with additional context
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// ValidationError represents a validation error keyed by the offending field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}
