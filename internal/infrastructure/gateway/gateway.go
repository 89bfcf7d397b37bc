package gateway

import (
	"context"
)

// Session statuses reported by the external gateway.
const (
	SessionStatusOpen     = "open"
	SessionStatusComplete = "complete"
	SessionStatusExpired  = "expired"

	PaymentStatusPaid   = "paid"
	PaymentStatusUnpaid = "unpaid"
)

// CheckoutRequest contains the data needed to open a checkout session.
type CheckoutRequest struct {
	AmountCents int64
	Currency    string
	ProductName string
	SuccessURL  string
	CancelURL   string
}

// Session is the gateway's view of a single checkout attempt.
type Session struct {
	ID            string
	URL           string
	Status        string
	PaymentStatus string
}

// Gateway is the interface the external checkout provider implements.
type Gateway interface {
	// Name returns the gateway name.
	Name() string
	// CreateCheckoutSession opens a new checkout session.
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (*Session, error)
	// RetrieveSession fetches the current state of an existing session.
	RetrieveSession(ctx context.Context, sessionID string) (*Session, error)
}
