package payment

import (
	"time"

	"github.com/booklend/booklend/internal/domain/errors"
	"github.com/google/uuid"
)

// Type distinguishes the up-front borrowing charge from a late fine.
type Type string

const (
	TypePayment Type = "PAYMENT"
	TypeFine    Type = "FINE"
)

// Status is the payment state in the state machine.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
	StatusExpired Status = "EXPIRED"
)

// Payment ties a checkout session at the external gateway to a borrowing.
// AmountCents is in minor currency units.
type Payment struct {
	ID          uuid.UUID
	BorrowingID uuid.UUID
	Status      Status
	Type        Type
	SessionID   string
	SessionURL  string
	AmountCents int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
	PaidAt      *time.Time
}

// New creates a pending payment for a freshly opened checkout session.
func New(borrowingID uuid.UUID, typ Type, sessionID, sessionURL string, amountCents int64) (*Payment, error) {
	if amountCents <= 0 {
		return nil, errors.NewValidationError("amount", "must be greater than 0")
	}
	if sessionID == "" {
		return nil, errors.NewValidationError("session_id", "cannot be empty")
	}

	now := time.Now()
	return &Payment{
		ID:          uuid.New(),
		BorrowingID: borrowingID,
		Status:      StatusPending,
		Type:        typ,
		SessionID:   sessionID,
		SessionURL:  sessionURL,
		AmountCents: amountCents,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// CanTransitionTo checks if the payment can move to the given status.
func (p *Payment) CanTransitionTo(newStatus Status) bool {
	transitions := map[Status][]Status{
		StatusPending: {StatusPaid, StatusExpired},
		StatusExpired: {StatusPending}, // renewal opens a fresh session
		StatusPaid:    {},              // terminal
	}

	allowed, ok := transitions[p.Status]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == newStatus {
			return true
		}
	}
	return false
}

// TransitionTo moves the payment to a new status.
func (p *Payment) TransitionTo(newStatus Status) error {
	if !p.CanTransitionTo(newStatus) {
		return errors.NewDomainError(
			"invalid_transition",
			"cannot transition from "+string(p.Status)+" to "+string(newStatus),
			errors.ErrInvalidStateTransition,
		)
	}

	p.Status = newStatus
	p.UpdatedAt = time.Now()

	if newStatus == StatusPaid {
		now := time.Now()
		p.PaidAt = &now
	}
	return nil
}

// MarkPaid records a confirmed external payment.
func (p *Payment) MarkPaid() error {
	return p.TransitionTo(StatusPaid)
}

// MarkExpired records that the gateway reported the session expired.
func (p *Payment) MarkExpired() error {
	return p.TransitionTo(StatusExpired)
}

// Renew swaps in a fresh checkout session for an expired payment.
func (p *Payment) Renew(sessionID, sessionURL string) error {
	if p.Status != StatusExpired {
		return errors.ErrPaymentNotExpired
	}
	if err := p.TransitionTo(StatusPending); err != nil {
		return err
	}
	p.SessionID = sessionID
	p.SessionURL = sessionURL
	return nil
}

// IsTerminal checks if the payment can no longer change on its own.
func (p *Payment) IsTerminal() bool {
	return p.Status == StatusPaid
}
