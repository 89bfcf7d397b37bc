package payment

import (
	"errors"
	"testing"

	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/google/uuid"
)

func pending(t *testing.T) *Payment {
	t.Helper()
	p, err := New(uuid.New(), TypePayment, "cs_test", "https://checkout.example/cs_test", 750)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(uuid.New(), TypePayment, "cs_test", "", 0); err == nil {
		t.Error("expected error for zero amount")
	}
	if _, err := New(uuid.New(), TypeFine, "", "", 100); err == nil {
		t.Error("expected error for empty session id")
	}
}

func TestTransitions(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
		ok   bool
	}{
		{"pending to paid", StatusPending, StatusPaid, true},
		{"pending to expired", StatusPending, StatusExpired, true},
		{"expired to pending", StatusExpired, StatusPending, true},
		{"paid is terminal", StatusPaid, StatusExpired, false},
		{"paid to pending", StatusPaid, StatusPending, false},
		{"expired to paid", StatusExpired, StatusPaid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := pending(t)
			p.Status = tt.from
			err := p.TransitionTo(tt.to)
			if tt.ok && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, domainErrors.ErrInvalidStateTransition) {
				t.Errorf("expected ErrInvalidStateTransition, got %v", err)
			}
		})
	}
}

func TestMarkPaid_SetsPaidAt(t *testing.T) {
	p := pending(t)
	if err := p.MarkPaid(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PaidAt == nil {
		t.Error("PaidAt should be set")
	}
	if !p.IsTerminal() {
		t.Error("paid payment should be terminal")
	}
}

func TestRenew_OnlyFromExpired(t *testing.T) {
	p := pending(t)
	if err := p.Renew("cs_new", "https://checkout.example/cs_new"); !errors.Is(err, domainErrors.ErrPaymentNotExpired) {
		t.Fatalf("renewing a pending payment: expected ErrPaymentNotExpired, got %v", err)
	}

	if err := p.MarkExpired(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := p.Renew("cs_new", "https://checkout.example/cs_new"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != StatusPending {
		t.Errorf("status = %s, want PENDING", p.Status)
	}
	if p.SessionID != "cs_new" {
		t.Errorf("session id = %s, want cs_new", p.SessionID)
	}
}
