package payment_test

import (
	"context"
	"errors"
	"testing"
	"time"

	paymentApp "github.com/booklend/booklend/internal/application/payment"
	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/booklend/booklend/internal/domain/payment"
	"github.com/booklend/booklend/internal/infrastructure/gateway"
	"github.com/booklend/booklend/internal/testutil"
	"github.com/google/uuid"
)

type renewFixture struct {
	paymentRepo   *testutil.MockPaymentRepository
	borrowingRepo *testutil.MockBorrowingRepository
	bookRepo      *testutil.MockBookRepository
	uc            *paymentApp.RenewPaymentUseCase

	userID uuid.UUID
	pay    *payment.Payment
}

func newRenewFixture(status payment.Status) *renewFixture {
	f := &renewFixture{
		paymentRepo:   testutil.NewMockPaymentRepository(),
		borrowingRepo: testutil.NewMockBorrowingRepository(),
		bookRepo:      testutil.NewMockBookRepository(),
		userID:        uuid.New(),
	}
	gw := gateway.NewMockGateway("test", gateway.WithLatency(0))
	checkout := paymentApp.NewCheckoutService(f.paymentRepo, gw, testGatewayConfig())
	f.uc = paymentApp.NewRenewPaymentUseCase(
		f.paymentRepo, f.borrowingRepo, f.bookRepo, checkout,
		testutil.NewMockTransactionManager(), testMetrics())

	bk := testutil.NewTestBook("A Book", 1, 150)
	f.bookRepo.AddBook(bk)
	b := testutil.NewTestBorrowing(f.userID, bk.ID, time.Now().AddDate(0, 0, -5), time.Now().AddDate(0, 0, 2))
	f.borrowingRepo.AddBorrowing(b)
	f.pay = testutil.NewTestPayment(b.ID, payment.TypePayment, status, 750)
	f.paymentRepo.AddPayment(f.pay)
	return f
}

func TestRenewPayment_Expired(t *testing.T) {
	ctx := context.Background()
	f := newRenewFixture(payment.StatusExpired)
	oldSession := f.pay.SessionID

	p, err := f.uc.Execute(ctx, f.pay.ID, f.userID, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Status != payment.StatusPending {
		t.Errorf("status = %s, want PENDING", p.Status)
	}
	if p.SessionID == oldSession {
		t.Error("renewal should open a fresh session")
	}
	// Amount is the one originally charged.
	if p.AmountCents != 750 {
		t.Errorf("amount = %d, want 750", p.AmountCents)
	}
}

func TestRenewPayment_PendingRejected(t *testing.T) {
	ctx := context.Background()
	f := newRenewFixture(payment.StatusPending)

	_, err := f.uc.Execute(ctx, f.pay.ID, f.userID, false)
	if !errors.Is(err, domainErrors.ErrPaymentNotExpired) {
		t.Fatalf("expected ErrPaymentNotExpired, got %v", err)
	}
}

func TestRenewPayment_PaidRejected(t *testing.T) {
	ctx := context.Background()
	f := newRenewFixture(payment.StatusPaid)

	_, err := f.uc.Execute(ctx, f.pay.ID, f.userID, false)
	if !errors.Is(err, domainErrors.ErrPaymentNotExpired) {
		t.Fatalf("expected ErrPaymentNotExpired, got %v", err)
	}
}

func TestRenewPayment_NotOwner(t *testing.T) {
	ctx := context.Background()
	f := newRenewFixture(payment.StatusExpired)

	_, err := f.uc.Execute(ctx, f.pay.ID, uuid.New(), false)
	if !errors.Is(err, domainErrors.ErrPaymentNotFound) {
		t.Fatalf("expected ErrPaymentNotFound, got %v", err)
	}
}

func TestSanitizeProductName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Go Programming Language", "The Go Programming Language"},
		{"C++ & Friends! (2nd ed.)", "C  Friends 2nd ed"},
		{"naïve café", "nave caf"},
	}
	for _, tt := range tests {
		if got := paymentApp.SanitizeProductName(tt.in); got != tt.want {
			t.Errorf("SanitizeProductName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
