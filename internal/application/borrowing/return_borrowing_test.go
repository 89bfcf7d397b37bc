package borrowing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	borrowingApp "github.com/booklend/booklend/internal/application/borrowing"
	paymentApp "github.com/booklend/booklend/internal/application/payment"
	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/booklend/booklend/internal/domain/payment"
	"github.com/booklend/booklend/internal/infrastructure/gateway"
	"github.com/booklend/booklend/internal/testutil"
	"github.com/google/uuid"
)

type returnFixture struct {
	bookRepo      *testutil.MockBookRepository
	borrowingRepo *testutil.MockBorrowingRepository
	paymentRepo   *testutil.MockPaymentRepository
	uc            *borrowingApp.ReturnBorrowingUseCase
}

func newReturnFixture() *returnFixture {
	f := &returnFixture{
		bookRepo:      testutil.NewMockBookRepository(),
		borrowingRepo: testutil.NewMockBorrowingRepository(),
		paymentRepo:   testutil.NewMockPaymentRepository(),
	}
	gw := gateway.NewMockGateway("test", gateway.WithLatency(0))
	checkout := paymentApp.NewCheckoutService(f.paymentRepo, gw, testGatewayConfig())
	f.uc = borrowingApp.NewReturnBorrowingUseCase(
		f.borrowingRepo, f.bookRepo, checkout, testutil.NewMockTransactionManager(), testMetrics())
	return f
}

func TestReturnBorrowing_OnTime(t *testing.T) {
	ctx := context.Background()
	f := newReturnFixture()

	bk := testutil.NewTestBook("A Book", 2, 150)
	f.bookRepo.AddBook(bk)
	userID := uuid.New()
	b := testutil.NewTestBorrowing(userID, bk.ID, time.Now().AddDate(0, 0, -3), time.Now().AddDate(0, 0, 2))
	f.borrowingRepo.AddBorrowing(b)

	resp, err := f.uc.Execute(ctx, borrowingApp.ReturnBorrowingRequest{
		BorrowingID: b.ID,
		ActorID:     userID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Fine != nil {
		t.Errorf("on-time return should not issue a fine, got %+v", resp.Fine)
	}
	if resp.Borrowing.IsOpen() {
		t.Error("borrowing should be closed")
	}
	if got := f.bookRepo.GetBook(bk.ID).Inventory; got != 3 {
		t.Errorf("inventory = %d, want 3", got)
	}
}

func TestReturnBorrowing_LateIssuesFine(t *testing.T) {
	ctx := context.Background()
	f := newReturnFixture()

	bk := testutil.NewTestBook("A Book", 0, 150)
	f.bookRepo.AddBook(bk)
	userID := uuid.New()
	// Expected back 3 days ago.
	b := testutil.NewTestBorrowing(userID, bk.ID, time.Now().AddDate(0, 0, -8), time.Now().AddDate(0, 0, -3))
	f.borrowingRepo.AddBorrowing(b)

	resp, err := f.uc.Execute(ctx, borrowingApp.ReturnBorrowingRequest{
		BorrowingID: b.ID,
		ActorID:     userID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Fine == nil {
		t.Fatal("late return should issue a fine")
	}
	// 3 days late at 1.50/day, doubled.
	if resp.Fine.AmountCents != 900 {
		t.Errorf("fine amount = %d, want 900", resp.Fine.AmountCents)
	}
	if resp.Fine.Type != payment.TypeFine {
		t.Errorf("fine type = %s, want FINE", resp.Fine.Type)
	}
	if resp.Fine.SessionURL == "" {
		t.Error("fine should carry a checkout URL")
	}
	if got := f.bookRepo.GetBook(bk.ID).Inventory; got != 1 {
		t.Errorf("inventory = %d, want 1", got)
	}
}

func TestReturnBorrowing_Twice(t *testing.T) {
	ctx := context.Background()
	f := newReturnFixture()

	bk := testutil.NewTestBook("A Book", 1, 150)
	f.bookRepo.AddBook(bk)
	userID := uuid.New()
	b := testutil.NewTestBorrowing(userID, bk.ID, time.Now().AddDate(0, 0, -3), time.Now().AddDate(0, 0, 2))
	f.borrowingRepo.AddBorrowing(b)

	req := borrowingApp.ReturnBorrowingRequest{BorrowingID: b.ID, ActorID: userID}
	if _, err := f.uc.Execute(ctx, req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := f.uc.Execute(ctx, req); !errors.Is(err, domainErrors.ErrAlreadyReturned) {
		t.Fatalf("expected ErrAlreadyReturned, got %v", err)
	}
	// Inventory went up exactly once.
	if got := f.bookRepo.GetBook(bk.ID).Inventory; got != 2 {
		t.Errorf("inventory = %d, want 2", got)
	}
}

func TestReturnBorrowing_NotOwner(t *testing.T) {
	ctx := context.Background()
	f := newReturnFixture()

	bk := testutil.NewTestBook("A Book", 1, 150)
	f.bookRepo.AddBook(bk)
	b := testutil.NewTestBorrowing(uuid.New(), bk.ID, time.Now().AddDate(0, 0, -3), time.Now().AddDate(0, 0, 2))
	f.borrowingRepo.AddBorrowing(b)

	_, err := f.uc.Execute(ctx, borrowingApp.ReturnBorrowingRequest{
		BorrowingID: b.ID,
		ActorID:     uuid.New(),
	})
	if !errors.Is(err, domainErrors.ErrBorrowingNotFound) {
		t.Fatalf("expected ErrBorrowingNotFound, got %v", err)
	}
}

func TestReturnBorrowing_StaffCanReturnForAnyone(t *testing.T) {
	ctx := context.Background()
	f := newReturnFixture()

	bk := testutil.NewTestBook("A Book", 1, 150)
	f.bookRepo.AddBook(bk)
	b := testutil.NewTestBorrowing(uuid.New(), bk.ID, time.Now().AddDate(0, 0, -3), time.Now().AddDate(0, 0, 2))
	f.borrowingRepo.AddBorrowing(b)

	_, err := f.uc.Execute(ctx, borrowingApp.ReturnBorrowingRequest{
		BorrowingID: b.ID,
		ActorID:     uuid.New(),
		ActorStaff:  true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
