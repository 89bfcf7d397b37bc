package borrowing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	borrowingApp "github.com/booklend/booklend/internal/application/borrowing"
	paymentApp "github.com/booklend/booklend/internal/application/payment"
	"github.com/booklend/booklend/internal/domain/borrowing"
	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/booklend/booklend/internal/domain/outbox"
	"github.com/booklend/booklend/internal/domain/payment"
	"github.com/booklend/booklend/internal/infrastructure/config"
	"github.com/booklend/booklend/internal/infrastructure/gateway"
	"github.com/booklend/booklend/internal/infrastructure/observability"
	"github.com/booklend/booklend/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
)

func testMetrics() *observability.Metrics {
	return observability.NewMetrics("test", prometheus.NewRegistry())
}

func testGatewayConfig() *config.GatewayConfig {
	return &config.GatewayConfig{
		SuccessURL: "http://localhost/success",
		CancelURL:  "http://localhost/cancel",
	}
}

type createFixture struct {
	bookRepo      *testutil.MockBookRepository
	borrowingRepo *testutil.MockBorrowingRepository
	paymentRepo   *testutil.MockPaymentRepository
	userRepo      *testutil.MockUserRepository
	outboxRepo    *testutil.MockOutboxRepository
	txManager     *testutil.MockTransactionManager
	gw            *gateway.MockGateway
	uc            *borrowingApp.CreateBorrowingUseCase
}

func newCreateFixture(gwOpts ...gateway.MockGatewayOption) *createFixture {
	f := &createFixture{
		bookRepo:      testutil.NewMockBookRepository(),
		borrowingRepo: testutil.NewMockBorrowingRepository(),
		paymentRepo:   testutil.NewMockPaymentRepository(),
		userRepo:      testutil.NewMockUserRepository(),
		outboxRepo:    testutil.NewMockOutboxRepository(),
		txManager:     testutil.NewMockTransactionManager(),
	}
	// A failed transaction restores every repository, like a rollback would.
	f.txManager.Snapshot = func() func() {
		restoreBooks := f.bookRepo.Snapshot()
		restoreBorrowings := f.borrowingRepo.Snapshot()
		restorePayments := f.paymentRepo.Snapshot()
		return func() {
			restoreBooks()
			restoreBorrowings()
			restorePayments()
		}
	}
	opts := append([]gateway.MockGatewayOption{gateway.WithLatency(0)}, gwOpts...)
	f.gw = gateway.NewMockGateway("test", opts...)
	checkout := paymentApp.NewCheckoutService(f.paymentRepo, f.gw, testGatewayConfig())
	f.uc = borrowingApp.NewCreateBorrowingUseCase(
		f.borrowingRepo, f.bookRepo, f.paymentRepo, f.userRepo, f.outboxRepo,
		checkout, f.txManager, testMetrics())
	return f
}

func TestCreateBorrowing_Success(t *testing.T) {
	ctx := context.Background()
	f := newCreateFixture()

	bk := testutil.NewTestBook("The Go Programming Language", 3, 150)
	f.bookRepo.AddBook(bk)
	usr := testutil.NewTestUser("reader@example.com", false)
	f.userRepo.AddUser(usr)

	expected := time.Now().AddDate(0, 0, 5)
	resp, err := f.uc.Execute(ctx, borrowingApp.CreateBorrowingRequest{
		UserID:             usr.ID,
		BookID:             bk.ID,
		ExpectedReturnDate: expected,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := f.bookRepo.GetBook(bk.ID).Inventory; got != 2 {
		t.Errorf("inventory = %d, want 2", got)
	}
	if resp.Payment == nil || resp.Payment.Status != payment.StatusPending {
		t.Fatalf("expected a pending payment, got %+v", resp.Payment)
	}
	// 5 days at 1.50/day.
	if resp.Payment.AmountCents != 750 {
		t.Errorf("payment amount = %d, want 750", resp.Payment.AmountCents)
	}
	if resp.Payment.SessionURL == "" {
		t.Error("payment should carry a checkout URL")
	}

	types := f.outboxRepo.EventTypes()
	if len(types) != 1 || types[0] != outbox.EventBorrowingCreated {
		t.Errorf("outbox events = %v, want [%s]", types, outbox.EventBorrowingCreated)
	}
}

func TestCreateBorrowing_OutOfStock(t *testing.T) {
	ctx := context.Background()
	f := newCreateFixture()

	bk := testutil.NewTestBook("Rare Book", 0, 150)
	f.bookRepo.AddBook(bk)
	usr := testutil.NewTestUser("reader@example.com", false)
	f.userRepo.AddUser(usr)

	_, err := f.uc.Execute(ctx, borrowingApp.CreateBorrowingRequest{
		UserID:             usr.ID,
		BookID:             bk.ID,
		ExpectedReturnDate: time.Now().AddDate(0, 0, 5),
	})
	if !errors.Is(err, domainErrors.ErrOutOfStock) {
		t.Fatalf("expected ErrOutOfStock, got %v", err)
	}
	if got := f.bookRepo.GetBook(bk.ID).Inventory; got != 0 {
		t.Errorf("inventory = %d, want 0", got)
	}
}

func TestCreateBorrowing_PendingPaymentsBlock(t *testing.T) {
	ctx := context.Background()
	f := newCreateFixture()

	bk := testutil.NewTestBook("Another Book", 3, 150)
	f.bookRepo.AddBook(bk)
	usr := testutil.NewTestUser("reader@example.com", false)
	f.userRepo.AddUser(usr)

	old := testutil.NewTestBorrowing(usr.ID, bk.ID, time.Now().AddDate(0, 0, -10), time.Now().AddDate(0, 0, -5))
	p := testutil.NewTestPayment(old.ID, payment.TypePayment, payment.StatusPending, 750)
	f.paymentRepo.AddPayment(p)
	f.paymentRepo.SetOwner(old.ID, usr.ID)

	_, err := f.uc.Execute(ctx, borrowingApp.CreateBorrowingRequest{
		UserID:             usr.ID,
		BookID:             bk.ID,
		ExpectedReturnDate: time.Now().AddDate(0, 0, 5),
	})
	if !errors.Is(err, domainErrors.ErrPendingPayments) {
		t.Fatalf("expected ErrPendingPayments, got %v", err)
	}
}

func TestCreateBorrowing_AlreadyBorrowed(t *testing.T) {
	ctx := context.Background()
	f := newCreateFixture()

	bk := testutil.NewTestBook("Popular Book", 3, 150)
	f.bookRepo.AddBook(bk)
	usr := testutil.NewTestUser("reader@example.com", false)
	f.userRepo.AddUser(usr)

	open := testutil.NewTestBorrowing(usr.ID, bk.ID, time.Now(), time.Now().AddDate(0, 0, 5))
	f.borrowingRepo.AddBorrowing(open)

	_, err := f.uc.Execute(ctx, borrowingApp.CreateBorrowingRequest{
		UserID:             usr.ID,
		BookID:             bk.ID,
		ExpectedReturnDate: time.Now().AddDate(0, 0, 5),
	})
	if !errors.Is(err, domainErrors.ErrAlreadyBorrowed) {
		t.Fatalf("expected ErrAlreadyBorrowed, got %v", err)
	}
}

func TestCreateBorrowing_InvalidReturnDate(t *testing.T) {
	ctx := context.Background()
	f := newCreateFixture()

	bk := testutil.NewTestBook("A Book", 3, 150)
	f.bookRepo.AddBook(bk)
	usr := testutil.NewTestUser("reader@example.com", false)
	f.userRepo.AddUser(usr)

	_, err := f.uc.Execute(ctx, borrowingApp.CreateBorrowingRequest{
		UserID:             usr.ID,
		BookID:             bk.ID,
		ExpectedReturnDate: time.Now(), // same day
	})
	var ve *domainErrors.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := f.bookRepo.GetBook(bk.ID).Inventory; got != 3 {
		t.Errorf("inventory = %d, want 3", got)
	}
}

func TestCreateBorrowing_GatewayFailure(t *testing.T) {
	ctx := context.Background()
	f := newCreateFixture(gateway.WithFailureRate(1))

	bk := testutil.NewTestBook("A Book", 3, 150)
	f.bookRepo.AddBook(bk)
	usr := testutil.NewTestUser("reader@example.com", false)
	f.userRepo.AddUser(usr)

	_, err := f.uc.Execute(ctx, borrowingApp.CreateBorrowingRequest{
		UserID:             usr.ID,
		BookID:             bk.ID,
		ExpectedReturnDate: time.Now().AddDate(0, 0, 5),
	})
	if !errors.Is(err, domainErrors.ErrPaymentGateway) {
		t.Fatalf("expected ErrPaymentGateway, got %v", err)
	}

	// The whole transaction rolls back: inventory is restored, no borrowing
	// row survives, and no notification is queued.
	if got := f.bookRepo.GetBook(bk.ID).Inventory; got != 3 {
		t.Errorf("inventory = %d, want 3", got)
	}
	rows, err := f.borrowingRepo.List(ctx, borrowing.ListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("borrowings = %d, want 0", len(rows))
	}
	if got := len(f.outboxRepo.EventTypes()); got != 0 {
		t.Errorf("outbox events = %d, want 0", got)
	}
}
