package overdue_test

import (
	"context"
	"testing"
	"time"

	overdueApp "github.com/booklend/booklend/internal/application/overdue"
	"github.com/booklend/booklend/internal/domain/outbox"
	"github.com/booklend/booklend/internal/infrastructure/observability"
	"github.com/booklend/booklend/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

type scanFixture struct {
	bookRepo      *testutil.MockBookRepository
	borrowingRepo *testutil.MockBorrowingRepository
	userRepo      *testutil.MockUserRepository
	outboxRepo    *testutil.MockOutboxRepository
	scanner       *overdueApp.Scanner
}

func newScanFixture() *scanFixture {
	f := &scanFixture{
		bookRepo:      testutil.NewMockBookRepository(),
		borrowingRepo: testutil.NewMockBorrowingRepository(),
		userRepo:      testutil.NewMockUserRepository(),
		outboxRepo:    testutil.NewMockOutboxRepository(),
	}
	f.scanner = overdueApp.NewScanner(
		f.borrowingRepo, f.bookRepo, f.userRepo, f.outboxRepo,
		zerolog.Nop(), observability.NewMetrics("test", prometheus.NewRegistry()))
	return f
}

func TestScanner_NothingDue(t *testing.T) {
	ctx := context.Background()
	f := newScanFixture()

	bk := testutil.NewTestBook("A Book", 1, 150)
	f.bookRepo.AddBook(bk)
	usr := testutil.NewTestUser("reader@example.com", false)
	f.userRepo.AddUser(usr)
	// Due in a week: out of scope for today's scan.
	f.borrowingRepo.AddBorrowing(testutil.NewTestBorrowing(usr.ID, bk.ID, time.Now(), time.Now().AddDate(0, 0, 7)))

	if err := f.scanner.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	types := f.outboxRepo.EventTypes()
	if len(types) != 1 || types[0] != outbox.EventNoOverdueFound {
		t.Errorf("outbox events = %v, want [%s]", types, outbox.EventNoOverdueFound)
	}
}

func TestScanner_DueTomorrowAndOverdue(t *testing.T) {
	ctx := context.Background()
	f := newScanFixture()

	bk := testutil.NewTestBook("A Book", 1, 150)
	f.bookRepo.AddBook(bk)
	usr := testutil.NewTestUser("reader@example.com", false)
	f.userRepo.AddUser(usr)

	dueTomorrow := testutil.NewTestBorrowing(usr.ID, bk.ID, time.Now().AddDate(0, 0, -4), time.Now().AddDate(0, 0, 1))
	overdue := testutil.NewTestBorrowing(usr.ID, bk.ID, time.Now().AddDate(0, 0, -10), time.Now().AddDate(0, 0, -2))
	f.borrowingRepo.AddBorrowing(dueTomorrow)
	f.borrowingRepo.AddBorrowing(overdue)

	if err := f.scanner.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	counts := map[string]int{}
	for _, et := range f.outboxRepo.EventTypes() {
		counts[et]++
	}
	if counts[outbox.EventBorrowingDueSoon] != 1 {
		t.Errorf("due-tomorrow events = %d, want 1", counts[outbox.EventBorrowingDueSoon])
	}
	if counts[outbox.EventBorrowingOverdue] != 1 {
		t.Errorf("overdue events = %d, want 1", counts[outbox.EventBorrowingOverdue])
	}
	if counts[outbox.EventNoOverdueFound] != 0 {
		t.Errorf("none-found events = %d, want 0", counts[outbox.EventNoOverdueFound])
	}

	// days_late travels with the overdue event.
	for _, e := range f.outboxRepo.Entries {
		if e.EventType == outbox.EventBorrowingOverdue {
			if got, ok := e.Payload["days_late"].(int); !ok || got != 2 {
				t.Errorf("days_late = %v, want 2", e.Payload["days_late"])
			}
		}
	}
}

func TestScanner_ReturnedBorrowingsIgnored(t *testing.T) {
	ctx := context.Background()
	f := newScanFixture()

	bk := testutil.NewTestBook("A Book", 1, 150)
	f.bookRepo.AddBook(bk)
	usr := testutil.NewTestUser("reader@example.com", false)
	f.userRepo.AddUser(usr)

	returned := testutil.NewTestBorrowing(usr.ID, bk.ID, time.Now().AddDate(0, 0, -10), time.Now().AddDate(0, 0, -2))
	if err := returned.Return(time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.borrowingRepo.AddBorrowing(returned)

	if err := f.scanner.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	types := f.outboxRepo.EventTypes()
	if len(types) != 1 || types[0] != outbox.EventNoOverdueFound {
		t.Errorf("outbox events = %v, want [%s]", types, outbox.EventNoOverdueFound)
	}
}
