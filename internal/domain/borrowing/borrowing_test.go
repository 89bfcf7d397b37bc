package borrowing

import (
	"errors"
	"testing"
	"time"

	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/google/uuid"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNew_ExpectedReturnMustBeAfterBorrowDate(t *testing.T) {
	userID, bookID := uuid.New(), uuid.New()
	today := day("2026-03-10")

	tests := []struct {
		name     string
		expected time.Time
		wantErr  bool
	}{
		{"day after is fine", day("2026-03-11"), false},
		{"same day rejected", day("2026-03-10"), true},
		{"day before rejected", day("2026-03-09"), true},
		{"far future is fine", day("2026-09-01"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := New(userID, bookID, tt.expected, today)
			if tt.wantErr {
				var ve *domainErrors.ValidationError
				if !errors.As(err, &ve) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !b.BorrowDate.Equal(today) {
				t.Errorf("borrow date = %v, want %v", b.BorrowDate, today)
			}
			if !b.IsOpen() {
				t.Error("new borrowing should be open")
			}
		})
	}
}

func TestNew_TruncatesTimestampsToDates(t *testing.T) {
	b, err := New(uuid.New(), uuid.New(),
		time.Date(2026, 3, 12, 23, 59, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 8, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.BorrowDate != day("2026-03-10") {
		t.Errorf("borrow date = %v", b.BorrowDate)
	}
	if b.ExpectedReturnDate != day("2026-03-12") {
		t.Errorf("expected return date = %v", b.ExpectedReturnDate)
	}
}

func TestReturn(t *testing.T) {
	b, _ := New(uuid.New(), uuid.New(), day("2026-03-15"), day("2026-03-10"))

	if err := b.Return(day("2026-03-14")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.IsOpen() {
		t.Error("borrowing should be closed after return")
	}

	if err := b.Return(day("2026-03-14")); !errors.Is(err, domainErrors.ErrAlreadyReturned) {
		t.Errorf("second return: expected ErrAlreadyReturned, got %v", err)
	}
}

func TestReturn_BeforeBorrowDateRejected(t *testing.T) {
	b, _ := New(uuid.New(), uuid.New(), day("2026-03-15"), day("2026-03-10"))

	err := b.Return(day("2026-03-09"))
	var ve *domainErrors.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDaysAndPaymentAmount(t *testing.T) {
	b, _ := New(uuid.New(), uuid.New(), day("2026-03-15"), day("2026-03-10"))

	if got := b.Days(); got != 5 {
		t.Errorf("Days() = %d, want 5", got)
	}
	// 5 days at 1.50/day.
	if got := b.PaymentAmountCents(150); got != 750 {
		t.Errorf("PaymentAmountCents(150) = %d, want 750", got)
	}
}

func TestOverdueDays(t *testing.T) {
	b, _ := New(uuid.New(), uuid.New(), day("2026-03-15"), day("2026-03-10"))

	tests := []struct {
		asOf string
		want int
	}{
		{"2026-03-12", 0},
		{"2026-03-15", 0},
		{"2026-03-16", 1},
		{"2026-03-18", 3},
	}
	for _, tt := range tests {
		if got := b.OverdueDays(day(tt.asOf)); got != tt.want {
			t.Errorf("OverdueDays(%s) = %d, want %d", tt.asOf, got, tt.want)
		}
	}
}

func TestFineAmount(t *testing.T) {
	b, _ := New(uuid.New(), uuid.New(), day("2026-03-15"), day("2026-03-10"))

	// 3 days late at 1.50/day, doubled: 2 * 3 * 150 = 900.
	if got := b.FineAmountCents(150, day("2026-03-18")); got != 900 {
		t.Errorf("FineAmountCents = %d, want 900", got)
	}
	// Not late: no fine.
	if got := b.FineAmountCents(150, day("2026-03-15")); got != 0 {
		t.Errorf("FineAmountCents on time = %d, want 0", got)
	}
}

func TestParseActiveFilter(t *testing.T) {
	tests := []struct {
		raw  string
		want ActiveFilter
	}{
		{"true", ActiveOnly},
		{"1", ActiveOnly},
		{"false", ReturnedOnly},
		{"0", ReturnedOnly},
		{"", ActiveAny},
		{"maybe", ActiveAny},
	}
	for _, tt := range tests {
		if got := ParseActiveFilter(tt.raw); got != tt.want {
			t.Errorf("ParseActiveFilter(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
