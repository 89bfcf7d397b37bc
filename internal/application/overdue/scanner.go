package overdue

import (
	"context"
	"time"

	"github.com/booklend/booklend/internal/domain/book"
	"github.com/booklend/booklend/internal/domain/borrowing"
	"github.com/booklend/booklend/internal/domain/outbox"
	"github.com/booklend/booklend/internal/domain/user"
	"github.com/booklend/booklend/internal/infrastructure/observability"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Scanner walks the open borrowings once a day and queues a notification for
// each one that is overdue or due tomorrow. When nothing is due it says so,
// so the chat shows the scan ran. One broken row never stops the sweep.
type Scanner struct {
	borrowingRepo borrowing.Repository
	bookRepo      book.Repository
	userRepo      user.Repository
	outboxRepo    outbox.Repository
	logger        zerolog.Logger
	metrics       *observability.Metrics
}

// NewScanner creates a new overdue Scanner.
func NewScanner(
	borrowingRepo borrowing.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
	outboxRepo outbox.Repository,
	logger zerolog.Logger,
	metrics *observability.Metrics,
) *Scanner {
	return &Scanner{
		borrowingRepo: borrowingRepo,
		bookRepo:      bookRepo,
		userRepo:      userRepo,
		outboxRepo:    outboxRepo,
		logger:        logger,
		metrics:       metrics,
	}
}

// Run performs one scan as of now.
func (s *Scanner) Run(ctx context.Context) error {
	return s.RunAt(ctx, time.Now())
}

// RunAt performs one scan as of the given day.
func (s *Scanner) RunAt(ctx context.Context, asOf time.Time) error {
	start := time.Now()
	defer func() {
		s.metrics.ScanDuration.WithLabelValues("overdue").Observe(time.Since(start).Seconds())
	}()

	today := borrowing.DateOnly(asOf)
	tomorrow := today.AddDate(0, 0, 1)

	due, err := s.borrowingRepo.ListDueBy(ctx, tomorrow)
	if err != nil {
		return err
	}

	if len(due) == 0 {
		entry := outbox.NewEntry("borrowing", uuid.Nil, outbox.EventNoOverdueFound, map[string]any{
			"scanned_at": today.Format(time.DateOnly),
		})
		if err := s.outboxRepo.Insert(ctx, entry); err != nil {
			return err
		}
		s.logger.Info().Msg("Overdue scan found nothing due")
		return nil
	}

	for _, b := range due {
		if err := s.notify(ctx, b, today, tomorrow); err != nil {
			s.logger.Error().Err(err).
				Str("borrowing_id", b.ID.String()).
				Msg("Failed to queue overdue notification")
			s.metrics.ScanItemsTotal.WithLabelValues("overdue", "error").Inc()
			continue
		}
		s.metrics.ScanItemsTotal.WithLabelValues("overdue", "notified").Inc()
	}
	return nil
}

func (s *Scanner) notify(ctx context.Context, b *borrowing.Borrowing, today, tomorrow time.Time) error {
	bk, err := s.bookRepo.GetByID(ctx, b.BookID)
	if err != nil {
		return err
	}
	usr, err := s.userRepo.GetByID(ctx, b.UserID)
	if err != nil {
		return err
	}

	payload := map[string]any{
		"user_email":           usr.Email,
		"book_title":           bk.Title,
		"expected_return_date": b.ExpectedReturnDate.Format(time.DateOnly),
	}

	eventType := outbox.EventBorrowingOverdue
	if b.ExpectedReturnDate.Equal(tomorrow) {
		eventType = outbox.EventBorrowingDueSoon
	} else {
		payload["days_late"] = b.OverdueDays(today)
	}

	return s.outboxRepo.Insert(ctx, outbox.NewEntry("borrowing", b.ID, eventType, payload))
}
