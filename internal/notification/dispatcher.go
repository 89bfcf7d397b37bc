package notification

import (
	"context"
	"fmt"

	"github.com/booklend/booklend/internal/domain/outbox"
	"github.com/booklend/booklend/internal/infrastructure/observability"
	"github.com/rs/zerolog"
)

// Sender delivers one message to the configured chat.
type Sender interface {
	Send(ctx context.Context, chatID, message string) error
}

// Dispatcher drains the notification outbox and pushes each event to the
// chat bot. Failures mark the entry for retry; nothing here ever reaches the
// request path that produced the event.
type Dispatcher struct {
	outboxRepo outbox.Repository
	sender     Sender
	chatID     string
	batchSize  int
	logger     zerolog.Logger
	metrics    *observability.Metrics
}

func NewDispatcher(
	outboxRepo outbox.Repository,
	sender Sender,
	chatID string,
	batchSize int,
	logger zerolog.Logger,
	metrics *observability.Metrics,
) *Dispatcher {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &Dispatcher{
		outboxRepo: outboxRepo,
		sender:     sender,
		chatID:     chatID,
		batchSize:  batchSize,
		logger:     logger,
		metrics:    metrics,
	}
}

// DispatchPending sends one batch of pending events. Returns how many were
// delivered.
func (d *Dispatcher) DispatchPending(ctx context.Context) (int, error) {
	entries, err := d.outboxRepo.GetPending(ctx, d.batchSize)
	if err != nil {
		return 0, fmt.Errorf("load pending notifications: %w", err)
	}

	sent := 0
	for _, entry := range entries {
		msg := RenderMessage(entry)
		if err := d.sender.Send(ctx, d.chatID, msg); err != nil {
			d.logger.Error().Err(err).
				Str("event_type", entry.EventType).
				Str("outbox_id", entry.ID.String()).
				Msg("Failed to deliver notification")
			d.metrics.NotificationsSent.WithLabelValues(entry.EventType, "error").Inc()
			if err := d.outboxRepo.MarkFailed(ctx, entry.ID); err != nil {
				d.logger.Error().Err(err).Str("outbox_id", entry.ID.String()).Msg("Failed to mark outbox entry")
			}
			continue
		}
		if err := d.outboxRepo.MarkPublished(ctx, entry.ID); err != nil {
			d.logger.Error().Err(err).Str("outbox_id", entry.ID.String()).Msg("Failed to mark outbox entry published")
			continue
		}
		d.metrics.NotificationsSent.WithLabelValues(entry.EventType, "success").Inc()
		sent++
	}
	return sent, nil
}

// RenderMessage turns an outbox event into chat text.
func RenderMessage(e *outbox.Entry) string {
	get := func(key string) string {
		if v, ok := e.Payload[key].(string); ok {
			return v
		}
		return ""
	}

	switch e.EventType {
	case outbox.EventBorrowingCreated:
		return fmt.Sprintf("Borrowing successfully registered by %s\nBook: %s\nExpected return: %s",
			get("user_email"), get("book_title"), get("expected_return_date"))

	case outbox.EventBorrowingDueSoon:
		return fmt.Sprintf("Tomorrow borrowing will be overdue\nBook: %s\nUser: %s",
			get("book_title"), get("user_email"))

	case outbox.EventBorrowingOverdue:
		return fmt.Sprintf("Overdue borrowing found\nBook: %s\nUser: %s\nExpected date: %s\nDays late: %v",
			get("book_title"), get("user_email"), get("expected_return_date"), e.Payload["days_late"])

	case outbox.EventNoOverdueFound:
		return "No overdue borrowings"

	case outbox.EventPaymentSuccessful:
		// amount_cents is int64 in-process and float64 after the JSONB
		// round-trip.
		amount := ""
		switch cents := e.Payload["amount_cents"].(type) {
		case float64:
			amount = fmt.Sprintf("%.2f$", cents/100)
		case int64:
			amount = fmt.Sprintf("%.2f$", float64(cents)/100)
		case int:
			amount = fmt.Sprintf("%.2f$", float64(cents)/100)
		}
		return fmt.Sprintf("Payment for borrowing successful\nBook: %s\nPrice: %s\nPayment type: %s\nUser: %s",
			get("book_title"), amount, get("payment_type"), get("user_email"))

	default:
		return fmt.Sprintf("%s: %v", e.EventType, e.Payload)
	}
}
