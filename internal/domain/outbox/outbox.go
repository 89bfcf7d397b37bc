package outbox

import (
	"time"

	"github.com/google/uuid"
)

// Event types carried through the outbox. The worker renders each into an
// outbound notification.
const (
	EventBorrowingCreated  = "borrowing.created"
	EventBorrowingDueSoon  = "borrowing.due_tomorrow"
	EventBorrowingOverdue  = "borrowing.overdue"
	EventNoOverdueFound    = "borrowing.none_overdue"
	EventPaymentSuccessful = "payment.successful"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPublished Status = "published"
	StatusFailed    Status = "failed"
)

// Entry is a notification event written in the same transaction as the state
// change that produced it. Delivery is asynchronous and never blocks or fails
// the producing request.
type Entry struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   uuid.UUID
	EventType     string
	Payload       map[string]any
	Status        Status
	RetryCount    int
	MaxRetries    int
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

func NewEntry(aggregateType string, aggregateID uuid.UUID, eventType string, payload map[string]any) *Entry {
	return &Entry{
		ID:            uuid.New(),
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		EventType:     eventType,
		Payload:       payload,
		Status:        StatusPending,
		RetryCount:    0,
		MaxRetries:    5,
		CreatedAt:     time.Now(),
	}
}
