package payment

import (
	"context"

	"github.com/booklend/booklend/internal/domain/outbox"
)

// TransactionManager defines the interface for transaction management.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// OutboxWriter writes notification events in the caller's transaction.
type OutboxWriter interface {
	Insert(ctx context.Context, entry *outbox.Entry) error
}
