package borrowing

import (
	"context"

	"github.com/booklend/booklend/internal/domain/book"
	"github.com/booklend/booklend/internal/domain/borrowing"
	"github.com/booklend/booklend/internal/domain/outbox"
	"github.com/booklend/booklend/internal/domain/payment"
)

// TransactionManager defines the interface for transaction management.
// This is an application-layer port, not a domain concern.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// OutboxWriter writes notification events in the caller's transaction.
type OutboxWriter interface {
	Insert(ctx context.Context, entry *outbox.Entry) error
}

// SessionOpener opens a checkout session at the external gateway and
// persists the resulting payment row. Implemented by the payment
// application's CheckoutService. When called inside a transaction the
// payment row joins that transaction, so a gateway failure rolls the whole
// operation back.
type SessionOpener interface {
	OpenSession(ctx context.Context, b *borrowing.Borrowing, bk *book.Book, typ payment.Type) (*payment.Payment, error)
}
