package borrowing

import (
	"context"
	"time"

	"github.com/booklend/booklend/internal/domain/book"
	"github.com/booklend/booklend/internal/domain/borrowing"
	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/booklend/booklend/internal/domain/payment"
	"github.com/booklend/booklend/internal/infrastructure/observability"
	"github.com/google/uuid"
)

// ReturnBorrowingRequest holds the input for returning a book.
type ReturnBorrowingRequest struct {
	BorrowingID uuid.UUID
	ActorID     uuid.UUID
	ActorStaff  bool
}

// ReturnBorrowingResponse reports the closed borrowing and, when the book
// came back late, the fine checkout session the user must complete.
type ReturnBorrowingResponse struct {
	Borrowing *borrowing.Borrowing
	Fine      *payment.Payment
}

// ReturnBorrowingUseCase closes a borrowing, puts the copy back in stock
// and issues a fine when the return is late.
type ReturnBorrowingUseCase struct {
	borrowingRepo borrowing.Repository
	bookRepo      book.Repository
	sessions      SessionOpener
	txManager     TransactionManager
	metrics       *observability.Metrics
}

// NewReturnBorrowingUseCase creates a new ReturnBorrowingUseCase.
func NewReturnBorrowingUseCase(
	borrowingRepo borrowing.Repository,
	bookRepo book.Repository,
	sessions SessionOpener,
	txManager TransactionManager,
	metrics *observability.Metrics,
) *ReturnBorrowingUseCase {
	return &ReturnBorrowingUseCase{
		borrowingRepo: borrowingRepo,
		bookRepo:      bookRepo,
		sessions:      sessions,
		txManager:     txManager,
		metrics:       metrics,
	}
}

// Execute returns the book. Concurrent returns of the same borrowing
// serialize on the row lock; the loser sees ErrAlreadyReturned and the
// inventory goes up exactly once.
func (uc *ReturnBorrowingUseCase) Execute(ctx context.Context, req ReturnBorrowingRequest) (*ReturnBorrowingResponse, error) {
	var (
		b    *borrowing.Borrowing
		fine *payment.Payment
	)

	err := uc.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		b, err = uc.borrowingRepo.LockByID(txCtx, req.BorrowingID)
		if err != nil {
			return err
		}

		// Non-staff users only see their own borrowings.
		if !req.ActorStaff && b.UserID != req.ActorID {
			return domainErrors.ErrBorrowingNotFound
		}

		today := time.Now()
		if err := b.Return(today); err != nil {
			return err
		}

		if err := uc.bookRepo.IncrementInventory(txCtx, b.BookID); err != nil {
			return err
		}

		if err := uc.borrowingRepo.Update(txCtx, b); err != nil {
			return err
		}

		if b.OverdueDays(today) > 0 {
			bk, err := uc.bookRepo.GetByID(txCtx, b.BookID)
			if err != nil {
				return err
			}
			fine, err = uc.sessions.OpenSession(txCtx, b, bk, payment.TypeFine)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		uc.metrics.BorrowingsTotal.WithLabelValues("return", "error").Inc()
		return nil, err
	}

	uc.metrics.BorrowingsTotal.WithLabelValues("return", "success").Inc()
	uc.metrics.OpenBorrowings.Dec()
	if fine != nil {
		uc.metrics.FinesIssuedTotal.Inc()
		uc.metrics.PaymentsTotal.WithLabelValues(string(payment.TypeFine), string(payment.StatusPending)).Inc()
	}

	return &ReturnBorrowingResponse{Borrowing: b, Fine: fine}, nil
}
