package borrowing

import (
	"context"
	"time"

	"github.com/booklend/booklend/internal/domain/book"
	"github.com/booklend/booklend/internal/domain/borrowing"
	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/booklend/booklend/internal/domain/outbox"
	"github.com/booklend/booklend/internal/domain/payment"
	"github.com/booklend/booklend/internal/domain/user"
	"github.com/booklend/booklend/internal/infrastructure/observability"
	"github.com/google/uuid"
)

// CreateBorrowingRequest holds the input for borrowing a book.
type CreateBorrowingRequest struct {
	UserID             uuid.UUID
	BookID             uuid.UUID
	ExpectedReturnDate time.Time
}

// CreateBorrowingResponse holds the created borrowing and the checkout
// session the user must complete to pay for it.
type CreateBorrowingResponse struct {
	Borrowing *borrowing.Borrowing
	Payment   *payment.Payment
}

// CreateBorrowingUseCase orchestrates borrowing a book: inventory is
// decremented, the borrowing recorded, a checkout session opened and the
// notification event written, all in one transaction. If the gateway is
// down the whole operation rolls back and the copy stays on the shelf.
type CreateBorrowingUseCase struct {
	borrowingRepo borrowing.Repository
	bookRepo      book.Repository
	paymentRepo   payment.Repository
	userRepo      user.Repository
	outboxRepo    OutboxWriter
	sessions      SessionOpener
	txManager     TransactionManager
	metrics       *observability.Metrics
}

// NewCreateBorrowingUseCase creates a new CreateBorrowingUseCase.
func NewCreateBorrowingUseCase(
	borrowingRepo borrowing.Repository,
	bookRepo book.Repository,
	paymentRepo payment.Repository,
	userRepo user.Repository,
	outboxRepo OutboxWriter,
	sessions SessionOpener,
	txManager TransactionManager,
	metrics *observability.Metrics,
) *CreateBorrowingUseCase {
	return &CreateBorrowingUseCase{
		borrowingRepo: borrowingRepo,
		bookRepo:      bookRepo,
		paymentRepo:   paymentRepo,
		userRepo:      userRepo,
		outboxRepo:    outboxRepo,
		sessions:      sessions,
		txManager:     txManager,
		metrics:       metrics,
	}
}

// Execute borrows one copy of a book for the user.
func (uc *CreateBorrowingUseCase) Execute(ctx context.Context, req CreateBorrowingRequest) (*CreateBorrowingResponse, error) {
	usr, err := uc.userRepo.GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	// Users with unfinished checkouts must settle them first.
	pending, err := uc.paymentRepo.HasPendingForUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, domainErrors.ErrPendingPayments
	}

	held, err := uc.borrowingRepo.HasOpenBorrowing(ctx, req.UserID, req.BookID)
	if err != nil {
		return nil, err
	}
	if held {
		return nil, domainErrors.ErrAlreadyBorrowed
	}

	b, err := borrowing.New(req.UserID, req.BookID, req.ExpectedReturnDate, time.Now())
	if err != nil {
		return nil, err
	}

	var pay *payment.Payment
	err = uc.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		bk, err := uc.bookRepo.GetByID(txCtx, req.BookID)
		if err != nil {
			return err
		}

		// Conditional update; fails with ErrOutOfStock instead of going
		// negative under concurrent borrows.
		if err := uc.bookRepo.DecrementInventory(txCtx, bk.ID); err != nil {
			return err
		}

		if err := uc.borrowingRepo.Create(txCtx, b); err != nil {
			return err
		}

		// Gateway call happens inside the transaction on purpose: a failed
		// session means no borrowing and no inventory change.
		pay, err = uc.sessions.OpenSession(txCtx, b, bk, payment.TypePayment)
		if err != nil {
			return err
		}

		entry := outbox.NewEntry("borrowing", b.ID, outbox.EventBorrowingCreated, map[string]any{
			"user_email":           usr.Email,
			"book_title":           bk.Title,
			"expected_return_date": b.ExpectedReturnDate.Format(time.DateOnly),
		})
		return uc.outboxRepo.Insert(txCtx, entry)
	})
	if err != nil {
		uc.metrics.BorrowingsTotal.WithLabelValues("create", "error").Inc()
		return nil, err
	}

	uc.metrics.BorrowingsTotal.WithLabelValues("create", "success").Inc()
	uc.metrics.OpenBorrowings.Inc()
	uc.metrics.PaymentsTotal.WithLabelValues(string(payment.TypePayment), string(payment.StatusPending)).Inc()

	return &CreateBorrowingResponse{Borrowing: b, Payment: pay}, nil
}
