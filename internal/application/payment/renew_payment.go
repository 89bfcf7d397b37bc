package payment

import (
	"context"

	"github.com/booklend/booklend/internal/domain/book"
	"github.com/booklend/booklend/internal/domain/borrowing"
	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/booklend/booklend/internal/domain/payment"
	"github.com/booklend/booklend/internal/infrastructure/observability"
	"github.com/google/uuid"
)

// RenewPaymentUseCase opens a fresh checkout session for an expired payment.
// Only EXPIRED payments can be renewed; the amount is the one originally
// charged, even if the book's fee changed since.
type RenewPaymentUseCase struct {
	paymentRepo   payment.Repository
	borrowingRepo borrowing.Repository
	bookRepo      book.Repository
	checkout      *CheckoutService
	txManager     TransactionManager
	metrics       *observability.Metrics
}

// NewRenewPaymentUseCase creates a new RenewPaymentUseCase.
func NewRenewPaymentUseCase(
	paymentRepo payment.Repository,
	borrowingRepo borrowing.Repository,
	bookRepo book.Repository,
	checkout *CheckoutService,
	txManager TransactionManager,
	metrics *observability.Metrics,
) *RenewPaymentUseCase {
	return &RenewPaymentUseCase{
		paymentRepo:   paymentRepo,
		borrowingRepo: borrowingRepo,
		bookRepo:      bookRepo,
		checkout:      checkout,
		txManager:     txManager,
		metrics:       metrics,
	}
}

// Execute renews the payment for the given actor.
func (uc *RenewPaymentUseCase) Execute(ctx context.Context, paymentID, actorID uuid.UUID, actorStaff bool) (*payment.Payment, error) {
	p, err := uc.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	b, err := uc.borrowingRepo.GetByID(ctx, p.BorrowingID)
	if err != nil {
		return nil, err
	}
	if !actorStaff && b.UserID != actorID {
		return nil, domainErrors.ErrPaymentNotFound
	}

	if p.Status != payment.StatusExpired {
		return nil, domainErrors.ErrPaymentNotExpired
	}

	bk, err := uc.bookRepo.GetByID(ctx, b.BookID)
	if err != nil {
		return nil, err
	}

	name := bk.Title
	if p.Type == payment.TypeFine {
		name = "Fine " + name
	}

	err = uc.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		session, err := uc.checkout.ReopenSession(txCtx, p, name)
		if err != nil {
			return err
		}
		if err := p.Renew(session.ID, session.URL); err != nil {
			return err
		}
		return uc.paymentRepo.Update(txCtx, p)
	})
	if err != nil {
		return nil, err
	}

	uc.metrics.PaymentsTotal.WithLabelValues(string(p.Type), string(payment.StatusPending)).Inc()
	return p, nil
}
