package payment

import (
	"context"

	"github.com/booklend/booklend/internal/domain/book"
	"github.com/booklend/booklend/internal/domain/borrowing"
	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/booklend/booklend/internal/domain/outbox"
	"github.com/booklend/booklend/internal/domain/payment"
	"github.com/booklend/booklend/internal/domain/user"
	"github.com/booklend/booklend/internal/infrastructure/gateway"
	"github.com/booklend/booklend/internal/infrastructure/observability"
)

// ConfirmPaymentResponse reports the payment after confirmation. Confirmed
// is false when the gateway has not registered the money yet.
type ConfirmPaymentResponse struct {
	Payment   *payment.Payment
	Confirmed bool
}

// ConfirmPaymentUseCase settles a checkout session: the gateway is asked for
// the session state and a paid session moves the payment to PAID exactly
// once. Confirming an already settled payment is a no-op, so retries and
// duplicate callbacks never double-notify.
type ConfirmPaymentUseCase struct {
	paymentRepo   payment.Repository
	borrowingRepo borrowing.Repository
	bookRepo      book.Repository
	userRepo      user.Repository
	outboxRepo    OutboxWriter
	gateway       gateway.Gateway
	txManager     TransactionManager
	metrics       *observability.Metrics
}

// NewConfirmPaymentUseCase creates a new ConfirmPaymentUseCase.
func NewConfirmPaymentUseCase(
	paymentRepo payment.Repository,
	borrowingRepo borrowing.Repository,
	bookRepo book.Repository,
	userRepo user.Repository,
	outboxRepo OutboxWriter,
	gw gateway.Gateway,
	txManager TransactionManager,
	metrics *observability.Metrics,
) *ConfirmPaymentUseCase {
	return &ConfirmPaymentUseCase{
		paymentRepo:   paymentRepo,
		borrowingRepo: borrowingRepo,
		bookRepo:      bookRepo,
		userRepo:      userRepo,
		outboxRepo:    outboxRepo,
		gateway:       gw,
		txManager:     txManager,
		metrics:       metrics,
	}
}

// Execute confirms the payment behind the given checkout session.
func (uc *ConfirmPaymentUseCase) Execute(ctx context.Context, sessionID string) (*ConfirmPaymentResponse, error) {
	p, err := uc.paymentRepo.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if p.IsTerminal() {
		return &ConfirmPaymentResponse{Payment: p, Confirmed: true}, nil
	}

	session, err := uc.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, domainErrors.NewDomainError("gateway_unavailable", "could not retrieve checkout session", domainErrors.ErrPaymentGateway)
	}
	if session.PaymentStatus != gateway.PaymentStatusPaid {
		return &ConfirmPaymentResponse{Payment: p, Confirmed: false}, nil
	}

	settled, err := uc.settle(ctx, p)
	if err != nil {
		return nil, err
	}

	uc.metrics.PaymentsTotal.WithLabelValues(string(settled.Type), string(payment.StatusPaid)).Inc()
	return &ConfirmPaymentResponse{Payment: settled, Confirmed: true}, nil
}

// settle marks the payment paid and queues the success notification in one
// transaction. The payment is re-read under a row lock inside the
// transaction: the success redirect and the expiry scan can both confirm the
// same session, and whichever loses the race must see the settled row and
// queue nothing.
func (uc *ConfirmPaymentUseCase) settle(ctx context.Context, p *payment.Payment) (*payment.Payment, error) {
	b, err := uc.borrowingRepo.GetByID(ctx, p.BorrowingID)
	if err != nil {
		return nil, err
	}
	bk, err := uc.bookRepo.GetByID(ctx, b.BookID)
	if err != nil {
		return nil, err
	}
	usr, err := uc.userRepo.GetByID(ctx, b.UserID)
	if err != nil {
		return nil, err
	}

	var settled *payment.Payment
	err = uc.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		locked, err := uc.paymentRepo.LockByID(txCtx, p.ID)
		if err != nil {
			return err
		}
		if locked.IsTerminal() {
			settled = locked
			return nil
		}

		if err := locked.MarkPaid(); err != nil {
			return err
		}
		if err := uc.paymentRepo.Update(txCtx, locked); err != nil {
			return err
		}

		entry := outbox.NewEntry("payment", locked.ID, outbox.EventPaymentSuccessful, map[string]any{
			"user_email":   usr.Email,
			"book_title":   bk.Title,
			"payment_type": string(locked.Type),
			"amount_cents": locked.AmountCents,
		})
		if err := uc.outboxRepo.Insert(txCtx, entry); err != nil {
			return err
		}
		settled = locked
		return nil
	})
	if err != nil {
		return nil, err
	}
	return settled, nil
}
