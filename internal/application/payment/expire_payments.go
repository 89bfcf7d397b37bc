package payment

import (
	"context"
	"time"

	"github.com/booklend/booklend/internal/domain/payment"
	"github.com/booklend/booklend/internal/infrastructure/gateway"
	"github.com/booklend/booklend/internal/infrastructure/observability"
	"github.com/rs/zerolog"
)

// ExpirePaymentsScan walks the pending payments and reconciles each with
// the gateway: sessions the gateway expired become EXPIRED here, and
// sessions that were paid behind our back get settled. One bad session never
// stops the sweep.
type ExpirePaymentsScan struct {
	paymentRepo payment.Repository
	gateway     gateway.Gateway
	confirm     *ConfirmPaymentUseCase
	txManager   TransactionManager
	logger      zerolog.Logger
	metrics     *observability.Metrics
}

// NewExpirePaymentsScan creates a new ExpirePaymentsScan.
func NewExpirePaymentsScan(
	paymentRepo payment.Repository,
	gw gateway.Gateway,
	confirm *ConfirmPaymentUseCase,
	txManager TransactionManager,
	logger zerolog.Logger,
	metrics *observability.Metrics,
) *ExpirePaymentsScan {
	return &ExpirePaymentsScan{
		paymentRepo: paymentRepo,
		gateway:     gw,
		confirm:     confirm,
		txManager:   txManager,
		logger:      logger,
		metrics:     metrics,
	}
}

// Run reconciles all pending payments once.
func (s *ExpirePaymentsScan) Run(ctx context.Context) error {
	start := time.Now()
	defer func() {
		s.metrics.ScanDuration.WithLabelValues("payment_expiry").Observe(time.Since(start).Seconds())
	}()

	pending, err := s.paymentRepo.ListPending(ctx)
	if err != nil {
		return err
	}

	for _, p := range pending {
		result := s.reconcile(ctx, p)
		s.metrics.ScanItemsTotal.WithLabelValues("payment_expiry", result).Inc()
	}
	return nil
}

func (s *ExpirePaymentsScan) reconcile(ctx context.Context, p *payment.Payment) string {
	session, err := s.gateway.RetrieveSession(ctx, p.SessionID)
	if err != nil {
		s.logger.Warn().Err(err).
			Str("payment_id", p.ID.String()).
			Str("session_id", p.SessionID).
			Msg("Could not retrieve session, skipping")
		return "error"
	}

	switch {
	case session.PaymentStatus == gateway.PaymentStatusPaid:
		if _, err := s.confirm.Execute(ctx, p.SessionID); err != nil {
			s.logger.Error().Err(err).Str("payment_id", p.ID.String()).Msg("Failed to settle paid session")
			return "error"
		}
		return "paid"

	case session.Status == gateway.SessionStatusExpired:
		err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			if err := p.MarkExpired(); err != nil {
				return err
			}
			return s.paymentRepo.Update(txCtx, p)
		})
		if err != nil {
			s.logger.Error().Err(err).Str("payment_id", p.ID.String()).Msg("Failed to expire payment")
			return "error"
		}
		s.logger.Info().
			Str("payment_id", p.ID.String()).
			Str("session_id", p.SessionID).
			Msg("Payment expired")
		return "expired"

	default:
		return "unchanged"
	}
}
