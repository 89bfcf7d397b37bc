package payment

import (
	"context"
	"regexp"
	"time"

	"github.com/booklend/booklend/internal/domain/book"
	"github.com/booklend/booklend/internal/domain/borrowing"
	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/booklend/booklend/internal/domain/payment"
	"github.com/booklend/booklend/internal/infrastructure/config"
	"github.com/booklend/booklend/internal/infrastructure/gateway"
)

// The gateway rejects product names with exotic characters and caps their
// length, so titles are stripped down before they leave the system.
var productNamePattern = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

const maxProductNameLen = 127

// CheckoutService opens checkout sessions at the external gateway and
// records the resulting payment. Callers run it inside their transaction so
// a gateway failure undoes the surrounding state change.
type CheckoutService struct {
	paymentRepo payment.Repository
	gateway     gateway.Gateway
	successURL  string
	cancelURL   string
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(paymentRepo payment.Repository, gw gateway.Gateway, cfg *config.GatewayConfig) *CheckoutService {
	return &CheckoutService{
		paymentRepo: paymentRepo,
		gateway:     gw,
		successURL:  cfg.SuccessURL,
		cancelURL:   cfg.CancelURL,
	}
}

// OpenSession opens a checkout session for the borrowing charge or fine and
// persists the pending payment.
func (s *CheckoutService) OpenSession(ctx context.Context, b *borrowing.Borrowing, bk *book.Book, typ payment.Type) (*payment.Payment, error) {
	var amount int64
	name := bk.Title

	switch typ {
	case payment.TypeFine:
		asOf := time.Now()
		if b.ActualReturnDate != nil {
			asOf = *b.ActualReturnDate
		}
		amount = b.FineAmountCents(bk.DailyFeeCents, asOf)
		name = "Fine " + name
	default:
		amount = b.PaymentAmountCents(bk.DailyFeeCents)
	}

	session, err := s.openGatewaySession(ctx, amount, name)
	if err != nil {
		return nil, err
	}

	p, err := payment.New(b.ID, typ, session.ID, session.URL, amount)
	if err != nil {
		return nil, err
	}
	if err := s.paymentRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ReopenSession opens a fresh session for an existing payment, keeping the
// original amount.
func (s *CheckoutService) ReopenSession(ctx context.Context, p *payment.Payment, productName string) (*gateway.Session, error) {
	return s.openGatewaySession(ctx, p.AmountCents, productName)
}

func (s *CheckoutService) openGatewaySession(ctx context.Context, amountCents int64, productName string) (*gateway.Session, error) {
	session, err := s.gateway.CreateCheckoutSession(ctx, gateway.CheckoutRequest{
		AmountCents: amountCents,
		Currency:    "usd",
		ProductName: SanitizeProductName(productName),
		SuccessURL:  s.successURL,
		CancelURL:   s.cancelURL,
	})
	if err != nil {
		return nil, domainErrors.NewDomainError("gateway_unavailable", "could not open checkout session", domainErrors.ErrPaymentGateway)
	}
	return session, nil
}

// SanitizeProductName strips characters the gateway rejects and truncates
// the result.
func SanitizeProductName(name string) string {
	clean := productNamePattern.ReplaceAllString(name, "")
	if len(clean) > maxProductNameLen {
		clean = clean[:maxProductNameLen]
	}
	return clean
}
