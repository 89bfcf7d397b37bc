package payment

import (
	"context"

	"github.com/booklend/booklend/internal/domain/borrowing"
	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/booklend/booklend/internal/domain/payment"
	"github.com/google/uuid"
)

// ListPaymentsRequest holds the listing filters. UserID is honored for
// staff only.
type ListPaymentsRequest struct {
	ActorID    uuid.UUID
	ActorStaff bool
	UserID     *uuid.UUID
	Status     payment.Status
	Limit      int
	Offset     int
}

// ListPaymentsUseCase lists payments with ownership rules applied.
type ListPaymentsUseCase struct {
	paymentRepo payment.Repository
}

// NewListPaymentsUseCase creates a new ListPaymentsUseCase.
func NewListPaymentsUseCase(paymentRepo payment.Repository) *ListPaymentsUseCase {
	return &ListPaymentsUseCase{paymentRepo: paymentRepo}
}

// Execute lists payments.
func (uc *ListPaymentsUseCase) Execute(ctx context.Context, req ListPaymentsRequest) ([]*payment.Payment, error) {
	filter := payment.ListFilter{
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if req.Status != "" {
		status := req.Status
		filter.Status = &status
	}

	if req.ActorStaff {
		filter.UserID = req.UserID
	} else {
		actor := req.ActorID
		filter.UserID = &actor
	}

	return uc.paymentRepo.List(ctx, filter)
}

// GetPaymentUseCase fetches a single payment with ownership rules.
type GetPaymentUseCase struct {
	paymentRepo   payment.Repository
	borrowingRepo borrowing.Repository
}

// NewGetPaymentUseCase creates a new GetPaymentUseCase.
func NewGetPaymentUseCase(paymentRepo payment.Repository, borrowingRepo borrowing.Repository) *GetPaymentUseCase {
	return &GetPaymentUseCase{paymentRepo: paymentRepo, borrowingRepo: borrowingRepo}
}

// Execute fetches the payment. Non-staff callers only see their own.
func (uc *GetPaymentUseCase) Execute(ctx context.Context, id, actorID uuid.UUID, actorStaff bool) (*payment.Payment, error) {
	p, err := uc.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actorStaff {
		b, err := uc.borrowingRepo.GetByID(ctx, p.BorrowingID)
		if err != nil {
			return nil, err
		}
		if b.UserID != actorID {
			return nil, domainErrors.ErrPaymentNotFound
		}
	}
	return p, nil
}
