package postgres

import (
	"context"
	"fmt"

	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/booklend/booklend/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PaymentRepository implements payment.Repository using PostgreSQL.
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func (r *PaymentRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

const paymentColumns = `id, borrowing_id, status, type, session_id, session_url, amount, created_at, updated_at, paid_at`

// Create inserts a new payment.
func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO payments
		 (id, borrowing_id, status, type, session_id, session_url, amount, created_at, updated_at, paid_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		p.ID, p.BorrowingID, string(p.Status), string(p.Type), p.SessionID, p.SessionURL,
		centsToNumericString(p.AmountCents), p.CreatedAt, p.UpdatedAt, p.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID retrieves a payment by its ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return r.scanPayment(r.db(ctx).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id))
}

// LockByID retrieves a payment with a FOR UPDATE row lock. Concurrent
// settlements serialize here.
func (r *PaymentRepository) LockByID(ctx context.Context, id uuid.UUID) (*payment.Payment, error) {
	return r.scanPayment(r.db(ctx).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = $1 FOR UPDATE`, id))
}

// GetBySessionID retrieves a payment by its checkout session id.
func (r *PaymentRepository) GetBySessionID(ctx context.Context, sessionID string) (*payment.Payment, error) {
	return r.scanPayment(r.db(ctx).QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE session_id = $1`, sessionID))
}

// Update updates an existing payment.
func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE payments SET status=$1, session_id=$2, session_url=$3, updated_at=$4, paid_at=$5
		 WHERE id=$6`,
		string(p.Status), p.SessionID, p.SessionURL, p.UpdatedAt, p.PaidAt, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrPaymentNotFound
	}
	return nil
}

// List lists payments with optional filters. When UserID is set, results are
// limited to payments on that user's borrowings.
func (r *PaymentRepository) List(ctx context.Context, f payment.ListFilter) ([]*payment.Payment, error) {
	query := `SELECT p.id, p.borrowing_id, p.status, p.type, p.session_id, p.session_url,
	                 p.amount, p.created_at, p.updated_at, p.paid_at
	          FROM payments p`
	args := []any{}
	argIdx := 1

	if f.UserID != nil {
		query += fmt.Sprintf(` JOIN borrowings b ON b.id = p.borrowing_id WHERE b.user_id = $%d`, argIdx)
		args = append(args, *f.UserID)
		argIdx++
	} else {
		query += ` WHERE 1=1`
	}
	if f.Status != nil {
		query += fmt.Sprintf(" AND p.status = $%d", argIdx)
		args = append(args, string(*f.Status))
		argIdx++
	}

	query += " ORDER BY p.created_at DESC"

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	return r.collect(rows)
}

// ListByBorrowing returns all payments attached to a borrowing.
func (r *PaymentRepository) ListByBorrowing(ctx context.Context, borrowingID uuid.UUID) ([]*payment.Payment, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE borrowing_id = $1 ORDER BY created_at ASC`,
		borrowingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list payments by borrowing: %w", err)
	}
	defer rows.Close()
	return r.collect(rows)
}

// ListPending returns all payments still awaiting settlement.
func (r *PaymentRepository) ListPending(ctx context.Context) ([]*payment.Payment, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE status = $1 ORDER BY created_at ASC`,
		string(payment.StatusPending),
	)
	if err != nil {
		return nil, fmt.Errorf("list pending payments: %w", err)
	}
	defer rows.Close()
	return r.collect(rows)
}

// HasPendingForUser reports whether any of the user's borrowings carry an
// unsettled payment.
func (r *PaymentRepository) HasPendingForUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db(ctx).QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM payments p
		   JOIN borrowings b ON b.id = p.borrowing_id
		   WHERE b.user_id = $1 AND p.status = $2
		 )`, userID, string(payment.StatusPending),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check pending payments: %w", err)
	}
	return exists, nil
}

func (r *PaymentRepository) collect(rows pgx.Rows) ([]*payment.Payment, error) {
	var payments []*payment.Payment
	for rows.Next() {
		p, err := r.scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func (r *PaymentRepository) scanPayment(s scanner) (*payment.Payment, error) {
	p := &payment.Payment{}
	var (
		status    string
		typ       string
		amountStr string
	)
	err := s.Scan(&p.ID, &p.BorrowingID, &status, &typ, &p.SessionID, &p.SessionURL,
		&amountStr, &p.CreatedAt, &p.UpdatedAt, &p.PaidAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainErrors.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}

	cents, err := numericStringToCents(amountStr)
	if err != nil {
		return nil, fmt.Errorf("parse amount: %w", err)
	}
	p.AmountCents = cents
	p.Status = payment.Status(status)
	p.Type = payment.Type(typ)
	return p, nil
}
