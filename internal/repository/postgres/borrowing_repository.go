package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/booklend/booklend/internal/domain/borrowing"
	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BorrowingRepository implements borrowing.Repository using PostgreSQL.
type BorrowingRepository struct {
	pool *pgxpool.Pool
}

// NewBorrowingRepository creates a new BorrowingRepository.
func NewBorrowingRepository(pool *pgxpool.Pool) *BorrowingRepository {
	return &BorrowingRepository{pool: pool}
}

func (r *BorrowingRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

const borrowingColumns = `id, book_id, user_id, borrow_date, expected_return_date, actual_return_date, created_at, updated_at`

// Create inserts a new borrowing. The partial unique index on open
// borrowings turns a concurrent duplicate into ErrAlreadyBorrowed, so the
// "one open borrowing per (user, book)" invariant holds under race.
func (r *BorrowingRepository) Create(ctx context.Context, b *borrowing.Borrowing) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO borrowings
		 (id, book_id, user_id, borrow_date, expected_return_date, actual_return_date, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		b.ID, b.BookID, b.UserID, b.BorrowDate, b.ExpectedReturnDate, b.ActualReturnDate,
		b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrAlreadyBorrowed
		}
		return fmt.Errorf("insert borrowing: %w", err)
	}
	return nil
}

// LockByID fetches a borrowing with a row lock. Must run inside a
// transaction; concurrent returns of the same borrowing serialize here.
func (r *BorrowingRepository) LockByID(ctx context.Context, id uuid.UUID) (*borrowing.Borrowing, error) {
	return r.scanBorrowing(r.db(ctx).QueryRow(ctx,
		`SELECT `+borrowingColumns+` FROM borrowings WHERE id = $1 FOR UPDATE`, id))
}

// GetByID retrieves a borrowing by its ID.
func (r *BorrowingRepository) GetByID(ctx context.Context, id uuid.UUID) (*borrowing.Borrowing, error) {
	return r.scanBorrowing(r.db(ctx).QueryRow(ctx,
		`SELECT `+borrowingColumns+` FROM borrowings WHERE id = $1`, id))
}

// Update persists the mutable fields of a borrowing.
func (r *BorrowingRepository) Update(ctx context.Context, b *borrowing.Borrowing) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE borrowings SET actual_return_date=$1, updated_at=$2 WHERE id=$3`,
		b.ActualReturnDate, b.UpdatedAt, b.ID,
	)
	if err != nil {
		return fmt.Errorf("update borrowing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrBorrowingNotFound
	}
	return nil
}

// List lists borrowings with optional user and active filters.
func (r *BorrowingRepository) List(ctx context.Context, f borrowing.ListFilter) ([]*borrowing.Borrowing, error) {
	query := `SELECT ` + borrowingColumns + ` FROM borrowings WHERE 1=1`
	args := []any{}
	argIdx := 1

	if f.UserID != nil {
		query += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, *f.UserID)
		argIdx++
	}
	switch f.Active {
	case borrowing.ActiveOnly:
		query += " AND actual_return_date IS NULL"
	case borrowing.ReturnedOnly:
		query += " AND actual_return_date IS NOT NULL"
	}

	query += " ORDER BY borrow_date DESC"

	limit := f.Limit
	if limit <= 0 {
		limit = 20
	}
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
	args = append(args, limit, f.Offset)

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list borrowings: %w", err)
	}
	defer rows.Close()

	var borrowings []*borrowing.Borrowing
	for rows.Next() {
		b, err := r.scanBorrowing(rows)
		if err != nil {
			return nil, err
		}
		borrowings = append(borrowings, b)
	}
	return borrowings, rows.Err()
}

// HasOpenBorrowing reports whether the user currently holds the book.
func (r *BorrowingRepository) HasOpenBorrowing(ctx context.Context, userID, bookID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db(ctx).QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM borrowings
		   WHERE user_id = $1 AND book_id = $2 AND actual_return_date IS NULL
		 )`, userID, bookID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check open borrowing: %w", err)
	}
	return exists, nil
}

// ListDueBy returns open borrowings expected back on or before the given day.
func (r *BorrowingRepository) ListDueBy(ctx context.Context, day time.Time) ([]*borrowing.Borrowing, error) {
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+borrowingColumns+` FROM borrowings
		 WHERE actual_return_date IS NULL AND expected_return_date <= $1
		 ORDER BY expected_return_date ASC`, day,
	)
	if err != nil {
		return nil, fmt.Errorf("list due borrowings: %w", err)
	}
	defer rows.Close()

	var borrowings []*borrowing.Borrowing
	for rows.Next() {
		b, err := r.scanBorrowing(rows)
		if err != nil {
			return nil, err
		}
		borrowings = append(borrowings, b)
	}
	return borrowings, rows.Err()
}

func (r *BorrowingRepository) scanBorrowing(s scanner) (*borrowing.Borrowing, error) {
	b := &borrowing.Borrowing{}
	err := s.Scan(&b.ID, &b.BookID, &b.UserID, &b.BorrowDate, &b.ExpectedReturnDate,
		&b.ActualReturnDate, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainErrors.ErrBorrowingNotFound
		}
		return nil, fmt.Errorf("scan borrowing: %w", err)
	}
	return b, nil
}
