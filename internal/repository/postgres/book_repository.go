package postgres

import (
	"context"
	"fmt"

	"github.com/booklend/booklend/internal/domain/book"
	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BookRepository implements book.Repository using PostgreSQL.
type BookRepository struct {
	pool *pgxpool.Pool
}

// NewBookRepository creates a new BookRepository.
func NewBookRepository(pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

func (r *BookRepository) db(ctx context.Context) DBTX {
	return ConnFromCtx(ctx, r.pool)
}

const bookColumns = `id, title, author, cover, inventory, daily_fee, created_at, updated_at`

// Create inserts a new book.
func (r *BookRepository) Create(ctx context.Context, b *book.Book) error {
	_, err := r.db(ctx).Exec(ctx,
		`INSERT INTO books (id, title, author, cover, inventory, daily_fee, created_at, updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		b.ID, b.Title, b.Author, string(b.Cover), b.Inventory,
		centsToNumericString(b.DailyFeeCents), b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}
	return nil
}

// GetByID retrieves a book by its ID.
func (r *BookRepository) GetByID(ctx context.Context, id uuid.UUID) (*book.Book, error) {
	return r.scanBook(r.db(ctx).QueryRow(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = $1`, id))
}

// List returns books ordered by title.
func (r *BookRepository) List(ctx context.Context, limit, offset int) ([]*book.Book, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db(ctx).Query(ctx,
		`SELECT `+bookColumns+` FROM books ORDER BY title ASC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var books []*book.Book
	for rows.Next() {
		b, err := r.scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

// Update updates a book's catalog fields (not inventory; see the inventory
// methods for that).
func (r *BookRepository) Update(ctx context.Context, b *book.Book) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE books SET title=$1, author=$2, cover=$3, daily_fee=$4, updated_at=$5 WHERE id=$6`,
		b.Title, b.Author, string(b.Cover), centsToNumericString(b.DailyFeeCents), b.UpdatedAt, b.ID,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrBookNotFound
	}
	return nil
}

// Delete removes a book.
func (r *BookRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrBookNotFound
	}
	return nil
}

// DecrementInventory takes one copy off the shelf. The inventory > 0 guard
// makes concurrent borrows serialize on the row; the count cannot go
// negative.
func (r *BookRepository) DecrementInventory(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE books SET inventory = inventory - 1, updated_at = NOW()
		 WHERE id = $1 AND inventory > 0`, id,
	)
	if err != nil {
		return fmt.Errorf("decrement inventory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Distinguish a missing book from an out-of-stock one.
		var exists bool
		if err := r.db(ctx).QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check book exists: %w", err)
		}
		if !exists {
			return domainErrors.ErrBookNotFound
		}
		return domainErrors.ErrOutOfStock
	}
	return nil
}

// IncrementInventory puts one copy back.
func (r *BookRepository) IncrementInventory(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db(ctx).Exec(ctx,
		`UPDATE books SET inventory = inventory + 1, updated_at = NOW() WHERE id = $1`, id,
	)
	if err != nil {
		return fmt.Errorf("increment inventory: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrBookNotFound
	}
	return nil
}

func (r *BookRepository) scanBook(s scanner) (*book.Book, error) {
	b := &book.Book{}
	var (
		cover  string
		feeStr string
	)
	err := s.Scan(&b.ID, &b.Title, &b.Author, &cover, &b.Inventory, &feeStr, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domainErrors.ErrBookNotFound
		}
		return nil, fmt.Errorf("scan book: %w", err)
	}

	cents, err := numericStringToCents(feeStr)
	if err != nil {
		return nil, fmt.Errorf("parse daily fee: %w", err)
	}
	b.DailyFeeCents = cents
	b.Cover = book.Cover(cover)
	return b, nil
}
