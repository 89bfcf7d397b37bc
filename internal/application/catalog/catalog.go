package catalog

import (
	"context"
	"fmt"

	"github.com/booklend/booklend/internal/domain/book"
	"github.com/booklend/booklend/internal/domain/errors"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const cachePrefix = "books"

// ListCache is the caching port for rendered book lists.
type ListCache interface {
	Get(ctx context.Context, prefix, suffix string, dst any) (bool, error)
	Set(ctx context.Context, prefix, suffix string, v any) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// Service manages the book catalog. Listings are cached; every write
// invalidates the cache, and cache trouble degrades to the database rather
// than failing the request.
type Service struct {
	bookRepo book.Repository
	cache    ListCache
	logger   zerolog.Logger
}

// NewService creates a new catalog Service. cache may be nil, in which case
// every read hits the database.
func NewService(bookRepo book.Repository, cache ListCache, logger zerolog.Logger) *Service {
	return &Service{bookRepo: bookRepo, cache: cache, logger: logger}
}

// CreateBookRequest holds the input for adding a book.
type CreateBookRequest struct {
	Title         string
	Author        string
	Cover         book.Cover
	Inventory     int
	DailyFeeCents int64
}

// Create adds a book to the catalog.
func (s *Service) Create(ctx context.Context, req CreateBookRequest) (*book.Book, error) {
	b, err := book.New(req.Title, req.Author, req.Cover, req.Inventory, req.DailyFeeCents)
	if err != nil {
		return nil, err
	}
	if err := s.bookRepo.Create(ctx, b); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return b, nil
}

// UpdateBookRequest holds the input for editing a book. Nil fields are left
// unchanged.
type UpdateBookRequest struct {
	Title         *string
	Author        *string
	Cover         *book.Cover
	Inventory     *int
	DailyFeeCents *int64
}

// Update edits an existing book.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateBookRequest) (*book.Book, error) {
	b, err := s.bookRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return nil, errors.NewValidationError("title", "cannot be empty")
		}
		b.Title = *req.Title
	}
	if req.Author != nil {
		b.Author = *req.Author
	}
	if req.Cover != nil {
		if *req.Cover != book.CoverHard && *req.Cover != book.CoverSoft {
			return nil, errors.NewValidationError("cover", "must be HARD or SOFT")
		}
		b.Cover = *req.Cover
	}
	if req.Inventory != nil {
		if *req.Inventory < 0 {
			return nil, errors.NewValidationError("inventory", "cannot be negative")
		}
		b.Inventory = *req.Inventory
	}
	if req.DailyFeeCents != nil {
		if *req.DailyFeeCents <= 0 {
			return nil, errors.NewValidationError("daily_fee", "must be greater than 0")
		}
		b.DailyFeeCents = *req.DailyFeeCents
	}

	if err := s.bookRepo.Update(ctx, b); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return b, nil
}

// Delete removes a book from the catalog.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.bookRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Get fetches a single book.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*book.Book, error) {
	return s.bookRepo.GetByID(ctx, id)
}

// List returns a page of the catalog, served from cache when possible.
func (s *Service) List(ctx context.Context, limit, offset int) ([]*book.Book, error) {
	if limit <= 0 {
		limit = 20
	}
	suffix := fmt.Sprintf("list:%d:%d", limit, offset)

	if s.cache != nil {
		var cached []*book.Book
		hit, err := s.cache.Get(ctx, cachePrefix, suffix, &cached)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Book list cache read failed")
		} else if hit {
			return cached, nil
		}
	}

	books, err := s.bookRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cachePrefix, suffix, books); err != nil {
			s.logger.Warn().Err(err).Msg("Book list cache write failed")
		}
	}
	return books, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidatePrefix(ctx, cachePrefix); err != nil {
		s.logger.Warn().Err(err).Msg("Book list cache invalidation failed")
	}
}
