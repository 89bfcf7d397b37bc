package catalog_test

import (
	"context"
	"encoding/json"
	"testing"

	catalogApp "github.com/booklend/booklend/internal/application/catalog"
	"github.com/booklend/booklend/internal/domain/book"
	domainErrors "github.com/booklend/booklend/internal/domain/errors"
	"github.com/booklend/booklend/internal/testutil"
	"github.com/rs/zerolog"
)

// fakeCache is an in-memory stand-in for the Redis list cache.
type fakeCache struct {
	data          map[string][]byte
	hits          int
	invalidations int
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (c *fakeCache) Get(_ context.Context, prefix, suffix string, dst any) (bool, error) {
	raw, ok := c.data[prefix+":"+suffix]
	if !ok {
		return false, nil
	}
	c.hits++
	return true, json.Unmarshal(raw, dst)
}

func (c *fakeCache) Set(_ context.Context, prefix, suffix string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.data[prefix+":"+suffix] = raw
	return nil
}

func (c *fakeCache) InvalidatePrefix(_ context.Context, prefix string) error {
	c.invalidations++
	c.data = make(map[string][]byte)
	return nil
}

func newService(cache catalogApp.ListCache) (*catalogApp.Service, *testutil.MockBookRepository) {
	repo := testutil.NewMockBookRepository()
	return catalogApp.NewService(repo, cache, zerolog.Nop()), repo
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newService(nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, catalogApp.CreateBookRequest{
		Title: "", Cover: book.CoverHard, Inventory: 1, DailyFeeCents: 100,
	})
	if err == nil {
		t.Error("expected error for empty title")
	}

	_, err = svc.Create(ctx, catalogApp.CreateBookRequest{
		Title: "Ok", Cover: "PAPER", Inventory: 1, DailyFeeCents: 100,
	})
	if err == nil {
		t.Error("expected error for unknown cover")
	}

	_, err = svc.Create(ctx, catalogApp.CreateBookRequest{
		Title: "Ok", Cover: book.CoverSoft, Inventory: 1, DailyFeeCents: 0,
	})
	if err == nil {
		t.Error("expected error for zero fee")
	}
}

func TestList_UsesCache(t *testing.T) {
	cache := newFakeCache()
	svc, repo := newService(cache)
	ctx := context.Background()

	repo.AddBook(testutil.NewTestBook("A Book", 2, 150))

	if _, err := svc.List(ctx, 20, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.List(ctx, 20, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.hits != 1 {
		t.Errorf("cache hits = %d, want 1", cache.hits)
	}
}

func TestWrites_InvalidateCache(t *testing.T) {
	cache := newFakeCache()
	svc, repo := newService(cache)
	ctx := context.Background()

	b, err := svc.Create(ctx, catalogApp.CreateBookRequest{
		Title: "A Book", Cover: book.CoverSoft, Inventory: 2, DailyFeeCents: 150,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.invalidations != 1 {
		t.Errorf("invalidations after create = %d, want 1", cache.invalidations)
	}

	newTitle := "Renamed"
	if _, err := svc.Update(ctx, b.ID, catalogApp.UpdateBookRequest{Title: &newTitle}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := repo.GetBook(b.ID).Title; got != "Renamed" {
		t.Errorf("title = %q, want Renamed", got)
	}

	if err := svc.Delete(ctx, b.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.invalidations != 3 {
		t.Errorf("invalidations = %d, want 3", cache.invalidations)
	}
}

func TestUpdate_PartialAndInvalid(t *testing.T) {
	svc, repo := newService(nil)
	ctx := context.Background()

	b := testutil.NewTestBook("A Book", 2, 150)
	repo.AddBook(b)

	inv := 5
	updated, err := svc.Update(ctx, b.ID, catalogApp.UpdateBookRequest{Inventory: &inv})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Inventory != 5 || updated.Title != "A Book" {
		t.Errorf("partial update result: %+v", updated)
	}

	bad := -1
	if _, err := svc.Update(ctx, b.ID, catalogApp.UpdateBookRequest{Inventory: &bad}); err == nil {
		t.Error("expected error for negative inventory")
	}
}

func TestGet_NotFound(t *testing.T) {
	svc, _ := newService(nil)

	_, err := svc.Get(context.Background(), testutil.NewTestBook("x", 1, 1).ID)
	if err != domainErrors.ErrBookNotFound {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}
