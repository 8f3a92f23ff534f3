package classes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/bellacucina/platform/pkg/logging"
)

type countingSource struct {
	listCalls int
	getCalls  int
	items     []Class
	err       error
}

func (s *countingSource) ListClasses(ctx context.Context) ([]Class, error) {
	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.items, nil
}

func (s *countingSource) GetClass(ctx context.Context, slug string) (*Class, error) {
	s.getCalls++
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.items {
		if s.items[i].Slug == slug {
			return &s.items[i], nil
		}
	}
	return nil, ErrClassNotFound
}

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func sampleCatalog() []Class {
	return []Class{
		{Slug: "fresh-pasta-masterclass", Title: "Fresh Pasta Masterclass", PriceCents: 8500, DurationMinutes: 90, Level: "beginner"},
		{Slug: "neapolitan-pizza-night", Title: "Neapolitan Pizza Night", PriceCents: 7000, DurationMinutes: 120, Level: "beginner"},
	}
}

func TestCachedCatalog_ListClasses_PopulatesCache(t *testing.T) {
	source := &countingSource{items: sampleCatalog()}
	cache := NewCachedCatalog(source, testRedis(t), time.Minute, logging.Default())
	ctx := context.Background()

	first, err := cache.ListClasses(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := cache.ListClasses(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if source.listCalls != 1 {
		t.Errorf("expected one upstream call, got %d", source.listCalls)
	}
	if len(first) != 2 || len(second) != 2 {
		t.Errorf("expected 2 classes on both reads, got %d and %d", len(first), len(second))
	}
}

func TestCachedCatalog_GetClass_CachedPerSlug(t *testing.T) {
	source := &countingSource{items: sampleCatalog()}
	cache := NewCachedCatalog(source, testRedis(t), time.Minute, logging.Default())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		class, err := cache.GetClass(ctx, "fresh-pasta-masterclass")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if class.Title != "Fresh Pasta Masterclass" {
			t.Errorf("unexpected title %q", class.Title)
		}
	}

	if source.getCalls != 1 {
		t.Errorf("expected one upstream call, got %d", source.getCalls)
	}
}

func TestCachedCatalog_Invalidate(t *testing.T) {
	source := &countingSource{items: sampleCatalog()}
	cache := NewCachedCatalog(source, testRedis(t), time.Minute, logging.Default())
	ctx := context.Background()

	if _, err := cache.ListClasses(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := cache.GetClass(ctx, "neapolitan-pizza-night"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("invalidate failed: %v", err)
	}

	if _, err := cache.ListClasses(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if source.listCalls != 2 {
		t.Errorf("expected refetch after invalidation, got %d calls", source.listCalls)
	}
}

func TestCachedCatalog_NilClientFallsThrough(t *testing.T) {
	source := &countingSource{items: sampleCatalog()}
	cache := NewCachedCatalog(source, nil, time.Minute, logging.Default())
	ctx := context.Background()

	cache.ListClasses(ctx)
	cache.ListClasses(ctx)

	if source.listCalls != 2 {
		t.Errorf("expected every read to hit upstream without redis, got %d", source.listCalls)
	}
}

func TestCachedCatalog_UpstreamErrorPropagates(t *testing.T) {
	source := &countingSource{err: errors.New("cms down")}
	cache := NewCachedCatalog(source, testRedis(t), time.Minute, logging.Default())

	if _, err := cache.ListClasses(context.Background()); err == nil {
		t.Fatal("expected error when upstream fails with a cold cache")
	}
}
