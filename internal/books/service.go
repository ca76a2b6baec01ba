package books

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bookhaven/bookhaven/internal/platform/httpx"
)

// Service wraps catalog business rules.
type Service struct {
	repo   Repository
	cache  *Cache
	logger *slog.Logger
}

// NewService constructs a new Service. cache may be nil.
func NewService(repo Repository, cache *Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger}
}

// List returns catalog entries matching the filters, served from cache when
// possible.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Book, error) {
	if err := validateFilters(filters); err != nil {
		return nil, err
	}
	return s.cache.GetOrFill(ctx, FilterKey(filters), func(ctx context.Context) ([]Book, error) {
		return s.repo.List(ctx, filters)
	})
}

// Get returns a single catalog entry.
func (s *Service) Get(ctx context.Context, id int64) (*Book, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a new book owned by authorID and invalidates cached
// listings.
func (s *Service) Create(ctx context.Context, authorID int64, book Book) (Book, error) {
	book.AuthorID = authorID
	if book.Status == "" {
		book.Status = StatusDraft
	}
	if err := s.validate(book); err != nil {
		return Book{}, err
	}
	created, err := s.repo.Create(ctx, book)
	if err != nil {
		return Book{}, err
	}
	// Stale listings self-heal when the cache TTL lapses, so a failed
	// invalidation must not fail the write. It still has to be visible.
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("invalidate catalog cache", slog.Int64("book_id", created.ID), slog.Any("error", err))
	}
	return created, nil
}

// MostSold returns the best-selling book over all orders.
func (s *Service) MostSold(ctx context.Context) (*BestSeller, error) {
	return s.repo.MostSold(ctx)
}

func (s *Service) validate(b Book) error {
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("title is required: %w", httpx.ErrValidation)
	}
	if strings.TrimSpace(b.Description) == "" {
		return fmt.Errorf("description is required: %w", httpx.ErrValidation)
	}
	if b.Price < 0 || b.Price > 9999.99 {
		return fmt.Errorf("price out of range: %w", httpx.ErrValidation)
	}
	if b.Status != StatusDraft && b.Status != StatusPublished {
		return fmt.Errorf("status must be draft or published: %w", httpx.ErrValidation)
	}
	if b.PublishedOn.IsZero() {
		return fmt.Errorf("publish date is required: %w", httpx.ErrValidation)
	}
	return nil
}

func validateFilters(f ListFilters) error {
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return fmt.Errorf("min price above max price: %w", httpx.ErrValidation)
	}
	switch f.OrderBy {
	case "", "price", "published_on":
	default:
		return fmt.Errorf("order by must be price or published_on: %w", httpx.ErrValidation)
	}
	if f.Status != "" && f.Status != StatusDraft && f.Status != StatusPublished {
		return fmt.Errorf("status must be draft or published: %w", httpx.ErrValidation)
	}
	return nil
}
