package authors

import (
	"context"
	"fmt"
	"strings"

	"github.com/bookhaven/bookhaven/internal/platform/httpx"
)

// Service wraps author reporting rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// UpdateBiography stores a new biography for the calling author.
func (s *Service) UpdateBiography(ctx context.Context, authorID int64, bio string) error {
	if strings.TrimSpace(bio) == "" {
		return fmt.Errorf("biography is required: %w", httpx.ErrValidation)
	}
	return s.repo.UpdateBio(ctx, authorID, bio)
}

// Revenue reports each author's accumulated earnings, highest first.
func (s *Service) Revenue(ctx context.Context) ([]Earnings, error) {
	return s.repo.Earnings(ctx)
}

// TopPaid returns the three highest-earning authors.
func (s *Service) TopPaid(ctx context.Context) ([]Earnings, error) {
	return s.repo.TopEarners(ctx, TopPaidLimit)
}

// ProlificAuthors reports authors who published more than minBooks books.
func (s *Service) ProlificAuthors(ctx context.Context, minBooks int64) ([]BookCount, error) {
	if minBooks < 1 || minBooks > MaxBookThreshold {
		return nil, fmt.Errorf("book threshold out of range: %w", httpx.ErrValidation)
	}
	return s.repo.CountsAbove(ctx, minBooks)
}

// IdleAuthors reports authors with no published books.
func (s *Service) IdleAuthors(ctx context.Context) ([]Author, error) {
	return s.repo.WithoutPublishedBooks(ctx)
}

// SoldAtLeast reports authors whose books sold at least minUnits copies.
func (s *Service) SoldAtLeast(ctx context.Context, minUnits int64) ([]SalesCount, error) {
	if minUnits < 0 {
		return nil, fmt.Errorf("unit threshold must not be negative: %w", httpx.ErrValidation)
	}
	return s.repo.SoldAtLeast(ctx, minUnits)
}

// Books lists an author's catalog with per-book sales, best seller first.
func (s *Service) Books(ctx context.Context, name string) ([]AuthorBook, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("author name is required: %w", httpx.ErrValidation)
	}
	return s.repo.BooksByAuthor(ctx, name)
}

// UnsoldBooks lists an author's books that never appeared on an order.
func (s *Service) UnsoldBooks(ctx context.Context, name string) ([]UnsoldBook, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("author name is required: %w", httpx.ErrValidation)
	}
	return s.repo.UnsoldByAuthor(ctx, name)
}

// AveragePrices reports the mean list price over each author's books.
func (s *Service) AveragePrices(ctx context.Context) ([]AveragePrice, error) {
	return s.repo.AveragePrices(ctx)
}
