package orders

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/bookhaven/bookhaven/internal/platform/httpx"
	"github.com/bookhaven/bookhaven/jobs"
)

// ReceiptDispatcher enqueues the post-purchase receipt job.
type ReceiptDispatcher interface {
	EnqueueOrderReceipt(ctx context.Context, payload jobs.OrderReceiptPayload) error
}

// Service wraps order business rules.
type Service struct {
	repo     Repository
	receipts ReceiptDispatcher
	logger   *slog.Logger
}

// NewService constructs a new Service. receipts may be nil (tests).
func NewService(repo Repository, receipts ReceiptDispatcher, logger *slog.Logger) *Service {
	return &Service{repo: repo, receipts: receipts, logger: logger}
}

// Place validates the requested lines, prices them against the current
// catalog and stores the order atomically. On success a receipt job is
// enqueued fire-and-forget.
func (s *Service) Place(ctx context.Context, userID int64, lines []LineInput) (*Order, error) {
	if len(lines) == 0 {
		return nil, fmt.Errorf("order has no items: %w", httpx.ErrValidation)
	}

	quantities := make(map[int64]int, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be positive: %w", httpx.ErrValidation)
		}
		if _, seen := quantities[line.BookID]; !seen {
			ids = append(ids, line.BookID)
		}
		quantities[line.BookID] += line.Quantity
	}

	info, err := s.repo.BookInfo(ctx, ids)
	if err != nil {
		return nil, err
	}

	order := &Order{UserID: userID, Status: StatusPaid}
	for _, id := range ids {
		book, ok := info[id]
		if !ok {
			return nil, fmt.Errorf("book %d: %w", id, httpx.ErrNotFound)
		}
		if book.Status != "published" {
			return nil, fmt.Errorf("book %d is not published: %w", id, httpx.ErrValidation)
		}
		qty := quantities[id]
		lineTotal := round2(book.Price * float64(qty))
		order.Items = append(order.Items, OrderItem{
			BookID:    id,
			Title:     book.Title,
			Quantity:  qty,
			UnitPrice: book.Price,
			LineTotal: lineTotal,
		})
		order.TotalPrice = round2(order.TotalPrice + lineTotal)
	}

	if err := s.repo.Place(ctx, order); err != nil {
		return nil, err
	}

	s.dispatchReceipt(ctx, order)
	return order, nil
}

func (s *Service) dispatchReceipt(ctx context.Context, order *Order) {
	if s.receipts == nil {
		return
	}
	email, err := s.repo.UserEmail(ctx, order.UserID)
	if err != nil {
		if s.logger != nil {
			s.logger.Warn("receipt recipient lookup", slog.Int64("order_id", order.ID), slog.Any("error", err))
		}
		return
	}
	payload := jobs.OrderReceiptPayload{
		OrderID: order.ID,
		Email:   email,
		Total:   order.TotalPrice,
	}
	for _, item := range order.Items {
		payload.Items = append(payload.Items, jobs.ReceiptLine{
			BookID:    item.BookID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			LineTotal: item.LineTotal,
		})
	}
	if err := s.receipts.EnqueueOrderReceipt(ctx, payload); err != nil && s.logger != nil {
		s.logger.Warn("enqueue order receipt", slog.Int64("order_id", order.ID), slog.Any("error", err))
	}
}

// History returns the caller's orders, newest first.
func (s *Service) History(ctx context.Context, userID int64) ([]Order, error) {
	return s.repo.HistoryByUser(ctx, userID)
}

// TopSpenders lists users whose cumulative order total reaches minTotal.
func (s *Service) TopSpenders(ctx context.Context, minTotal float64) ([]Spender, error) {
	if minTotal < 0 {
		return nil, fmt.Errorf("amount must be non-negative: %w", httpx.ErrValidation)
	}
	return s.repo.TopSpenders(ctx, minTotal)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
