package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookhaven/bookhaven/internal/platform/db"
	"github.com/bookhaven/bookhaven/internal/platform/httpx"
)

// ErrInsufficientBalance rejects orders the buyer cannot afford.
var ErrInsufficientBalance = fmt.Errorf("insufficient balance: %w", httpx.ErrValidation)

// Repository defines persistence operations for orders.
type Repository interface {
	BookInfo(ctx context.Context, ids []int64) (map[int64]BookInfo, error)
	UserEmail(ctx context.Context, id int64) (string, error)
	Place(ctx context.Context, order *Order) error
	HistoryByUser(ctx context.Context, userID int64) ([]Order, error)
	TopSpenders(ctx context.Context, minTotal float64) ([]Spender, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) BookInfo(ctx context.Context, ids []int64) (map[int64]BookInfo, error) {
	query := `SELECT id, author_id, title, price, status FROM books WHERE id = ANY($1)`
	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	info := make(map[int64]BookInfo, len(ids))
	for rows.Next() {
		var b BookInfo
		if err := rows.Scan(&b.ID, &b.AuthorID, &b.Title, &b.Price, &b.Status); err != nil {
			return nil, err
		}
		info[b.ID] = b
	}
	return info, rows.Err()
}

func (r *repository) UserEmail(ctx context.Context, id int64) (string, error) {
	var email string
	err := r.pool.QueryRow(ctx, `SELECT email FROM users WHERE id = $1`, id).Scan(&email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", httpx.ErrNotFound
		}
		return "", err
	}
	return email, nil
}

// Place stores the order atomically: the buyer's balance is debited, the
// order and its items are inserted, and each book's author is credited.
// Everything commits or rolls back together.
func (r *repository) Place(ctx context.Context, order *Order) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var balance float64
		err := tx.QueryRow(ctx, `SELECT balance FROM users WHERE id = $1 FOR UPDATE`, order.UserID).Scan(&balance)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return httpx.ErrNotFound
			}
			return err
		}
		if balance < order.TotalPrice {
			return ErrInsufficientBalance
		}

		err = tx.QueryRow(ctx,
			`INSERT INTO orders (user_id, status, total_price) VALUES ($1, $2, $3) RETURNING id, created_at`,
			order.UserID, order.Status, order.TotalPrice,
		).Scan(&order.ID, &order.CreatedAt)
		if err != nil {
			return err
		}

		for i := range order.Items {
			item := &order.Items[i]
			item.OrderID = order.ID
			err = tx.QueryRow(ctx,
				`INSERT INTO order_items (order_id, book_id, quantity, unit_price, line_total)
				 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
				item.OrderID, item.BookID, item.Quantity, item.UnitPrice, item.LineTotal,
			).Scan(&item.ID)
			if err != nil {
				return err
			}
			_, err = tx.Exec(ctx,
				`UPDATE users SET total_sales = total_sales + $1
				 WHERE id = (SELECT author_id FROM books WHERE id = $2)`,
				item.LineTotal, item.BookID,
			)
			if err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx,
			`UPDATE users SET balance = balance - $1, updated_at = now() WHERE id = $2`,
			order.TotalPrice, order.UserID,
		)
		return err
	})
}

func (r *repository) HistoryByUser(ctx context.Context, userID int64) ([]Order, error) {
	query := `SELECT id, user_id, status, total_price, created_at
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalPrice, &o.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range result {
		items, err := r.itemsForOrder(ctx, result[i].ID)
		if err != nil {
			return nil, err
		}
		result[i].Items = items
	}
	return result, nil
}

func (r *repository) itemsForOrder(ctx context.Context, orderID int64) ([]OrderItem, error) {
	query := `SELECT oi.id, oi.order_id, oi.book_id, b.title, oi.quantity, oi.unit_price, oi.line_total
		FROM order_items oi
		JOIN books b ON b.id = oi.book_id
		WHERE oi.order_id = $1 ORDER BY oi.id`
	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []OrderItem
	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.BookID, &item.Title, &item.Quantity, &item.UnitPrice, &item.LineTotal); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *repository) TopSpenders(ctx context.Context, minTotal float64) ([]Spender, error) {
	query := `SELECT u.id, u.name, u.email, SUM(o.total_price) AS spent
		FROM orders o
		JOIN users u ON u.id = o.user_id
		GROUP BY u.id, u.name, u.email
		HAVING SUM(o.total_price) >= $1
		ORDER BY spent DESC`
	rows, err := r.pool.Query(ctx, query, minTotal)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Spender
	for rows.Next() {
		var s Spender
		if err := rows.Scan(&s.UserID, &s.Name, &s.Email, &s.TotalSpent); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
