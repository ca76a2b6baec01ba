package authors

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookhaven/bookhaven/internal/platform/httpx"
)

// Repository defines persistence operations for author reporting.
type Repository interface {
	UpdateBio(ctx context.Context, authorID int64, bio string) error
	Earnings(ctx context.Context) ([]Earnings, error)
	TopEarners(ctx context.Context, limit int) ([]Earnings, error)
	CountsAbove(ctx context.Context, minBooks int64) ([]BookCount, error)
	WithoutPublishedBooks(ctx context.Context) ([]Author, error)
	SoldAtLeast(ctx context.Context, minUnits int64) ([]SalesCount, error)
	BooksByAuthor(ctx context.Context, name string) ([]AuthorBook, error)
	UnsoldByAuthor(ctx context.Context, name string) ([]UnsoldBook, error)
	AveragePrices(ctx context.Context) ([]AveragePrice, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) UpdateBio(ctx context.Context, authorID int64, bio string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET bio = $1, updated_at = now() WHERE id = $2`, bio, authorID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Earnings(ctx context.Context) ([]Earnings, error) {
	query := `SELECT id, name, total_sales FROM users
		WHERE role = 'author'
		ORDER BY total_sales DESC, name ASC`
	return r.queryEarnings(ctx, query)
}

func (r *repository) TopEarners(ctx context.Context, limit int) ([]Earnings, error) {
	query := `SELECT id, name, total_sales FROM users
		WHERE role = 'author'
		ORDER BY total_sales DESC, name ASC
		LIMIT $1`
	return r.queryEarnings(ctx, query, limit)
}

func (r *repository) queryEarnings(ctx context.Context, query string, args ...any) ([]Earnings, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Earnings
	for rows.Next() {
		var e Earnings
		if err := rows.Scan(&e.AuthorID, &e.Name, &e.Revenue); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func (r *repository) CountsAbove(ctx context.Context, minBooks int64) ([]BookCount, error) {
	query := `SELECT u.id, u.name, COUNT(b.id) AS books
		FROM users u
		JOIN books b ON b.author_id = u.id
		GROUP BY u.id, u.name
		HAVING COUNT(b.id) > $1
		ORDER BY books DESC, u.name ASC`
	rows, err := r.db.Query(ctx, query, minBooks)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []BookCount
	for rows.Next() {
		var c BookCount
		if err := rows.Scan(&c.AuthorID, &c.Name, &c.Books); err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (r *repository) WithoutPublishedBooks(ctx context.Context) ([]Author, error) {
	query := `SELECT u.id, u.name FROM users u
		WHERE u.role = 'author'
		AND NOT EXISTS (
			SELECT 1 FROM books b WHERE b.author_id = u.id AND b.status = 'published'
		)
		ORDER BY u.name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Author
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *repository) SoldAtLeast(ctx context.Context, minUnits int64) ([]SalesCount, error) {
	query := `SELECT u.id, u.name, SUM(oi.quantity) AS units
		FROM users u
		JOIN books b ON b.author_id = u.id
		JOIN order_items oi ON oi.book_id = b.id
		GROUP BY u.id, u.name
		HAVING SUM(oi.quantity) >= $1
		ORDER BY units DESC, u.name ASC`
	rows, err := r.db.Query(ctx, query, minUnits)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SalesCount
	for rows.Next() {
		var s SalesCount
		if err := rows.Scan(&s.AuthorID, &s.Name, &s.UnitsSold); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

func (r *repository) BooksByAuthor(ctx context.Context, name string) ([]AuthorBook, error) {
	authorID, err := r.lookupAuthor(ctx, name)
	if err != nil {
		return nil, err
	}
	query := `SELECT b.id, b.title, b.published_on, COALESCE(SUM(oi.quantity), 0) AS units
		FROM books b
		LEFT JOIN order_items oi ON oi.book_id = b.id
		WHERE b.author_id = $1
		GROUP BY b.id, b.title, b.published_on
		ORDER BY units DESC, b.title ASC`
	rows, err := r.db.Query(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AuthorBook
	for rows.Next() {
		var b AuthorBook
		if err := rows.Scan(&b.BookID, &b.Title, &b.PublishedOn, &b.UnitsSold); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (r *repository) UnsoldByAuthor(ctx context.Context, name string) ([]UnsoldBook, error) {
	authorID, err := r.lookupAuthor(ctx, name)
	if err != nil {
		return nil, err
	}
	query := `SELECT b.id, b.title, b.price, b.published_on
		FROM books b
		WHERE b.author_id = $1
		AND NOT EXISTS (SELECT 1 FROM order_items oi WHERE oi.book_id = b.id)
		ORDER BY b.published_on DESC`
	rows, err := r.db.Query(ctx, query, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []UnsoldBook
	for rows.Next() {
		var b UnsoldBook
		if err := rows.Scan(&b.BookID, &b.Title, &b.Price, &b.PublishedOn); err != nil {
			return nil, err
		}
		result = append(result, b)
	}
	return result, rows.Err()
}

func (r *repository) AveragePrices(ctx context.Context) ([]AveragePrice, error) {
	query := `SELECT u.id, u.name, COALESCE(AVG(b.price), 0) AS avg_price
		FROM users u
		LEFT JOIN books b ON b.author_id = u.id
		WHERE u.role = 'author'
		GROUP BY u.id, u.name
		ORDER BY avg_price DESC, u.name ASC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AveragePrice
	for rows.Next() {
		var a AveragePrice
		if err := rows.Scan(&a.AuthorID, &a.Name, &a.Average); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *repository) lookupAuthor(ctx context.Context, name string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM users WHERE name = $1`, name).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, httpx.ErrNotFound
		}
		return 0, err
	}
	return id, nil
}
