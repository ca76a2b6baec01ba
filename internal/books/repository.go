package books

import (
	"context"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookhaven/bookhaven/internal/platform/httpx"
)

// Repository defines persistence operations for the catalog.
type Repository interface {
	List(ctx context.Context, filters ListFilters) ([]Book, error)
	Get(ctx context.Context, id int64) (*Book, error)
	Create(ctx context.Context, book Book) (Book, error)
	MostSold(ctx context.Context) (*BestSeller, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const bookColumns = `b.id, b.author_id, u.name, b.title, b.description, b.published_on, b.price, b.status, b.cover_urls, b.created_at`

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books b JOIN users u ON u.id = b.author_id WHERE 1=1`
	args := []any{}
	argCount := 0

	if filters.Title != "" {
		argCount++
		query += ` AND b.title ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Title+"%")
	}
	if filters.Description != "" {
		argCount++
		query += ` AND b.description ILIKE $` + strconv.Itoa(argCount)
		args = append(args, "%"+filters.Description+"%")
	}
	if filters.AuthorName != "" {
		argCount++
		query += ` AND u.name = $` + strconv.Itoa(argCount)
		args = append(args, filters.AuthorName)
	}
	if filters.Status != "" {
		argCount++
		query += ` AND b.status = $` + strconv.Itoa(argCount)
		args = append(args, filters.Status)
	}
	if filters.MinPrice != nil {
		argCount++
		query += ` AND b.price >= $` + strconv.Itoa(argCount)
		args = append(args, *filters.MinPrice)
	}
	if filters.MaxPrice != nil {
		argCount++
		query += ` AND b.price <= $` + strconv.Itoa(argCount)
		args = append(args, *filters.MaxPrice)
	}
	if filters.PublishedAfter != nil {
		argCount++
		query += ` AND b.published_on >= $` + strconv.Itoa(argCount)
		args = append(args, *filters.PublishedAfter)
	}

	query += ` ORDER BY ` + sortOrder(filters.OrderBy, filters.Descending)

	limit := filters.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	argCount++
	query += ` LIMIT $` + strconv.Itoa(argCount)
	args = append(args, limit)
	if filters.Offset > 0 {
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, filters.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, book)
	}
	return result, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (*Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books b JOIN users u ON u.id = b.author_id WHERE b.id = $1`
	book, err := scanBook(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &book, nil
}

func (r *repository) Create(ctx context.Context, book Book) (Book, error) {
	query := `INSERT INTO books (author_id, title, description, published_on, price, status, cover_urls)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		book.AuthorID, book.Title, book.Description, book.PublishedOn, book.Price, book.Status, book.CoverURLs,
	).Scan(&book.ID, &book.CreatedAt)
	if err != nil {
		return Book{}, err
	}
	return book, nil
}

func (r *repository) MostSold(ctx context.Context) (*BestSeller, error) {
	query := `SELECT oi.book_id, b.title, SUM(oi.quantity) AS units
		FROM order_items oi
		JOIN books b ON b.id = oi.book_id
		GROUP BY oi.book_id, b.title
		ORDER BY units DESC
		LIMIT 1`
	var best BestSeller
	err := r.db.QueryRow(ctx, query).Scan(&best.BookID, &best.Title, &best.UnitsSold)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &best, nil
}

func scanBook(row pgx.Row) (Book, error) {
	var b Book
	err := row.Scan(&b.ID, &b.AuthorID, &b.AuthorName, &b.Title, &b.Description, &b.PublishedOn, &b.Price, &b.Status, &b.CoverURLs, &b.CreatedAt)
	return b, err
}

func sortOrder(orderBy string, descending bool) string {
	dir := "ASC"
	if descending {
		dir = "DESC"
	}
	switch orderBy {
	case "price":
		return "b.price " + dir
	case "published_on":
		return "b.published_on " + dir
	default:
		return "b.published_on " + dir
	}
}
