package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bookhaven/bookhaven/internal/platform/httpx"
)

// Repository defines persistence operations for user self-service.
type Repository interface {
	Get(ctx context.Context, id int64) (*User, error)
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	SetActive(ctx context.Context, id int64, active bool) error
	UpdateEmail(ctx context.Context, id int64, email string) error
	UpdateName(ctx context.Context, id int64, name string) error
	UpdatePhotoURL(ctx context.Context, id int64, url string) error
	UpdateBalance(ctx context.Context, id int64, balance float64) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) Get(ctx context.Context, id int64) (*User, error) {
	query := `SELECT id, name, email, role, is_active, balance, bio, COALESCE(photo_url, ''), created_at, updated_at
		FROM users WHERE id = $1`
	var u User
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&u.ID, &u.Name, &u.Email, &u.Role, &u.IsActive, &u.Balance, &u.Bio, &u.PhotoURL, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, httpx.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *repository) UpdatePasswordHash(ctx context.Context, id int64, hash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`, hash, id)
}

func (r *repository) SetActive(ctx context.Context, id int64, active bool) error {
	return r.exec(ctx, `UPDATE users SET is_active = $1, updated_at = now() WHERE id = $2`, active, id)
}

func (r *repository) UpdateEmail(ctx context.Context, id int64, email string) error {
	return r.exec(ctx, `UPDATE users SET email = $1, updated_at = now() WHERE id = $2`, email, id)
}

func (r *repository) UpdateName(ctx context.Context, id int64, name string) error {
	return r.exec(ctx, `UPDATE users SET name = $1, updated_at = now() WHERE id = $2`, name, id)
}

func (r *repository) UpdatePhotoURL(ctx context.Context, id int64, url string) error {
	return r.exec(ctx, `UPDATE users SET photo_url = $1, updated_at = now() WHERE id = $2`, url, id)
}

func (r *repository) UpdateBalance(ctx context.Context, id int64, balance float64) error {
	return r.exec(ctx, `UPDATE users SET balance = $1, updated_at = now() WHERE id = $2`, balance, id)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) exec(ctx context.Context, query string, args ...any) error {
	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("users: value already taken: %w", httpx.ErrConflict)
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
