package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/bookhaven/bookhaven/internal/auth"
	"github.com/bookhaven/bookhaven/internal/platform/httpx"
)

// Revoker places a validated token on the revocation list. A password change
// revokes the presenting token so the old credential cannot keep a session
// alive.
type Revoker interface {
	RevokeClaims(ctx context.Context, claims *auth.Claims) error
}

// Service wraps user self-service business rules.
type Service struct {
	repo    Repository
	revoker Revoker
}

// NewService constructs a new Service.
func NewService(repo Repository, revoker Revoker) *Service {
	return &Service{repo: repo, revoker: revoker}
}

// Get loads the account for the token's subject, enforcing that deactivated
// accounts only reach the reactivation flow.
func (s *Service) Get(ctx context.Context, claims *auth.Claims) (*User, error) {
	return s.current(ctx, claims, true)
}

func (s *Service) current(ctx context.Context, claims *auth.Claims, mustBeActive bool) (*User, error) {
	id, err := claims.UserID()
	if err != nil {
		return nil, httpx.ErrUnauthorized
	}
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if mustBeActive && !user.IsActive {
		return nil, fmt.Errorf("account deactivated: %w", httpx.ErrForbidden)
	}
	return user, nil
}

// UpdatePassword rehashes and stores the new password, then revokes the
// presenting token so the caller must sign in again.
func (s *Service) UpdatePassword(ctx context.Context, claims *auth.Claims, newPassword string) error {
	user, err := s.current(ctx, claims, true)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("users: hash password: %w", err)
	}
	if err := s.repo.UpdatePasswordHash(ctx, user.ID, string(hash)); err != nil {
		return err
	}
	return s.revoker.RevokeClaims(ctx, claims)
}

// Deactivate soft-deletes the account. Tokens stay valid; guarded endpoints
// other than reactivation reject inactive accounts.
func (s *Service) Deactivate(ctx context.Context, claims *auth.Claims) error {
	user, err := s.current(ctx, claims, true)
	if err != nil {
		return err
	}
	return s.repo.SetActive(ctx, user.ID, false)
}

// Reactivate restores a deactivated account. This is the one self-service
// operation open to inactive users.
func (s *Service) Reactivate(ctx context.Context, claims *auth.Claims) error {
	user, err := s.current(ctx, claims, false)
	if err != nil {
		return err
	}
	return s.repo.SetActive(ctx, user.ID, true)
}

// UpdateEmail changes the unique email address.
func (s *Service) UpdateEmail(ctx context.Context, claims *auth.Claims, email string) error {
	user, err := s.current(ctx, claims, true)
	if err != nil {
		return err
	}
	return s.repo.UpdateEmail(ctx, user.ID, strings.ToLower(email))
}

// UpdateName changes the unique display name.
func (s *Service) UpdateName(ctx context.Context, claims *auth.Claims, name string) error {
	user, err := s.current(ctx, claims, true)
	if err != nil {
		return err
	}
	return s.repo.UpdateName(ctx, user.ID, name)
}

// UpdatePhoto records the profile photo location.
func (s *Service) UpdatePhoto(ctx context.Context, claims *auth.Claims, url string) error {
	user, err := s.current(ctx, claims, true)
	if err != nil {
		return err
	}
	return s.repo.UpdatePhotoURL(ctx, user.ID, url)
}

// UpdateBalance replaces the account balance.
func (s *Service) UpdateBalance(ctx context.Context, claims *auth.Claims, balance float64) (*User, error) {
	user, err := s.current(ctx, claims, true)
	if err != nil {
		return nil, err
	}
	if balance < 0 || balance > MaxBalance {
		return nil, fmt.Errorf("balance out of range: %w", httpx.ErrValidation)
	}
	if err := s.repo.UpdateBalance(ctx, user.ID, balance); err != nil {
		return nil, err
	}
	user.Balance = balance
	return user, nil
}

// Remove deletes the account and revokes the presenting token.
func (s *Service) Remove(ctx context.Context, claims *auth.Claims) error {
	user, err := s.current(ctx, claims, true)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, user.ID); err != nil {
		return err
	}
	return s.revoker.RevokeClaims(ctx, claims)
}
