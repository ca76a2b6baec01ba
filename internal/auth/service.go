package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/bookhaven/bookhaven/internal/platform/httpx"
)

// ErrInvalidCredentials is returned when login fails. It deliberately does
// not say which of email or password was wrong.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials: %w", httpx.ErrUnauthorized)

// WelcomeDispatcher enqueues the post-registration welcome email.
type WelcomeDispatcher interface {
	EnqueueWelcomeEmail(ctx context.Context, to, name string) error
}

// Service wraps authentication business rules.
type Service struct {
	repo        Repository
	issuer      *TokenIssuer
	revocations *RevocationList
	welcome     WelcomeDispatcher
	logger      *slog.Logger
}

// NewService constructs a new Service. welcome may be nil when no job queue
// is wired (tests).
func NewService(repo Repository, issuer *TokenIssuer, revocations *RevocationList, welcome WelcomeDispatcher, logger *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		issuer:      issuer,
		revocations: revocations,
		welcome:     welcome,
		logger:      logger,
	}
}

// Register creates a new account and enqueues a welcome email. The email is
// fire-and-forget: a queue failure does not fail the registration.
func (s *Service) Register(ctx context.Context, name, email, password string, role Role) (*User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("unknown role %q: %w", role, httpx.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	user, err := s.repo.Create(ctx, &User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}
	if s.welcome != nil {
		if err := s.welcome.EnqueueWelcomeEmail(ctx, user.Email, user.Name); err != nil && s.logger != nil {
			s.logger.Warn("enqueue welcome email", slog.String("email", user.Email), slog.Any("error", err))
		}
	}
	return user, nil
}

// Login validates credentials and issues a token pair. Inactive accounts can
// still log in; everything except reactivation is gated elsewhere.
func (s *Service) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issuer.IssuePair(user)
}

// Logout revokes the presented token for the remainder of its lifetime. A
// failed revocation write is surfaced to the caller; the token stays valid
// until natural expiry in that case.
func (s *Service) Logout(ctx context.Context, rawToken string) error {
	claims, err := s.issuer.ParseAccess(rawToken)
	if err != nil {
		// A refresh token can be handed in on logout as well.
		claims, err = s.issuer.ParseRefresh(rawToken)
	}
	if err != nil {
		return fmt.Errorf("logout: %w", httpx.ErrUnauthorized)
	}
	return s.RevokeClaims(ctx, claims)
}

// RevokeClaims places a validated claim set on the revocation list for its
// remaining lifetime.
func (s *Service) RevokeClaims(ctx context.Context, claims *Claims) error {
	if claims.ExpiresAt == nil {
		return ErrInvalidToken
	}
	remaining := time.Until(claims.ExpiresAt.Time)
	return s.revocations.Revoke(ctx, claims.ID, remaining)
}

// Refresh exchanges a valid refresh token for a new token pair. The old
// refresh token is revoked and scopes are derived from the user's current
// role, never from the presented token.
func (s *Service) Refresh(ctx context.Context, rawRefresh string) (*TokenPair, error) {
	claims, err := s.issuer.ParseRefresh(rawRefresh)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", httpx.ErrUnauthorized)
	}
	revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, fmt.Errorf("refresh token revoked: %w", httpx.ErrUnauthorized)
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", httpx.ErrUnauthorized)
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("refresh: %w", httpx.ErrUnauthorized)
	}
	pair, err := s.issuer.IssuePair(user)
	if err != nil {
		return nil, err
	}
	if err := s.RevokeClaims(ctx, claims); err != nil {
		return nil, err
	}
	return pair, nil
}

// CurrentUser loads the account behind a validated claim set.
func (s *Service) CurrentUser(ctx context.Context, claims *Claims) (*User, error) {
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("current user: %w", httpx.ErrUnauthorized)
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("current user: %w", httpx.ErrUnauthorized)
	}
	return user, nil
}
