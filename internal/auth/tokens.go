package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken covers malformed, mis-signed and expired tokens.
var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer creates and verifies signed access and refresh tokens.
// Access and refresh tokens are signed with independent secrets so one
// leaking does not compromise the other.
type TokenIssuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenIssuer constructs a TokenIssuer.
func NewTokenIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}
}

// IssuePair signs an access/refresh token pair for the user. Scopes are
// derived from the user's current role at signing time; each token gets its
// own random jti so it can be revoked independently.
func (i *TokenIssuer) IssuePair(user *User) (*TokenPair, error) {
	now := time.Now()
	accessExpiry := now.Add(i.accessTTL)
	refreshExpiry := now.Add(i.refreshTTL)

	access, err := i.sign(user, accessExpiry, now, i.accessSecret)
	if err != nil {
		return nil, fmt.Errorf("auth: sign access token: %w", err)
	}
	refresh, err := i.sign(user, refreshExpiry, now, i.refreshSecret)
	if err != nil {
		return nil, fmt.Errorf("auth: sign refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:   access,
		RefreshToken:  refresh,
		AccessExpiry:  accessExpiry,
		RefreshExpiry: refreshExpiry,
	}, nil
}

func (i *TokenIssuer) sign(user *User, expiry, now time.Time, secret []byte) (string, error) {
	claims := Claims{
		Scopes: ScopesForRole(user.Role),
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
			ID:        uuid.NewString(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseAccess verifies an access token's signature and expiry.
func (i *TokenIssuer) ParseAccess(raw string) (*Claims, error) {
	return parse(raw, i.accessSecret)
}

// ParseRefresh verifies a refresh token's signature and expiry.
func (i *TokenIssuer) ParseRefresh(raw string) (*Claims, error) {
	return parse(raw, i.refreshSecret)
}

func parse(raw string, secret []byte) (*Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return secret, nil
	}, jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}

func parseSubject(sub string) (int64, error) {
	id, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return id, nil
}
