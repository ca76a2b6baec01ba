package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role is the coarse account classification stored with each user.
type Role string

const (
	RoleRegular Role = "regular"
	RoleAuthor  Role = "author"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleRegular, RoleAuthor, RoleAdmin:
		return true
	}
	return false
}

// Scope names understood by the authorizer.
const (
	ScopeUserRead    = "user:read"
	ScopeAuthorWrite = "author:write"
	ScopeAdminWrite  = "admin:write"
)

// ScopesForRole derives the scope set for a role. The mapping is
// deterministic: tokens never carry scopes the current role does not grant.
func ScopesForRole(role Role) []string {
	switch role {
	case RoleAdmin:
		return []string{ScopeUserRead, ScopeAuthorWrite, ScopeAdminWrite}
	case RoleAuthor:
		return []string{ScopeUserRead, ScopeAuthorWrite}
	default:
		return []string{ScopeUserRead}
	}
}

// User represents an account as the auth module sees it.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	Balance      float64
	CreatedAt    time.Time
}

// Claims is the JWT claim set for both access and refresh tokens.
type Claims struct {
	Scopes []string `json:"scopes,omitempty"`
	Role   string   `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the subject as the numeric user id.
func (c *Claims) UserID() (int64, error) {
	return parseSubject(c.Subject)
}

// TokenPair bundles the two credentials issued at login.
type TokenPair struct {
	AccessToken   string
	RefreshToken  string
	AccessExpiry  time.Time
	RefreshExpiry time.Time
}
