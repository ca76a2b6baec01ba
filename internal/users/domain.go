package users

import "time"

// User represents an account for self-service management.
type User struct {
	ID        int64
	Name      string
	Email     string
	Role      string
	IsActive  bool
	Balance   float64
	Bio       string
	PhotoURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MaxBalance bounds the stored account balance, matching the numeric(6,2)
// column.
const MaxBalance = 9999.99
