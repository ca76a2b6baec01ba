package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "revoked:"

// RevocationList records token ids that must be rejected despite a valid
// signature. Entries carry a TTL equal to the token's remaining lifetime, so
// the list never grows past the set of still-live tokens.
type RevocationList struct {
	client *redis.Client
}

// NewRevocationList constructs a RevocationList backed by redis.
func NewRevocationList(client *redis.Client) *RevocationList {
	return &RevocationList{client: client}
}

// Revoke marks a token id as rejected for ttl. A non-positive ttl means the
// token already expired and nothing needs to be stored.
func (l *RevocationList) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := l.client.SetEx(ctx, revokedKeyPrefix+jti, "1", ttl).Err(); err != nil {
		return fmt.Errorf("auth: revoke %s: %w", jti, err)
	}
	return nil
}

// IsRevoked reports whether a token id is on the list.
func (l *RevocationList) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := l.client.Exists(ctx, revokedKeyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("auth: revocation lookup %s: %w", jti, err)
	}
	return n > 0, nil
}
