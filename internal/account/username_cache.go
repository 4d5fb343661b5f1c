package account

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// UsernameCache answers "is this username claimed?" without a database
// round-trip. A verified account never loses its username, so a claim
// entry is valid forever; the cache is advisory only, signup and
// verification always consult the database before mutating.
type UsernameCache struct {
	client *redis.Client
}

func NewUsernameCache(client *redis.Client) *UsernameCache {
	return &UsernameCache{client: client}
}

func claimKey(username string) string {
	return fmt.Sprintf("username_claim:%s", username)
}

// IsClaimed reports whether a verified claim for username is cached.
// A false result means "unknown", not "available".
func (c *UsernameCache) IsClaimed(ctx context.Context, username string) (bool, error) {
	n, err := c.client.Exists(ctx, claimKey(username)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check username claim: %w", err)
	}
	return n > 0, nil
}

// MarkClaimed records a verified username claim. No TTL: verification
// is never revoked.
func (c *UsernameCache) MarkClaimed(ctx context.Context, username string) error {
	if err := c.client.Set(ctx, claimKey(username), "1", 0).Err(); err != nil {
		return fmt.Errorf("failed to mark username claimed: %w", err)
	}
	return nil
}
