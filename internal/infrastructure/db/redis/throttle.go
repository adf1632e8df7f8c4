package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SignupThrottle bounds confirmation-code requests per email with a
// fixed-window counter. Key format: signup:<email>
//
// The signup path has no retry layer, so this is the only protection the
// mail transport gets against a hot loop on one address.
type SignupThrottle struct {
	client *redis.Client
	limit  int64
	window time.Duration
}

// NewSignupThrottle creates a throttle allowing limit requests per window.
func NewSignupThrottle(client *redis.Client, limit int, window time.Duration) *SignupThrottle {
	if limit <= 0 {
		limit = 5
	}
	if window <= 0 {
		window = time.Hour
	}
	return &SignupThrottle{client: client, limit: int64(limit), window: window}
}

// Allow increments the window counter for email and reports whether the
// request is within the limit. The window starts on the first request.
func (t *SignupThrottle) Allow(ctx context.Context, email string) (bool, error) {
	key := t.key(email)

	n, err := t.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("signup throttle: %w", err)
	}
	if n == 1 {
		if err := t.client.Expire(ctx, key, t.window).Err(); err != nil {
			return false, fmt.Errorf("signup throttle: set expiry: %w", err)
		}
	}
	return n <= t.limit, nil
}

func (t *SignupThrottle) key(email string) string {
	return fmt.Sprintf("signup:%s", email)
}
