package redisclient

import (
	"context"
	"time"
)

// LoginThrottle is a fixed-window counter shared across instances, keyed by
// role+email so one locked-out address cannot burn another kind's attempts.
// A nil throttle allows everything, which is how the server runs when no
// Redis address is configured.
type LoginThrottle struct {
	client *Client
	limit  int64
	window time.Duration
}

func NewLoginThrottle(client *Client, limit int, window time.Duration) *LoginThrottle {
	if client == nil {
		return nil
	}

	return &LoginThrottle{
		client: client,
		limit:  int64(limit),
		window: window,
	}
}

// Allow counts one attempt and reports whether it is within the window limit.
// Redis being down fails open: a broken throttle must not lock out logins.
func (t *LoginThrottle) Allow(ctx context.Context, key string) bool {
	if t == nil {
		return true
	}

	rdb := t.client.Raw()

	count, err := rdb.Incr(ctx, "login:throttle:"+key).Result()

	if err != nil {
		return true
	}

	if count == 1 {
		// first attempt in this window owns the expiry
		_ = rdb.Expire(ctx, "login:throttle:"+key, t.window).Err()
	}

	return count <= t.limit
}
