package middleware

import (
	"context"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MediumMasala/branch-redirect-service/internal/logger"
	"github.com/MediumMasala/branch-redirect-service/pkg/hasher"
	"github.com/MediumMasala/branch-redirect-service/pkg/response"
)

// RateLimitStore counts hits per key inside a fixed window and reports how
// long until the window resets.
type RateLimitStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)
}

// RateLimit enforces a fixed-window request limit per client. Clients are
// keyed by their salted IP hash, so the store never sees raw addresses.
// Store errors fail open: an unavailable Redis must not take the redirect
// path down with it.
func RateLimit(store RateLimitStore, limit int64, window time.Duration, ipSalt string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := hasher.IPHash(ipSalt, c.ClientIP())

		count, ttl, err := store.Hit(c.Request.Context(), key, window)
		if err != nil {
			logger.FromContext(c.Request.Context()).Warn("rate limit store unavailable",
				slog.String("error", err.Error()),
			)
			c.Next()
			return
		}

		remaining := limit - count
		if remaining < 0 {
			remaining = 0
		}

		c.Header("X-RateLimit-Limit", strconv.FormatInt(limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(ttl).Unix(), 10))

		if count > limit {
			retryAfter := int(math.Ceil(ttl.Seconds()))
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			response.TooManyRequests(c, "Too many requests")
			c.Abort()
			return
		}

		c.Next()
	}
}
