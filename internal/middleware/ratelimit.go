package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/example/kolzo/internal/cache"
)

// LoginRateLimit throttles credential endpoints with a fixed window counter
// keyed per client IP in Redis. The window survives process restarts and is
// shared across instances. When Redis is down the limiter fails open.
func LoginRateLimit(store *cache.Cache, limit int, window time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := "auth:attempts:" + c.IP()

		if count := store.CountWindow(c.Context(), key, window); count > int64(limit) {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many attempts, try again later")
		}

		return c.Next()
	}
}
