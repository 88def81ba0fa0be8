package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// ConfirmRateLimit caps confirmation attempts per payment session using Redis
// if available. The confirmation token is a short numeric code, so unbounded
// retries would make it guessable within the session TTL.
func ConfirmRateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 5
	}
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next() // no-op without Redis
		}
		var req struct {
			SessionID string `json:"sessionId"`
		}
		_ = c.BodyParser(&req)
		sessionID := strings.TrimSpace(req.SessionID)
		if sessionID == "" {
			sessionID = c.IP()
		}
		key := "rl:confirm:" + sessionID
		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err == nil && cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}
		if err != nil {
			return c.Next() // fail-open on cache errors
		}
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "too many confirmation attempts, try again later")
		}
		return c.Next()
	}
}
