package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// RateLimit applies the per-actor sliding window to lifecycle-mutating
// routes. Keyed by the authenticated user, falling back to the client IP
// for anything reached without auth.
func (m *Middleware) RateLimit() fiber.Handler {
	log := m.log.Function("RateLimit")

	return func(c *fiber.Ctx) error {
		actorKey := c.IP()
		if user := GetUser(c); user != nil {
			actorKey = user.ID.String()
		}

		if !m.rateLimit.Allow(actorKey) {
			log.Info("rate limit exceeded", "actor", actorKey)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		}

		return c.Next()
	}
}
