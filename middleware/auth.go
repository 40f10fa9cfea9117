package middleware

import (
	"log"
	"strings"

	"devquest-hub/services"

	"github.com/gofiber/fiber/v2"
)

// SessionAuthMiddleware resolves the caller's identity from the session
// token issued by the auth provider and attaches it to the request context.
func SessionAuthMiddleware(auth *services.AuthGateway) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Get("X-Session-Token")
		if token == "" {
			authHeader := c.Get("Authorization")
			token = strings.TrimPrefix(authHeader, "Bearer ")
			if token == authHeader {
				token = ""
			}
		}
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing session token",
			})
		}

		identity, err := auth.GetUser(c.Context(), token)
		if err != nil {
			log.Printf("🚫 [AUTH] session token rejected for %s: %v", c.Path(), err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid session token",
			})
		}

		c.Locals("identity", identity)
		return c.Next()
	}
}
