package middleware

import (
	"log"
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AdminAuthMiddleware guards the review endpoints with the shared service
// token. When no token is configured, review is disabled rather than open.
func AdminAuthMiddleware() fiber.Handler {
	expectedToken := os.Getenv("REVIEW_SERVICE_TOKEN")
	if expectedToken == "" {
		log.Println("⚠️  REVIEW_SERVICE_TOKEN not set — admin review endpoints disabled")
	}

	return func(c *fiber.Ctx) error {
		if expectedToken == "" {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "review endpoints are disabled",
			})
		}

		authHeader := c.Get("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			token = authHeader
		}
		if token != expectedToken {
			log.Printf("❌ [ADMIN_AUTH] invalid service token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid service token",
			})
		}
		return c.Next()
	}
}
