package handlers

import (
	"devquest-hub/models"
	"devquest-hub/services"
	"devquest-hub/store"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// currentProfile resolves the authenticated caller's profile, creating it on
// first sign-in. Requires SessionAuthMiddleware upstream.
func currentProfile(c *fiber.Ctx, st store.Store) (*models.User, error) {
	identity, ok := c.Locals("identity").(*models.Identity)
	if !ok || identity == nil {
		return nil, fiber.ErrUnauthorized
	}
	return services.ResolveProfile(c.Context(), st, *identity)
}
