package handlers

import (
	"os"

	"devquest-hub/services"

	"github.com/gofiber/fiber/v2"
)

// SetupAuthRoutes wires the OAuth flow and the session snapshot the UI
// polls.
func SetupAuthRoutes(app *fiber.App, gateway *services.AuthGateway, sessions *services.SessionManager) {
	app.Get("/auth/login", func(c *fiber.Ctx) error {
		provider := c.Query("provider", "github")
		redirectTo := c.Query("redirect_to")

		target, err := sessions.SignIn(provider, redirectTo)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "sign-in unavailable",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"url": target})
	})

	app.Get("/auth/callback", func(c *fiber.Ctx) error {
		code := c.Query("code")
		if code == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing authorization code",
			})
		}

		session, err := gateway.CompleteOAuth(c.Context(), code)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "token exchange failed",
				"cause": err.Error(),
			})
		}

		if frontend := os.Getenv("FRONTEND_URL"); frontend != "" {
			return c.Redirect(frontend+"/dashboard", fiber.StatusFound)
		}
		return c.JSON(fiber.Map{
			"access_token": session.AccessToken,
			"user":         session.User,
		})
	})

	app.Get("/auth/session", func(c *fiber.Ctx) error {
		identity, profile, loading := sessions.Snapshot()
		resp := fiber.Map{
			"user":    identity,
			"profile": profile,
			"loading": loading,
		}
		if profile != nil {
			resp["progress"] = services.ProgressForXP(profile.XP)
		}
		return c.JSON(resp)
	})

	app.Post("/auth/signout", func(c *fiber.Ctx) error {
		if err := sessions.SignOut(c.Context()); err != nil {
			// State is already cleared; report the revocation failure only.
			return c.JSON(fiber.Map{"message": "signed out locally", "cause": err.Error()})
		}
		return c.JSON(fiber.Map{"message": "signed out"})
	})
}
