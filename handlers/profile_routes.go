package handlers

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"devquest-hub/middleware"
	"devquest-hub/services"
	"devquest-hub/store"
	"devquest-hub/utils"

	"github.com/gofiber/fiber/v2"
)

func SetupProfileRoutes(app *fiber.App, st store.Store, auth *services.AuthGateway) {
	secured := app.Group("/user", middleware.SessionAuthMiddleware(auth))

	secured.Get("/profile", func(c *fiber.Ctx) error {
		profile, err := currentProfile(c, st)
		if err != nil {
			log.Printf("⚠️ Profile lookup failed: %v", err)
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "no profile for authenticated identity",
			})
		}
		return c.JSON(fiber.Map{
			"profile":  profile,
			"progress": services.ProgressForXP(profile.XP),
		})
	})

	secured.Patch("/wallet", func(c *fiber.Ctx) error {
		type Req struct {
			WalletAddress string `json:"wallet_address" validate:"required,min=10,max=128"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}
		if err := validate.Struct(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid wallet address",
				"cause": err.Error(),
			})
		}

		profile, err := currentProfile(c, st)
		if err != nil || profile == nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "no profile for authenticated identity",
			})
		}

		updated, err := st.UpdateUserProfile(c.Context(), profile.ID, store.ProfilePatch{
			WalletAddress: &req.WalletAddress,
		})
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "failed to link wallet",
				"cause": err.Error(),
			})
		}
		return c.JSON(updated)
	})

	secured.Post("/avatar", func(c *fiber.Ctx) error {
		if !utils.R2Enabled() {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": "avatar storage is not configured",
			})
		}

		fileHeader, err := c.FormFile("avatar")
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "missing avatar file",
			})
		}

		profile, err := currentProfile(c, st)
		if err != nil || profile == nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "no profile for authenticated identity",
			})
		}

		ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
		key := fmt.Sprintf("avatars/%s%s", profile.ID, ext)
		avatarURL, err := utils.UploadFileToR2(fileHeader, key)
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "avatar upload failed",
				"cause": err.Error(),
			})
		}

		updated, err := st.UpdateUserProfile(c.Context(), profile.ID, store.ProfilePatch{
			AvatarURL: &avatarURL,
		})
		if err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "failed to save avatar URL",
				"cause": err.Error(),
			})
		}
		return c.JSON(updated)
	})
}
