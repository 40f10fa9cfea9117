package handlers

import (
	"errors"
	"log"

	"devquest-hub/middleware"
	"devquest-hub/models"
	"devquest-hub/services"
	"devquest-hub/store"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

func SetupGiftRoutes(app *fiber.App, st store.Store, auth *services.AuthGateway) {
	secured := app.Group("/gifts", middleware.SessionAuthMiddleware(auth))

	secured.Post("/", func(c *fiber.Ctx) error {
		type Req struct {
			ReceiverID string  `json:"receiver_id" validate:"required,uuid"`
			GiftType   string  `json:"gift_type" validate:"required,oneof=ton jetton nft"`
			Amount     string  `json:"amount" validate:"omitempty"`
			NFTSlug    *string `json:"nft_slug" validate:"omitempty,max=128"`
			Message    *string `json:"message" validate:"omitempty,max=500"`
			TxHash     *string `json:"tx_hash" validate:"omitempty,max=128"`
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
				"error": "invalid gift payload",
				"cause": err.Error(),
			})
		}

		profile, err := currentProfile(c, st)
		if err != nil || profile == nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "no profile for authenticated identity",
			})
		}
		if req.ReceiverID == profile.ID {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "cannot gift yourself",
			})
		}

		gift := models.Gift{
			SenderID:   profile.ID,
			ReceiverID: req.ReceiverID,
			GiftType:   models.GiftType(req.GiftType),
			NFTSlug:    req.NFTSlug,
			Message:    req.Message,
			TxHash:     req.TxHash,
		}

		if gift.GiftType == models.GiftTypeNFT {
			if req.NFTSlug == nil || *req.NFTSlug == "" {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "nft_slug is required for nft gifts",
				})
			}
		} else {
			amount, parseErr := decimal.NewFromString(req.Amount)
			if parseErr != nil || !amount.IsPositive() {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "a positive amount is required for token gifts",
				})
			}
			gift.Amount = &amount
		}

		sent, err := st.SendGift(c.Context(), &gift)
		if err != nil {
			if errors.Is(err, store.ErrInvalidProfileID) {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "invalid receiver id",
				})
			}
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "failed to send gift",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(sent)
	})

	secured.Get("/", func(c *fiber.Ctx) error {
		profile, err := currentProfile(c, st)
		if err != nil || profile == nil {
			return c.JSON([]models.Gift{})
		}
		gifts, err := st.GetUserGifts(c.Context(), profile.ID)
		if err != nil {
			log.Printf("❌ Error fetching gifts: %v", err)
			return c.JSON([]models.Gift{})
		}
		return c.JSON(gifts)
	})
}
