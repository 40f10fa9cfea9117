package handlers

import (
	"errors"
	"log"

	"devquest-hub/middleware"
	"devquest-hub/models"
	"devquest-hub/services"
	"devquest-hub/store"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// userQuestView is a catalog row enriched with derived display state.
type userQuestView struct {
	models.UserQuest
	DisplayStatus services.DisplayStatus `json:"display_status"`
	Progress      int                    `json:"progress"`
}

func SetupQuestRoutes(app *fiber.App, st store.Store, auth *services.AuthGateway) {
	// Public catalog, with the Quest Explorer's substring search.
	app.Get("/quests", func(c *fiber.Ctx) error {
		quests, err := st.GetAllQuests(c.Context())
		if err != nil {
			log.Printf("❌ Error fetching quests: %v", err)
			return c.JSON([]models.Quest{})
		}
		return c.JSON(services.FilterQuests(quests, c.Query("q")))
	})

	secured := app.Group("/user", middleware.SessionAuthMiddleware(auth))

	secured.Get("/quests", func(c *fiber.Ctx) error {
		profile, err := currentProfile(c, st)
		if err != nil || profile == nil {
			if err != nil {
				log.Printf("⚠️ Quest list without profile: %v", err)
			}
			return c.JSON([]userQuestView{})
		}

		rows, err := st.GetUserQuests(c.Context(), profile.ID)
		if err != nil {
			if errors.Is(err, store.ErrInvalidProfileID) {
				log.Printf("❌ Malformed profile id reached quest lookup: %v", err)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"error": "invalid profile id",
				})
			}
			log.Printf("❌ Error fetching user quests: %v", err)
			return c.JSON([]userQuestView{})
		}

		// The dashboard shows at most 3 not-yet-completed quests in
		// backend order.
		if c.Query("view") == "dashboard" {
			rows = services.ActiveQuestPicks(rows, 3)
		}

		views := make([]userQuestView, len(rows))
		for i, row := range rows {
			status, progress := services.DisplayStatusFor(row.SubmissionStatus)
			views[i] = userQuestView{UserQuest: row, DisplayStatus: status, Progress: progress}
		}
		return c.JSON(views)
	})

	secured.Post("/quests/:id/submit", func(c *fiber.Ctx) error {
		questID := c.Params("id")
		if _, err := uuid.Parse(questID); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid quest id",
			})
		}

		type Req struct {
			Proof string `json:"proof" validate:"required,min=3,max=2000"`
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
				"error": "invalid proof",
				"cause": err.Error(),
			})
		}

		profile, err := currentProfile(c, st)
		if err != nil || profile == nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "no profile for authenticated identity",
			})
		}

		sub, err := st.SubmitQuestProof(c.Context(), profile.ID, questID, req.Proof)
		switch {
		case err == nil:
			return c.Status(fiber.StatusCreated).JSON(sub)
		case errors.Is(err, store.ErrAlreadySubmitted):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "quest already submitted",
			})
		case errors.Is(err, store.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "quest not found",
			})
		default:
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "failed to submit quest proof",
				"cause": err.Error(),
			})
		}
	})

	secured.Get("/submissions", func(c *fiber.Ctx) error {
		profile, err := currentProfile(c, st)
		if err != nil || profile == nil {
			return c.JSON([]models.QuestSubmission{})
		}
		subs, err := st.GetQuestSubmissions(c.Context(), profile.ID)
		if err != nil {
			log.Printf("❌ Error fetching submissions: %v", err)
			return c.JSON([]models.QuestSubmission{})
		}
		return c.JSON(subs)
	})

	secured.Get("/nfts", func(c *fiber.Ctx) error {
		profile, err := currentProfile(c, st)
		if err != nil || profile == nil {
			return c.JSON([]models.NFTMint{})
		}
		mints, err := st.GetUserNFTs(c.Context(), profile.ID)
		if err != nil {
			log.Printf("❌ Error fetching NFT badges: %v", err)
			return c.JSON([]models.NFTMint{})
		}
		return c.JSON(mints)
	})
}

// SetupReviewRoutes mounts the service-token-guarded review endpoint. Only
// wired when a SQL backend is configured.
func SetupReviewRoutes(app *fiber.App, rewards *services.RewardService) {
	admin := app.Group("/admin", middleware.AdminAuthMiddleware())

	admin.Post("/submissions/:id/review", func(c *fiber.Ctx) error {
		type Req struct {
			Approve *bool   `json:"approve" validate:"required"`
			Notes   *string `json:"notes" validate:"omitempty,max=1000"`
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
				"error": "invalid review payload",
				"cause": err.Error(),
			})
		}

		sub, err := rewards.Review(c.Params("id"), *req.Approve, req.Notes)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "submission not found",
				})
			}
			if errors.Is(err, services.ErrSubmissionNotPending) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error": "submission already reviewed",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "review failed",
				"cause": err.Error(),
			})
		}
		return c.JSON(sub)
	})
}
