package handlers

import (
	"log"
	"strconv"

	"devquest-hub/models"
	"devquest-hub/services"
	"devquest-hub/store"

	"github.com/gofiber/fiber/v2"
)

// rankedRow is a leaderboard row with its presentation rank and derived
// level.
type rankedRow struct {
	Rank int `json:"rank"`
	models.LeaderboardRow
	Level int `json:"level"`
}

func SetupLeaderboardRoutes(app *fiber.App, st store.Store) {
	app.Get("/leaderboard", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "10"))
		metric := services.LeaderboardMetric(c.Query("metric", string(services.MetricXP)))

		rows, err := st.GetLeaderboard(c.Context(), limit)
		if err != nil {
			log.Printf("❌ Error fetching leaderboard: %v", err)
			rows = []models.LeaderboardRow{}
		}

		sorted := services.SortLeaderboard(rows, metric)
		ranked := make([]rankedRow, len(sorted))
		for i, row := range sorted {
			ranked[i] = rankedRow{
				Rank:           i + 1,
				LeaderboardRow: row,
				Level:          services.Level(row.XP),
			}
		}
		return c.JSON(fiber.Map{
			"metric": metric,
			"rows":   ranked,
		})
	})
}
