package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"devquest-hub/handlers"
	"devquest-hub/services"
	"devquest-hub/store"
	"devquest-hub/utils"
	"devquest-hub/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 25 * 1024 * 1024, // avatars only, keep it small
	})

	// Load allowed origins from environment variable
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		log.Println("⚠️  ALLOWED_ORIGINS environment variable not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Session-Token",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	authBaseURL := os.Getenv("AUTH_BASE_URL")
	if authBaseURL == "" {
		log.Println("⚠️  AUTH_BASE_URL not set — sign-in will be unavailable")
	}
	gateway := services.NewAuthGateway(authBaseURL, os.Getenv("AUTH_API_KEY"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The store is the null object when no backend is configured, so the
	// app still serves an empty, unauthenticated view in previews.
	var backend store.Store
	var rewardService *services.RewardService

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Println("⚠️  DATABASE_URL not set — running with the null backend store")
		backend = store.NewNullStore()
	} else {
		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
		if err != nil {
			log.Fatal("failed to connect to database:", err)
		}

		if err := store.Migrate(db); err != nil {
			log.Fatal("failed to migrate database:", err)
		}

		backend = store.NewSQLStore(db)
		rewardService = services.NewRewardService(db)
		rewardService.StartStreakScheduler()

		go workers.PollRewards(ctx, rewardService, 15*time.Second)
	}

	sessions := services.NewSessionManager(gateway, backend)
	sessions.Start(ctx)
	defer sessions.Close()

	handlers.SetupAuthRoutes(app, gateway, sessions)
	handlers.SetupQuestRoutes(app, backend, gateway)
	handlers.SetupProfileRoutes(app, backend, gateway)
	handlers.SetupLeaderboardRoutes(app, backend)
	handlers.SetupGiftRoutes(app, backend, gateway)
	if rewardService != nil {
		handlers.SetupReviewRoutes(app, rewardService)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	if rewardService != nil {
		log.Println("✅ Reward fulfillment polling running (every 15s)")
		log.Println("✅ Streak sweep scheduled (hourly)")
	}
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
