package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"learning-rewards-system/handlers"
	"learning-rewards-system/middleware"
	"learning-rewards-system/models"
	"learning-rewards-system/services"
	"learning-rewards-system/utils"
	"learning-rewards-system/workers"

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
		BodyLimit: 20 * 1024 * 1024, // 20MB — captured photos
	})

	// 🔐 GLOBAL: Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

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
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Service-Token, X-User-ID, X-User-Roles",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Subject{},
		&models.Lesson{},
		&models.LearningProgress{},
		&models.QuizResponse{},
		&models.Reward{},
		&models.Achievement{},
		&models.Ranking{},
		&models.ProfileMirror{},
		&models.UserPhoto{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	if err := services.SeedContent(db); err != nil {
		log.Fatal("failed to seed lesson content:", err)
	}

	if err := utils.EnsureUploadDir(); err != nil {
		log.Fatal("failed to ensure upload dir:", err)
	}

	ledger := services.NewRewardLedger(db)
	evaluator := services.NewAchievementEvaluator(db, ledger)
	aggregator := services.NewRankingAggregator(db)
	profileService := services.NewProfileService(db)
	learningService := services.NewLearningService(db, ledger, evaluator)

	identityServiceURL := os.Getenv("IDENTITY_SERVICE_URL")
	if identityServiceURL == "" {
		log.Fatal("IDENTITY_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("LEARNING_SERVICE_TOKEN")
	if serviceToken == "" {
		log.Fatal("LEARNING_SERVICE_TOKEN environment variable not set")
	}

	feedbackURL := os.Getenv("FEEDBACK_API_URL")
	if feedbackURL == "" {
		log.Fatal("FEEDBACK_API_URL environment variable not set")
	}
	feedbackClient := services.NewFeedbackServiceClient(feedbackURL, os.Getenv("FEEDBACK_API_TOKEN"))

	var wordFilter *utils.WordFilter
	if path := os.Getenv("BLOCKED_WORDS_FILE"); path != "" {
		wordFilter, err = utils.NewWordFilterFromFile(path)
		if err != nil {
			log.Fatal("failed to load blocked words file:", err)
		}
	} else {
		wordFilter = utils.NewWordFilter(strings.Split(os.Getenv("BLOCKED_WORDS"), ","))
	}
	defer wordFilter.Close()

	syncWorker := workers.NewProfileSyncWorker(db, identityServiceURL, "/api/v1/public/profiles", serviceToken)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Println("Starting Profile Sync Worker...")
		syncWorker.Start(ctx)
	}()

	aggregator.StartRankingScheduler()

	handlers.SetupRewardRoutes(app, ledger, evaluator, aggregator, profileService)
	handlers.SetupLearningRoutes(app, learningService, feedbackClient, wordFilter)
	handlers.SetupMediaRoutes(app, db, wordFilter)

	app.Static("/uploads", "./uploads")

	go func() {
		if err := app.Listen(":5300"); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Println("✅ Server running on http://localhost:5300")
	log.Println("✅ Profile Sync Worker running")
	log.Println("✅ Ranking scheduler running")
	log.Println("✅ GatewayAuthMiddleware enforced globally — all requests must come from Gateway")
	log.Printf("✅ CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	log.Println("Shutting down server...")
}
