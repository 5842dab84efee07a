package main

import (
	"fmt"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/tourstack/booksync/internal/pkg/cache"
	"github.com/tourstack/booksync/internal/pkg/database"
	"github.com/tourstack/booksync/internal/pkg/env"
	"github.com/tourstack/booksync/internal/pkg/ingest"
	"github.com/tourstack/booksync/internal/pkg/metrics/counter"
	"github.com/tourstack/booksync/internal/pkg/reports"
	"github.com/tourstack/booksync/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()

	db, err := database.Connect()
	if err != nil {
		log.Fatalf("database setup failed: %v", err)
	}
	cacheClient := cache.Setup()

	webhookSecret := env.GetEnv("WEBHOOK_SECRET", "")
	if webhookSecret == "" {
		log.Print("WARNING: WEBHOOK_SECRET is not set, webhook signature verification is disabled")
	}

	events := counter.New(cacheClient)
	ingestService := ingest.NewServiceFromDB(db)
	reportService := reports.NewService(db, cacheClient)

	app := fiber.New(fiber.Config{
		AppName: "booksync",
	})
	app.Use(recover.New(), logger.New(), cors.New())

	router.InstallRouter(app, router.Deps{
		DB:            db,
		Cache:         cacheClient,
		Ingest:        ingestService,
		Reports:       reportService,
		Events:        events,
		WebhookSecret: webhookSecret,
	})

	return app
}
