package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/tourstack/booksync/app/controllers"
	"github.com/tourstack/booksync/internal/pkg/cache"
	"github.com/tourstack/booksync/internal/pkg/ingest"
	"github.com/tourstack/booksync/internal/pkg/metrics/counter"
	"github.com/tourstack/booksync/internal/pkg/reports"
	"gorm.io/gorm"
)

// Deps carries the explicitly constructed collaborators the routes need.
type Deps struct {
	DB            *gorm.DB
	Cache         *cache.Cache
	Ingest        *ingest.Service
	Reports       *reports.Service
	Events        *counter.EventCounter
	WebhookSecret string
}

// InstallRouter registers the webhook endpoint and the report endpoints.
func InstallRouter(app *fiber.App, deps Deps) {
	webhookController := controllers.NewWebhookController(deps.Ingest, deps.Events, deps.WebhookSecret)
	reportController := controllers.NewReportController(deps.DB, deps.Cache, deps.Reports, deps.Events)

	app.Post("/webhook", webhookController.HandleWebhook)

	app.Get("/health", reportController.HandleHealth)

	reportsGroup := app.Group("/", limiter.New())
	reportsGroup.Get("/stats", reportController.HandleStats)
	reportsGroup.Get("/analytics", reportController.HandleAnalytics)
}
