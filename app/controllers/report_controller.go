package controllers

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tourstack/booksync/internal/pkg/cache"
	"github.com/tourstack/booksync/internal/pkg/database"
	"github.com/tourstack/booksync/internal/pkg/metrics/counter"
	"github.com/tourstack/booksync/internal/pkg/reports"
	"gorm.io/gorm"
)

// ReportController serves the read-only aggregate endpoints.
type ReportController struct {
	db      *gorm.DB
	cache   *cache.Cache
	reports *reports.Service
	events  *counter.EventCounter
}

func NewReportController(db *gorm.DB, c *cache.Cache, svc *reports.Service, events *counter.EventCounter) *ReportController {
	return &ReportController{db: db, cache: c, reports: svc, events: events}
}

// HandleHealth probes store connectivity. Cache state is reported but a
// cache outage alone never fails the probe.
func (rc *ReportController) HandleHealth(c *fiber.Ctx) error {
	if err := database.Ping(rc.db); err != nil {
		log.Printf("health check database ping failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status":   "error",
			"database": "down",
		})
	}

	cacheState := "up"
	if rc.cache == nil {
		cacheState = "disabled"
	} else if err := rc.cache.Ping(c.Context()); err != nil {
		cacheState = "down"
	}

	return c.JSON(fiber.Map{
		"status":   "ok",
		"database": "up",
		"cache":    cacheState,
	})
}

// HandleStats returns aggregate counters plus per-event-type receive counts.
func (rc *ReportController) HandleStats(c *fiber.Ctx) error {
	stats, err := rc.reports.Stats()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": "error", "message": "stats query failed",
		})
	}

	return c.JSON(fiber.Map{
		"stats":           stats,
		"events_received": rc.events.Snapshot(),
	})
}

// HandleAnalytics returns stats plus grouped breakdowns.
func (rc *ReportController) HandleAnalytics(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	analytics, err := rc.reports.Analytics(ctx)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": "error", "message": "analytics query failed",
		})
	}
	return c.JSON(analytics)
}
