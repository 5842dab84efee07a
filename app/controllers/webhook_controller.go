package controllers

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tourstack/booksync/app/models"
	"github.com/tourstack/booksync/internal/pkg/ingest"
	"github.com/tourstack/booksync/internal/pkg/metrics/counter"
)

// webhookEnvelope is the outer shape of every TourDesk delivery. Payload
// stays loosely typed; the normalizer owns shape resolution.
type webhookEnvelope struct {
	EventType string         `json:"event_type"`
	Payload   map[string]any `json:"payload"`
}

// WebhookController receives TourDesk booking lifecycle notifications.
type WebhookController struct {
	svc    *ingest.Service
	events *counter.EventCounter
	secret string
}

func NewWebhookController(svc *ingest.Service, events *counter.EventCounter, secret string) *WebhookController {
	return &WebhookController{svc: svc, events: events, secret: secret}
}

// HandleWebhook runs the pipeline: verify -> dispatch -> normalize ->
// reconcile -> audit. The raw body is captured before any JSON parsing
// because the signature covers the exact bytes the sender produced.
func (wc *WebhookController) HandleWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	signature := c.Get("X-Webhook-Signature")

	// A malformed body is treated as an empty payload; the normalizer's
	// defaulting rules absorb the absent fields.
	var envelope webhookEnvelope
	_ = json.Unmarshal(rawBody, &envelope)

	if !ingest.VerifySignature(rawBody, signature, wc.secret) {
		wc.svc.RecordAudit(envelope.EventType, "", rawBody, models.AuditStatusError)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}

	wc.events.AddEvent(envelope.EventType)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	outcome, err := wc.svc.ProcessEvent(ctx, envelope.EventType, envelope.Payload, rawBody)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "webhook processing failed",
			"error":   err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":     "success",
		"event_type": outcome.EventType,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}
