package ingest

import (
	"context"
	"log"
	"strings"

	"github.com/tourstack/booksync/app/models"
	"gorm.io/gorm"
)

// Service runs the webhook ingestion pipeline: dispatch by declared event
// type, normalize, reconcile into the store, audit the disposition.
type Service struct {
	repo Repository
}

// NewService creates an ingestion service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// NewServiceFromDB creates an ingestion service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// ProcessEvent applies one authenticated webhook event and always appends an
// audit entry before returning, success or not. Only a failed booking write
// surfaces as an error; everything else is absorbed so the sender sees a
// clean acknowledgment and does not retry events we intentionally ignore.
func (s *Service) ProcessEvent(ctx context.Context, eventType string, payload map[string]any, rawBody []byte) (*Outcome, error) {
	_ = ctx
	outcome := &Outcome{EventType: eventType}
	var procErr error

	switch et := strings.ToLower(strings.TrimSpace(eventType)); {
	case et == "booking.created" || et == "booking.updated":
		outcome.Handled = true
		cb, err := Normalize(eventType, payload, rawBody)
		if err != nil {
			// Missing identifier: acknowledged and audited, never persisted.
			log.Printf("webhook %s skipped: %v", eventType, err)
		} else {
			outcome.ProviderBookingID = cb.ProviderBookingID
			procErr = s.applyBooking(cb)
			outcome.Persisted = procErr == nil
		}

	case et == "booking.cancelled":
		outcome.Handled = true
		if id := ResolveBookingID(payload); id != "" {
			outcome.ProviderBookingID = id
			procErr = s.repo.CancelBooking(id)
			outcome.Persisted = procErr == nil
		} else {
			log.Printf("webhook %s skipped: %v", eventType, ErrMissingBookingID)
		}

	case strings.HasPrefix(et, "item."):
		// Item lifecycle events are accepted but deliberately inert.
		outcome.Handled = true

	default:
		log.Printf("unhandled webhook event type: %q", eventType)
	}

	status := models.AuditStatusSuccess
	if procErr != nil {
		status = models.AuditStatusError
	}
	s.RecordAudit(eventType, outcome.ProviderBookingID, rawBody, status)

	return outcome, procErr
}

// applyBooking upserts the customer (best-effort) and then the booking.
// Booking persistence outranks customer linkage: a customer write failure
// degrades to a nil customer reference instead of failing the event.
func (s *Service) applyBooking(cb *CanonicalBooking) error {
	var customerID *uint
	if cb.Contact.Email != "" {
		customer := &models.Customer{
			Email: cb.Contact.Email,
			Name:  cb.Contact.Name,
			Phone: cb.Contact.Phone,
		}
		if err := s.repo.UpsertCustomer(customer); err != nil {
			log.Printf("customer upsert failed for %s, continuing without linkage: %v", cb.Contact.Email, err)
		} else {
			customerID = &customer.ID
		}
	}

	booking := &models.Booking{
		ProviderBookingID: cb.ProviderBookingID,
		CustomerID:        customerID,
		CustomerEmail:     cb.Contact.Email,
		CustomerName:      cb.Contact.Name,
		TourName:          cb.TourName,
		TourDate:          cb.TourDate,
		PassengerCount:    cb.PassengerCount,
		Amount:            cb.Amount,
		Status:            cb.Status,
		Source:            cb.Source,
		SpecialRequests:   cb.SpecialRequests,
		RawPayload:        cb.RawPayload,
	}
	return s.repo.UpsertBooking(booking)
}

// RecordAudit appends one audit entry. Losing an entry is preferable to
// failing the webhook acknowledgment, so failures are logged and swallowed.
func (s *Service) RecordAudit(eventType, providerBookingID string, rawBody []byte, status string) {
	entry := &models.WebhookAuditEntry{
		EventType:  eventType,
		RawPayload: string(rawBody),
		Status:     status,
	}
	if providerBookingID != "" {
		entry.ProviderBookingID = &providerBookingID
	}
	if err := s.repo.CreateAuditEntry(entry); err != nil {
		log.Printf("audit entry write failed for %s: %v", eventType, err)
	}
}
