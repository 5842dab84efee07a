package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/tourstack/booksync/app/models"
)

// fakeRepository emulates the unique-constraint upsert semantics of the GORM
// repository in memory, with per-operation error injection.
type fakeRepository struct {
	customers map[string]*models.Customer
	bookings  map[string]*models.Booking
	audit     []models.WebhookAuditEntry

	nextCustomerID uint
	nextBookingID  uint

	customerErr error
	bookingErr  error
	cancelErr   error
	auditErr    error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{
		customers: map[string]*models.Customer{},
		bookings:  map[string]*models.Booking{},
	}
}

func (f *fakeRepository) UpsertCustomer(customer *models.Customer) error {
	if f.customerErr != nil {
		return f.customerErr
	}
	if existing, ok := f.customers[customer.Email]; ok {
		existing.Name = customer.Name
		existing.Phone = customer.Phone
		*customer = *existing
		return nil
	}
	f.nextCustomerID++
	customer.ID = f.nextCustomerID
	stored := *customer
	f.customers[customer.Email] = &stored
	return nil
}

func (f *fakeRepository) UpsertBooking(booking *models.Booking) error {
	if f.bookingErr != nil {
		return f.bookingErr
	}
	if existing, ok := f.bookings[booking.ProviderBookingID]; ok {
		booking.ID = existing.ID
	} else {
		f.nextBookingID++
		booking.ID = f.nextBookingID
	}
	stored := *booking
	f.bookings[booking.ProviderBookingID] = &stored
	return nil
}

func (f *fakeRepository) CancelBooking(providerBookingID string) error {
	if f.cancelErr != nil {
		return f.cancelErr
	}
	if existing, ok := f.bookings[providerBookingID]; ok {
		existing.Status = models.BookingStatusCancelled
	}
	return nil
}

func (f *fakeRepository) CreateAuditEntry(entry *models.WebhookAuditEntry) error {
	if f.auditErr != nil {
		return f.auditErr
	}
	f.audit = append(f.audit, *entry)
	return nil
}

func eventPayload(t *testing.T, raw string) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		t.Fatalf("bad test payload: %v", err)
	}
	return out
}

func TestProcessEvent_IdempotentUpsert(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	first := `{"booking_id":"BK100","contact":{"email":"a@example.com","name":"Ann"},"amount":50}`
	second := `{"booking_id":"BK100","contact":{"email":"a@example.com","name":"Ann"},"amount":75,"passenger_count":2}`

	if _, err := svc.ProcessEvent(ctx, "booking.created", eventPayload(t, first), []byte(first)); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	if _, err := svc.ProcessEvent(ctx, "booking.created", eventPayload(t, second), []byte(second)); err != nil {
		t.Fatalf("second delivery: %v", err)
	}

	if len(repo.bookings) != 1 {
		t.Fatalf("expected exactly one booking row, got %d", len(repo.bookings))
	}
	b := repo.bookings["BK100"]
	if b.Amount != 75 || b.PassengerCount != 2 {
		t.Fatalf("expected second delivery to win, got %+v", b)
	}
	if len(repo.customers) != 1 {
		t.Fatalf("expected exactly one customer row, got %d", len(repo.customers))
	}
	if b.CustomerID == nil || *b.CustomerID != repo.customers["a@example.com"].ID {
		t.Fatalf("booking not linked to customer: %+v", b)
	}
}

func TestProcessEvent_CancelBeforeCreate(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	raw := `{"booking_id":"UNKNOWN"}`
	outcome, err := svc.ProcessEvent(context.Background(), "booking.cancelled", eventPayload(t, raw), []byte(raw))
	if err != nil {
		t.Fatalf("cancellation of unknown booking must not fail: %v", err)
	}
	if !outcome.Handled {
		t.Fatalf("expected cancellation to be handled")
	}
	if len(repo.bookings) != 0 {
		t.Fatalf("cancellation must not create rows, got %d", len(repo.bookings))
	}
	if len(repo.audit) != 1 || repo.audit[0].Status != models.AuditStatusSuccess {
		t.Fatalf("expected one success audit entry, got %+v", repo.audit)
	}
}

func TestProcessEvent_CancelTouchesOnlyStatus(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	created := `{"booking_id":"BK100","contact":{"email":"a@example.com","name":"Ann"},"amount":50,"tour_name":"Harbor Cruise"}`
	if _, err := svc.ProcessEvent(ctx, "booking.created", eventPayload(t, created), []byte(created)); err != nil {
		t.Fatalf("create: %v", err)
	}

	cancelled := `{"booking_id":"BK100"}`
	if _, err := svc.ProcessEvent(ctx, "booking.cancelled", eventPayload(t, cancelled), []byte(cancelled)); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	b := repo.bookings["BK100"]
	if b.Status != models.BookingStatusCancelled {
		t.Fatalf("expected cancelled status, got %q", b.Status)
	}
	if b.Amount != 50 || b.TourName != "Harbor Cruise" || b.CustomerEmail != "a@example.com" {
		t.Fatalf("cancellation must not touch other fields: %+v", b)
	}
}

func TestProcessEvent_CustomerFailureDegrades(t *testing.T) {
	repo := newFakeRepository()
	repo.customerErr = errors.New("customers table is on fire")
	svc := NewService(repo)

	raw := `{"booking_id":"BK5","contact":{"email":"a@example.com"},"amount":10}`
	_, err := svc.ProcessEvent(context.Background(), "booking.created", eventPayload(t, raw), []byte(raw))
	if err != nil {
		t.Fatalf("customer failure must not abort the event: %v", err)
	}

	b := repo.bookings["BK5"]
	if b == nil {
		t.Fatalf("booking must persist despite customer failure")
	}
	if b.CustomerID != nil {
		t.Fatalf("expected nil customer linkage, got %v", *b.CustomerID)
	}
	if len(repo.audit) != 1 || repo.audit[0].Status != models.AuditStatusSuccess {
		t.Fatalf("expected success audit entry, got %+v", repo.audit)
	}
}

func TestProcessEvent_BookingFailurePropagates(t *testing.T) {
	repo := newFakeRepository()
	repo.bookingErr = errors.New("deadlock")
	svc := NewService(repo)

	raw := `{"booking_id":"BK6"}`
	_, err := svc.ProcessEvent(context.Background(), "booking.created", eventPayload(t, raw), []byte(raw))
	if err == nil {
		t.Fatalf("expected booking upsert failure to propagate")
	}
	if len(repo.audit) != 1 || repo.audit[0].Status != models.AuditStatusError {
		t.Fatalf("expected error audit entry, got %+v", repo.audit)
	}
}

func TestProcessEvent_MissingIdentifierIsAcknowledged(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	raw := `{"customer_email":"a@example.com"}`
	outcome, err := svc.ProcessEvent(context.Background(), "booking.created", eventPayload(t, raw), []byte(raw))
	if err != nil {
		t.Fatalf("missing identifier must not fail the request: %v", err)
	}
	if outcome.Persisted {
		t.Fatalf("nothing should persist without an identifier")
	}
	if len(repo.bookings) != 0 || len(repo.customers) != 0 {
		t.Fatalf("unexpected rows: %d bookings, %d customers", len(repo.bookings), len(repo.customers))
	}
	if len(repo.audit) != 1 {
		t.Fatalf("expected the skipped event to be audited")
	}
}

func TestProcessEvent_InertAndUnhandledTypes(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	raw := `{"id":"ITEM1"}`
	outcome, err := svc.ProcessEvent(ctx, "item.updated", eventPayload(t, raw), []byte(raw))
	if err != nil || !outcome.Handled || outcome.Persisted {
		t.Fatalf("item events must be inert but handled: outcome=%+v err=%v", outcome, err)
	}

	outcome, err = svc.ProcessEvent(ctx, "mystery.event", eventPayload(t, raw), []byte(raw))
	if err != nil {
		t.Fatalf("unrecognized types must still acknowledge: %v", err)
	}
	if outcome.Handled {
		t.Fatalf("unrecognized type must be reported unhandled")
	}
	if len(repo.bookings) != 0 {
		t.Fatalf("no storage mutation expected, got %d bookings", len(repo.bookings))
	}
	if len(repo.audit) != 2 {
		t.Fatalf("expected both events audited, got %d", len(repo.audit))
	}
}

func TestProcessEvent_AuditCompleteness(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		var raw string
		var eventType string
		switch i % 4 {
		case 0:
			eventType = "booking.created"
			raw = fmt.Sprintf(`{"booking_id":"BK%d","amount":%d}`, i, i)
		case 1:
			eventType = "booking.cancelled"
			raw = fmt.Sprintf(`{"booking_id":"BK%d"}`, i-1)
		case 2:
			eventType = "booking.created"
			raw = `{"no_identifier":true}`
		default:
			eventType = "something.else"
			raw = `{}`
		}
		_, _ = svc.ProcessEvent(ctx, eventType, eventPayload(t, raw), []byte(raw))
	}

	if len(repo.audit) != 100 {
		t.Fatalf("expected exactly 100 audit entries, got %d", len(repo.audit))
	}
}

func TestProcessEvent_AuditFailureIsSwallowed(t *testing.T) {
	repo := newFakeRepository()
	repo.auditErr = errors.New("audit table unavailable")
	svc := NewService(repo)

	raw := `{"booking_id":"BK1"}`
	if _, err := svc.ProcessEvent(context.Background(), "booking.created", eventPayload(t, raw), []byte(raw)); err != nil {
		t.Fatalf("audit failure must never fail the acknowledgment: %v", err)
	}
	if repo.bookings["BK1"] == nil {
		t.Fatalf("booking should persist even when audit write fails")
	}
}
