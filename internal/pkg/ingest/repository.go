package ingest

import (
	"github.com/google/uuid"
	"github.com/tourstack/booksync/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides the DB operations used by the ingestion service. The
// unique-constraint upserts are the only concurrency control: two racing
// deliveries for the same key resolve to last-committed-wins inside the
// store, never to a duplicate row.
type Repository interface {
	UpsertCustomer(customer *models.Customer) error
	UpsertBooking(booking *models.Booking) error
	CancelBooking(providerBookingID string) error
	CreateAuditEntry(entry *models.WebhookAuditEntry) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates an ingestion repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) UpsertCustomer(customer *models.Customer) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "email"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"name",
			"phone",
			"updated_at",
		}),
	}).Create(customer).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return r.db.Where("email = ?", customer.Email).First(customer).Error
}

func (r *gormRepository) UpsertBooking(booking *models.Booking) error {
	if err := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider_booking_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"customer_id",
			"customer_email",
			"customer_name",
			"tour_name",
			"tour_date",
			"passenger_count",
			"amount",
			"status",
			"source",
			"special_requests",
			"raw_payload",
			"updated_at",
		}),
	}).Create(booking).Error; err != nil {
		return err
	}

	return r.db.Where("provider_booking_id = ?", booking.ProviderBookingID).First(booking).Error
}

// CancelBooking flips only the status column. A missing row is a silent
// no-op: the provider may deliver a cancellation before the creation it
// refers to.
func (r *gormRepository) CancelBooking(providerBookingID string) error {
	return r.db.Model(&models.Booking{}).
		Where("provider_booking_id = ?", providerBookingID).
		Update("status", models.BookingStatusCancelled).Error
}

func (r *gormRepository) CreateAuditEntry(entry *models.WebhookAuditEntry) error {
	if entry.EntryUUID == "" {
		entry.EntryUUID = uuid.NewString()
	}
	return r.db.Create(entry).Error
}
