package models

import "time"

// Booking statuses with behavioral meaning. The status column stays an open
// string set; providers may deliver values outside this list.
const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusCancelled = "cancelled"
)

// Booking mirrors one provider booking. ProviderBookingID is the idempotency
// key: redelivered created/updated events overwrite the mutable columns via
// upsert instead of inserting a second row. Customer contact data is kept
// denormalized at write time so reporting never needs the join.
type Booking struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	ProviderBookingID string     `gorm:"type:varchar(191);not null;uniqueIndex:ux_bookings_provider_booking_id" json:"provider_booking_id"`
	CustomerID        *uint      `gorm:"index" json:"customer_id,omitempty"`
	CustomerEmail     string     `gorm:"type:varchar(191);index" json:"customer_email"`
	CustomerName      string     `gorm:"type:varchar(255)" json:"customer_name"`
	TourName          string     `gorm:"type:varchar(255);index" json:"tour_name"`
	TourDate          string     `gorm:"type:varchar(64)" json:"tour_date"`
	PassengerCount    int        `gorm:"not null;default:1" json:"passenger_count"`
	Amount            float64    `gorm:"not null;default:0" json:"amount"`
	Status            string     `gorm:"type:varchar(32);not null;default:'confirmed';index" json:"status"`
	Source            string     `gorm:"type:varchar(64)" json:"source"`
	SpecialRequests   string     `gorm:"type:text" json:"special_requests"`
	RawPayload        string     `gorm:"type:longtext" json:"raw_payload"`
	CreatedAt         time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`

	Customer *Customer `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
}
