package models

import "time"

// Audit entry processing outcomes.
const (
	AuditStatusSuccess = "success"
	AuditStatusError   = "error"
)

// WebhookAuditEntry stores the verbatim payload and disposition of one inbound
// webhook request. Append-only: exactly one row per request, written after the
// outcome is known, including requests that failed verification or processing.
type WebhookAuditEntry struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	EntryUUID         string    `gorm:"type:varchar(36);not null;index" json:"entry_uuid"`
	EventType         string    `gorm:"type:varchar(100);index" json:"event_type"`
	ProviderBookingID *string   `gorm:"type:varchar(191);index" json:"provider_booking_id,omitempty"`
	RawPayload        string    `gorm:"type:longtext;not null" json:"raw_payload"`
	Status            string    `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt         time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
