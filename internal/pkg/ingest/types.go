package ingest

// DefaultBookingSource labels bookings whose payload carries no source field.
const DefaultBookingSource = "tourdesk"

// Contact is the resolved customer contact of a booking payload. Email may be
// empty; reconciliation then proceeds without a customer linkage.
type Contact struct {
	Email string
	Name  string
	Phone string
}

// CanonicalBooking is the shape-independent booking record produced by the
// normalizer, flat and ready for storage. RawPayload keeps the original
// request bytes verbatim for forensic replay.
type CanonicalBooking struct {
	ProviderBookingID string
	Contact           Contact
	TourName          string
	TourDate          string
	PassengerCount    int
	Amount            float64
	Status            string
	Source            string
	SpecialRequests   string
	RawPayload        string
}

// Outcome summarizes how one webhook event was handled.
type Outcome struct {
	EventType         string
	ProviderBookingID string
	Handled           bool
	Persisted         bool
}
