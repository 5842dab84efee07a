package ingest

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrMissingBookingID signals that no identifier strategy produced a usable
// provider booking id. The event is audited but never persisted.
var ErrMissingBookingID = errors.New("payload carries no booking identifier")

var validate = validator.New()

// Normalize maps one loosely structured event payload onto a canonical
// booking record. TourDesk delivers at least two incompatible shapes: a
// legacy flat one and a nested one where everything sits under "booking".
// Each logical field is resolved through an ordered list of fallbacks; the
// first non-empty candidate wins.
func Normalize(eventType string, payload map[string]any, rawBody []byte) (*CanonicalBooking, error) {
	scopes := fieldScopes(payload)

	id := resolveBookingID(scopes)
	if id == "" {
		return nil, ErrMissingBookingID
	}

	cb := &CanonicalBooking{
		ProviderBookingID: id,
		Contact:           resolveContact(scopes),
		PassengerCount:    1,
		Status:            "confirmed",
		Source:            DefaultBookingSource,
		RawPayload:        string(rawBody),
	}

	cb.TourName, cb.TourDate = resolveTour(scopes)

	for _, m := range scopes {
		if cb.PassengerCount == 1 {
			if n, ok := intField(m, "passenger_count", "passengers"); ok {
				cb.PassengerCount = n
			}
		}
		if cb.Amount == 0 {
			if f, ok := floatField(m, "amount", "total_amount"); ok {
				cb.Amount = f
			}
		}
		if s := stringField(m, "status"); s != "" && cb.Status == "confirmed" {
			cb.Status = strings.ToLower(s)
		}
		if s := stringField(m, "source"); s != "" && cb.Source == DefaultBookingSource {
			cb.Source = s
		}
		if cb.SpecialRequests == "" {
			cb.SpecialRequests = stringField(m, "special_requests", "notes")
		}
	}

	// An address that cannot possibly be an email never becomes a customer
	// identity; the booking still persists without linkage.
	if cb.Contact.Email != "" {
		if err := validate.Var(cb.Contact.Email, "email"); err != nil {
			cb.Contact.Email = ""
		}
	}

	return cb, nil
}

// ResolveBookingID extracts a provider booking id without running the full
// normalizer. The cancellation path uses whatever identifier fields are
// present.
func ResolveBookingID(payload map[string]any) string {
	return resolveBookingID(fieldScopes(payload))
}

// fieldScopes returns the payload root plus the nested "booking" object when
// present. Resolution checks both levels, root first.
func fieldScopes(payload map[string]any) []map[string]any {
	scopes := []map[string]any{}
	if payload != nil {
		scopes = append(scopes, payload)
	}
	if b := subMap(payload, "booking"); b != nil {
		scopes = append(scopes, b)
	}
	return scopes
}

func resolveBookingID(scopes []map[string]any) string {
	for _, m := range scopes {
		if id := stringField(m, "order_number", "booking_id", "id"); id != "" {
			return id
		}
	}
	return ""
}

func resolveContact(scopes []map[string]any) Contact {
	for _, m := range scopes {
		for _, key := range []string{"contact", "customer"} {
			if c := subMap(m, key); c != nil {
				return Contact{
					Email: stringField(c, "email"),
					Name:  stringField(c, "name"),
					Phone: stringField(c, "phone"),
				}
			}
		}
	}
	for _, m := range scopes {
		if email := stringField(m, "customer_email"); email != "" {
			return Contact{
				Email: email,
				Name:  stringField(m, "customer_name"),
				Phone: stringField(m, "customer_phone"),
			}
		}
	}
	return Contact{}
}

func resolveTour(scopes []map[string]any) (name, date string) {
	for _, m := range scopes {
		item := subMap(m, "item")
		if avail := subMap(m, "availability"); avail != nil {
			if nested := subMap(avail, "item"); nested != nil {
				item = nested
			}
		}
		if item != nil {
			return stringField(item, "name", "tour_name"), stringField(item, "date", "start_time")
		}
	}
	for _, m := range scopes {
		if n := stringField(m, "tour_name"); n != "" {
			return n, stringField(m, "tour_date", "tour_time")
		}
	}
	return "", ""
}

func subMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	if sub, ok := m[key].(map[string]any); ok {
		return sub
	}
	return nil
}

// stringField returns the first non-empty candidate, coercing JSON numbers so
// numeric identifiers survive.
func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		switch v := m[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

func floatField(m map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch v := m[key].(type) {
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func intField(m map[string]any, keys ...string) (int, bool) {
	if f, ok := floatField(m, keys...); ok {
		return int(f), true
	}
	return 0, false
}
