package counter

import (
	"context"
	"log"
	"strconv"

	"github.com/tourstack/booksync/internal/pkg/cache"
)

const eventsReceivedKey = "webhook:counters:events"

// EventCounter tracks received webhook events per declared type in a Redis
// hash. Counting is best-effort observability; failures never affect the
// ingestion path.
type EventCounter struct {
	cache *cache.Cache
}

func New(c *cache.Cache) *EventCounter {
	return &EventCounter{cache: c}
}

// AddEvent increments the counter for one declared event type.
func (ec *EventCounter) AddEvent(eventType string) {
	if ec == nil || ec.cache == nil || eventType == "" {
		return
	}
	if err := ec.cache.Client().HIncrBy(context.Background(), eventsReceivedKey, eventType, 1).Err(); err != nil {
		log.Printf("event counter increment failed for %s: %v", eventType, err)
	}
}

// Snapshot returns the per-type counts recorded so far. A cache failure
// yields an empty map, not an error.
func (ec *EventCounter) Snapshot() map[string]int64 {
	out := map[string]int64{}
	if ec == nil || ec.cache == nil {
		return out
	}
	vals, err := ec.cache.Client().HGetAll(context.Background(), eventsReceivedKey).Result()
	if err != nil {
		log.Printf("event counter read failed: %v", err)
		return out
	}
	for k, v := range vals {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			out[k] = n
		}
	}
	return out
}
