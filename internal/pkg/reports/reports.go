package reports

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/tourstack/booksync/app/models"
	"github.com/tourstack/booksync/internal/pkg/cache"
	"gorm.io/gorm"
)

const (
	analyticsCacheKey = "reports:analytics"
	cacheExpiration   = 5 * time.Minute
	dailyRevenueDays  = 30
	topTourLimit      = 5
	recentBookingRows = 10
)

// Stats holds the aggregate counters exposed by /stats.
type Stats struct {
	TotalBookings     int64   `json:"total_bookings"`
	ConfirmedBookings int64   `json:"confirmed_bookings"`
	CancelledBookings int64   `json:"cancelled_bookings"`
	TotalRevenue      float64 `json:"total_revenue"`
	TotalCustomers    int64   `json:"total_customers"`
	AuditEntries      int64   `json:"audit_entries"`
}

// DailyRevenue is one GROUP BY day row of booking revenue.
type DailyRevenue struct {
	Date     string  `json:"date"`
	Revenue  float64 `json:"revenue"`
	Bookings int64   `json:"bookings"`
}

// TourCount ranks tours by how often they were booked.
type TourCount struct {
	TourName string  `json:"tour_name"`
	Bookings int64   `json:"bookings"`
	Revenue  float64 `json:"revenue"`
}

// Analytics is the /analytics response body.
type Analytics struct {
	Stats          Stats            `json:"stats"`
	DailyRevenue   []DailyRevenue   `json:"daily_revenue"`
	TopTours       []TourCount      `json:"top_tours"`
	RecentBookings []models.Booking `json:"recent_bookings"`
}

// Service answers read-only aggregate queries over bookings. All heavy
// lifting is SQL executed by the store; the cache only shields repeated
// analytics reads.
type Service struct {
	db    *gorm.DB
	cache *cache.Cache
}

// NewService creates a report service; cache may be nil.
func NewService(db *gorm.DB, c *cache.Cache) *Service {
	return &Service{db: db, cache: c}
}

// Stats computes the aggregate counters directly from the store.
func (s *Service) Stats() (*Stats, error) {
	out := &Stats{}

	if err := s.db.Model(&models.Booking{}).Count(&out.TotalBookings).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Booking{}).
		Where("status = ?", models.BookingStatusConfirmed).
		Count(&out.ConfirmedBookings).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Booking{}).
		Where("status = ?", models.BookingStatusCancelled).
		Count(&out.CancelledBookings).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Booking{}).
		Where("status <> ?", models.BookingStatusCancelled).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&out.TotalRevenue).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Customer{}).Count(&out.TotalCustomers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.WebhookAuditEntry{}).Count(&out.AuditEntries).Error; err != nil {
		return nil, err
	}

	return out, nil
}

// Analytics returns stats plus grouped breakdowns, served from cache when a
// fresh copy exists.
func (s *Service) Analytics(ctx context.Context) (*Analytics, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, analyticsCacheKey); err == nil {
			var out Analytics
			if err := json.Unmarshal([]byte(cached), &out); err == nil {
				return &out, nil
			}
		}
	}

	stats, err := s.Stats()
	if err != nil {
		return nil, err
	}
	out := &Analytics{Stats: *stats}

	since := time.Now().AddDate(0, 0, -dailyRevenueDays)
	if err := s.db.Model(&models.Booking{}).
		Select("DATE(created_at) AS date, COALESCE(SUM(amount), 0) AS revenue, COUNT(*) AS bookings").
		Where("created_at >= ? AND status <> ?", since, models.BookingStatusCancelled).
		Group("DATE(created_at)").
		Order("date DESC").
		Scan(&out.DailyRevenue).Error; err != nil {
		return nil, err
	}

	if err := s.db.Model(&models.Booking{}).
		Select("tour_name, COUNT(*) AS bookings, COALESCE(SUM(amount), 0) AS revenue").
		Where("tour_name <> ''").
		Group("tour_name").
		Order("bookings DESC").
		Limit(topTourLimit).
		Scan(&out.TopTours).Error; err != nil {
		return nil, err
	}

	if err := s.db.
		Order("created_at DESC").
		Limit(recentBookingRows).
		Find(&out.RecentBookings).Error; err != nil {
		return nil, err
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(out); err == nil {
			if err := s.cache.Set(ctx, analyticsCacheKey, encoded, cacheExpiration); err != nil {
				log.Printf("analytics cache write failed: %v", err)
			}
		}
	}

	return out, nil
}
