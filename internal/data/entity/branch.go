package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var weekdayKeys = [...]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// WorkTime maps a weekday key (sun..sat) to "HH:MM-HH:MM".
type WorkTime map[string]string

// IsOpen reports whether t falls in the opening hours of t's weekday.
// No schedule at all means always open; a day missing from the schedule means closed.
// A range whose close is before its open runs past midnight.
func (w WorkTime) IsOpen(t time.Time) bool {
	if len(w) == 0 {
		return true
	}

	hours, ok := w[weekdayKeys[t.Weekday()]]
	if !ok || hours == "" {
		return false
	}

	open, close, found := strings.Cut(hours, "-")
	if !found {
		return false
	}
	open, close = strings.TrimSpace(open), strings.TrimSpace(close)
	current := t.Format("15:04")

	if close < open {
		return current >= open || current <= close
	}
	return current >= open && current <= close
}

type Branch struct {
	BaseNoDelete
	VendorID     uuid.UUID       `db:"vendor_id"`
	Name         string          `db:"name"`
	Image        *string         `db:"image"`
	Lat          float64         `db:"lat"`
	Lng          float64         `db:"lng"`
	Address      *string         `db:"address"`
	City         *string         `db:"city"`
	WorkTime     WorkTime        `db:"work_time"`
	DeliveryTime *string         `db:"delivery_time"`
	MinOrder     decimal.Decimal `db:"min_order"`
	DeliveryFee  decimal.Decimal `db:"delivery_fee"`
	FreeDelivery bool            `db:"free_delivery"`
	IsActive     bool            `db:"is_active"`

	// aggregated from reviews, never stored
	Rating       float64 `db:"-"`
	TotalReviews int64   `db:"-"`
}
