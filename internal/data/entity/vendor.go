package entity

import "time"

const SubscriptionPeriod = 1 // years

type Vendor struct {
	BaseNoDelete
	Name          string    `db:"name"`
	Image         *string   `db:"image"`
	About         *string   `db:"about"`
	SubscriptDate time.Time `db:"subscript_date"`
	IsActive      bool      `db:"is_active"`

	Rating      float64 `db:"-"`
	BranchCount int64   `db:"-"`
}

func (v *Vendor) SubscriptionEndsAt() time.Time {
	return v.SubscriptDate.AddDate(SubscriptionPeriod, 0, 0)
}

// SubscriptionActive: active vendor whose subscription year has not run out.
func (v *Vendor) SubscriptionActive(now time.Time) bool {
	return v.IsActive && !now.After(v.SubscriptionEndsAt())
}
