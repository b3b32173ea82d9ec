package domain

import "time"

// Plan represents the subscription plan of an account
type Plan string

const (
	PlanFree       Plan = "free"
	PlanPro        Plan = "pro"
	PlanEnterprise Plan = "enterprise"
)

// HasUnlimitedMonthlyBookings returns true if the plan is not subject
// to the monthly booking ceiling
func (p Plan) HasUnlimitedMonthlyBookings() bool {
	return p == PlanPro || p == PlanEnterprise
}

// Account represents a scheduling-enabled business account
// WidgetID is the public identifier used by the booking widget to look up
// configuration without authentication; the internal ID is never exposed
type Account struct {
	ID                  int64
	WidgetID            string
	OwnerName           string
	OwnerEmail          string
	OwnerPhone          *string
	Plan                Plan
	MaxBookingsPerMonth int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}
