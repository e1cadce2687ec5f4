package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Facility is the tenant owning courts, as returned by the facility service
type Facility struct {
	ID                int64
	Name              string
	RequiresDeposit   bool
	DepositPercentage int // 0..100
	ExpirationMinutes int
	AllowsRecurring   bool
	StaffUserIDs      []int64
	Timezone          string
}

// IsStaff returns true if userID belongs to the facility staff
func (f *Facility) IsStaff(userID int64) bool {
	for _, id := range f.StaffUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// DepositFor returns the deposit for a slot price rounded to 2 decimals
func (f *Facility) DepositFor(price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(f.DepositPercentage))).
		Div(decimal.NewFromInt(100)).
		Round(2)
}

// ReservationTTL returns how long an unpaid reservation is held
func (f *Facility) ReservationTTL() time.Duration {
	minutes := f.ExpirationMinutes
	if minutes <= 0 {
		minutes = DefaultExpirationMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// Location returns the facility timezone, falling back to def
func (f *Facility) Location(def *time.Location) *time.Location {
	if f.Timezone == "" {
		return def
	}
	loc, err := time.LoadLocation(f.Timezone)
	if err != nil {
		return def
	}
	return loc
}

// CourtState represents the operational state of a court
type CourtState string

const (
	CourtEnabled     CourtState = "ENABLED"
	CourtDisabled    CourtState = "DISABLED"
	CourtMaintenance CourtState = "MAINTENANCE"
)

// Court is a bookable playing surface of a facility
type Court struct {
	ID         int64
	FacilityID int64
	SportID    int64
	Name       string
	BasePrice  decimal.Decimal
	State      CourtState
}

// IsEnabled returns true if slots may be generated for the court
func (c *Court) IsEnabled() bool {
	return c.State == CourtEnabled
}
