package facilityservice

import (
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

// Facility модель площадки из FacilityService
type Facility struct {
	ID                int64   `json:"id"`
	Name              string  `json:"name"`
	RequiresDeposit   bool    `json:"requires_deposit"`
	DepositPercentage int     `json:"deposit_percentage"`
	ExpirationMinutes int     `json:"expiration_minutes"`
	AllowsRecurring   bool    `json:"allows_recurring"`
	StaffUserIDs      []int64 `json:"staff_user_ids"`
	Timezone          string  `json:"timezone"`
}

// Court модель корта из FacilityService
type Court struct {
	ID         int64           `json:"id"`
	FacilityID int64           `json:"facility_id"`
	SportID    int64           `json:"sport_id"`
	Name       string          `json:"name"`
	BasePrice  decimal.Decimal `json:"base_price"`
	State      string          `json:"state"` // ENABLED, DISABLED, MAINTENANCE
}

// ErrorResponse модель ошибки от FacilityService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (f *Facility) toDomain() *domain.Facility {
	return &domain.Facility{
		ID:                f.ID,
		Name:              f.Name,
		RequiresDeposit:   f.RequiresDeposit,
		DepositPercentage: f.DepositPercentage,
		ExpirationMinutes: f.ExpirationMinutes,
		AllowsRecurring:   f.AllowsRecurring,
		StaffUserIDs:      f.StaffUserIDs,
		Timezone:          f.Timezone,
	}
}

func (c *Court) toDomain() *domain.Court {
	return &domain.Court{
		ID:         c.ID,
		FacilityID: c.FacilityID,
		SportID:    c.SportID,
		Name:       c.Name,
		BasePrice:  c.BasePrice,
		State:      domain.CourtState(c.State),
	}
}
