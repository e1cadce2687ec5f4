package create_recurring

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	"github.com/m04kA/SMC-CourtSlotService/internal/service/recurring"
)

// CreateRecurringRequest HTTP request model
type CreateRecurringRequest struct {
	CourtID         int64   `json:"courtId"`
	Weekday         int     `json:"weekday"`   // 0 = воскресенье ... 6 = суббота
	StartTime       string  `json:"startTime"` // "19:00"
	DurationMinutes int     `json:"durationMinutes"`
	StartDate       string  `json:"startDate"`         // "2025-10-15"
	EndDate         *string `json:"endDate,omitempty"` // без даты окончания бронь бессрочная
	RequiresDeposit *bool   `json:"requiresDeposit,omitempty"`
	OwnerUserID     *int64  `json:"ownerUserId,omitempty"`
	Name            string  `json:"name"`
	Surname         string  `json:"surname"`
	Phone           string  `json:"phone"`
	NationalID      *string `json:"nationalId,omitempty"`
}

// RecurringBookingResponse HTTP модель постоянной брони
type RecurringBookingResponse struct {
	ID              int64   `json:"id"`
	CourtID         int64   `json:"courtId"`
	FacilityID      int64   `json:"facilityId"`
	Weekday         int     `json:"weekday"`
	StartTime       string  `json:"startTime"`
	DurationMinutes int     `json:"durationMinutes"`
	IsActive        bool    `json:"isActive"`
	StartDate       string  `json:"startDate"`
	EndDate         *string `json:"endDate,omitempty"`
	RequiresDeposit bool    `json:"requiresDeposit"`
	OwnerUserID     *int64  `json:"ownerUserId,omitempty"`
	Name            string  `json:"name"`
	Surname         string  `json:"surname"`
	Phone           string  `json:"phone"`
}

// CreateRecurringResponse HTTP response model
type CreateRecurringResponse struct {
	Booking      *RecurringBookingResponse `json:"booking"`
	Materialized int                       `json:"materialized"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *CreateRecurringRequest) ToServiceRequest(actorID int64) (*recurring.CreateRequest, error) {
	startDate, err := time.Parse(domain.DateFormat, r.StartDate)
	if err != nil {
		return nil, fmt.Errorf("startDate: %w", err)
	}

	var endDate *time.Time
	if r.EndDate != nil {
		d, err := time.Parse(domain.DateFormat, *r.EndDate)
		if err != nil {
			return nil, fmt.Errorf("endDate: %w", err)
		}
		endDate = &d
	}

	return &recurring.CreateRequest{
		ActorID:         actorID,
		CourtID:         r.CourtID,
		Weekday:         time.Weekday(r.Weekday),
		StartTime:       r.StartTime,
		DurationMinutes: r.DurationMinutes,
		StartDate:       startDate,
		EndDate:         endDate,
		RequiresDeposit: r.RequiresDeposit,
		OwnerUserID:     r.OwnerUserID,
		Client: domain.ClientInfo{
			Name:       r.Name,
			Surname:    r.Surname,
			Phone:      r.Phone,
			NationalID: r.NationalID,
		},
	}, nil
}

// FromDomain конвертирует доменную бронь в HTTP модель
func FromDomain(b *domain.RecurringBooking) *RecurringBookingResponse {
	resp := &RecurringBookingResponse{
		ID:              b.ID,
		CourtID:         b.CourtID,
		FacilityID:      b.FacilityID,
		Weekday:         int(b.Weekday),
		StartTime:       b.StartTime.String(),
		DurationMinutes: b.DurationMinutes,
		IsActive:        b.IsActive,
		StartDate:       b.StartDate.Format(domain.DateFormat),
		RequiresDeposit: b.RequiresDeposit,
		OwnerUserID:     b.OwnerUserID,
		Name:            b.Client.Name,
		Surname:         b.Client.Surname,
		Phone:           b.Client.Phone,
	}
	if b.EndDate != nil {
		end := b.EndDate.Format(domain.DateFormat)
		resp.EndDate = &end
	}
	return resp
}
