package handlers

import (
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

// ClientResponse контактные данные клиента слота
type ClientResponse struct {
	Name       string  `json:"name"`
	Surname    string  `json:"surname"`
	Phone      string  `json:"phone"`
	NationalID *string `json:"nationalId,omitempty"`
}

// SlotResponse HTTP модель слота, общая для всех операций над слотами
type SlotResponse struct {
	ID                 int64           `json:"id"`
	CourtID            int64           `json:"courtId"`
	FacilityID         int64           `json:"facilityId"`
	StartAt            string          `json:"startAt"`
	EndAt              string          `json:"endAt"`
	DurationMinutes    int             `json:"durationMinutes"`
	TotalPrice         string          `json:"totalPrice"`
	DepositAmount      *string         `json:"depositAmount,omitempty"`
	Status             string          `json:"status"`
	Client             *ClientResponse `json:"client,omitempty"`
	OwnerUserID        *int64          `json:"ownerUserId,omitempty"`
	ReservedAt         *string         `json:"reservedAt,omitempty"`
	ExpiresAt          *string         `json:"expiresAt,omitempty"`
	ConfirmedAt        *string         `json:"confirmedAt,omitempty"`
	RecurringBookingID *int64          `json:"recurringBookingId,omitempty"`
}

// FromDomainSlot конвертирует доменный слот в HTTP модель
func FromDomainSlot(s *domain.Slot) *SlotResponse {
	resp := &SlotResponse{
		ID:                 s.ID,
		CourtID:            s.CourtID,
		FacilityID:         s.FacilityID,
		StartAt:            s.StartAt.Format(time.RFC3339),
		EndAt:              s.EndAt().Format(time.RFC3339),
		DurationMinutes:    s.DurationMinutes,
		TotalPrice:         s.TotalPrice.StringFixed(2),
		Status:             string(s.Status),
		OwnerUserID:        s.OwnerUserID,
		ReservedAt:         FormatTime(s.ReservedAt),
		ExpiresAt:          FormatTime(s.ExpiresAt),
		ConfirmedAt:        FormatTime(s.ConfirmedAt),
		RecurringBookingID: s.RecurringBookingID,
	}
	if s.DepositAmount != nil {
		deposit := s.DepositAmount.StringFixed(2)
		resp.DepositAmount = &deposit
	}
	if s.Client != nil {
		resp.Client = &ClientResponse{
			Name:       s.Client.Name,
			Surname:    s.Client.Surname,
			Phone:      s.Client.Phone,
			NationalID: s.Client.NationalID,
		}
	}
	return resp
}

// FromDomainSlots конвертирует список слотов
func FromDomainSlots(slots []*domain.Slot) []*SlotResponse {
	out := make([]*SlotResponse, 0, len(slots))
	for _, s := range slots {
		out = append(out, FromDomainSlot(s))
	}
	return out
}

// FormatTime форматирует опциональное время в RFC3339
func FormatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	v := t.Format(time.RFC3339)
	return &v
}
