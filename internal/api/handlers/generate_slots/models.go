package generate_slots

import (
	generateSlots "github.com/m04kA/SMC-CourtSlotService/internal/usecase/generate_slots"
)

// GenerateSlotsRequest HTTP request model, тело необязательно
type GenerateSlotsRequest struct {
	DaysAhead *int `json:"daysAhead,omitempty"`
}

// GenerateSlotsResponse HTTP response model
type GenerateSlotsResponse struct {
	CourtID int64 `json:"courtId"`
	Created int   `json:"created"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *GenerateSlotsRequest) ToUseCaseRequest(courtID, userID int64) *generateSlots.Request {
	return &generateSlots.Request{
		CourtID:   courtID,
		DaysAhead: r.DaysAhead,
		ActorID:   &userID,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *generateSlots.Response) *GenerateSlotsResponse {
	return &GenerateSlotsResponse{
		CourtID: resp.CourtID,
		Created: resp.Created,
	}
}
