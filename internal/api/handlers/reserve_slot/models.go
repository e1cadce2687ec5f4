package reserve_slot

import (
	"github.com/m04kA/SMC-CourtSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	reserveSlot "github.com/m04kA/SMC-CourtSlotService/internal/usecase/reserve_slot"
)

// ReserveSlotRequest HTTP request model
type ReserveSlotRequest struct {
	Name       string  `json:"name"`
	Surname    string  `json:"surname"`
	Phone      string  `json:"phone"`
	NationalID *string `json:"nationalId,omitempty"`
}

// ReserveSlotResponse HTTP response model
type ReserveSlotResponse struct {
	Slot               *handlers.SlotResponse `json:"slot"`
	RequiresDeposit    bool                   `json:"requiresDeposit"`
	DepositAmount      *string                `json:"depositAmount,omitempty"`
	ExpirationDeadline *string                `json:"expirationDeadline,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *ReserveSlotRequest) ToUseCaseRequest(slotID int64, ownerUserID *int64) *reserveSlot.Request {
	return &reserveSlot.Request{
		SlotID: slotID,
		Client: domain.ClientInfo{
			Name:       r.Name,
			Surname:    r.Surname,
			Phone:      r.Phone,
			NationalID: r.NationalID,
		},
		OwnerUserID: ownerUserID,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *reserveSlot.Response) *ReserveSlotResponse {
	out := &ReserveSlotResponse{
		Slot:               handlers.FromDomainSlot(resp.Slot),
		RequiresDeposit:    resp.RequiresDeposit,
		ExpirationDeadline: handlers.FormatTime(resp.ExpirationDeadline),
	}
	if resp.DepositAmount != nil {
		deposit := resp.DepositAmount.StringFixed(2)
		out.DepositAmount = &deposit
	}
	return out
}
