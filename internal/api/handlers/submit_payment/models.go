package submit_payment

import (
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-CourtSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	"github.com/m04kA/SMC-CourtSlotService/internal/service/payments"
)

// SubmitPaymentRequest HTTP request model
type SubmitPaymentRequest struct {
	Method   string          `json:"method"` // TRANSFERENCIA | MERCADO_PAGO | TARJETA
	Amount   decimal.Decimal `json:"amount"`
	ProofURL *string         `json:"proofUrl,omitempty"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *SubmitPaymentRequest) ToServiceRequest(slotID, userID int64) *payments.SubmitRequest {
	return &payments.SubmitRequest{
		SlotID:   slotID,
		UserID:   userID,
		Method:   domain.PaymentMethod(r.Method),
		Amount:   r.Amount,
		ProofURL: r.ProofURL,
	}
}

// PaymentResponse HTTP модель платежа
type PaymentResponse struct {
	ID              int64   `json:"id"`
	SlotID          int64   `json:"slotId"`
	Amount          string  `json:"amount"`
	Method          string  `json:"method"`
	Status          string  `json:"status"`
	ProofURL        *string `json:"proofUrl,omitempty"`
	SubmittedAt     *string `json:"submittedAt,omitempty"`
	ValidatedAt     *string `json:"validatedAt,omitempty"`
	ValidatedBy     *int64  `json:"validatedBy,omitempty"`
	RejectionReason *string `json:"rejectionReason,omitempty"`
}

// PaymentResultResponse платеж и слот после операции
type PaymentResultResponse struct {
	Payment *PaymentResponse       `json:"payment"`
	Slot    *handlers.SlotResponse `json:"slot"`
}

// FromDomainPayment конвертирует доменный платеж в HTTP модель
func FromDomainPayment(p *domain.PaymentRecord) *PaymentResponse {
	return &PaymentResponse{
		ID:              p.ID,
		SlotID:          p.SlotID,
		Amount:          p.Amount.StringFixed(2),
		Method:          string(p.Method),
		Status:          string(p.Status),
		ProofURL:        p.ProofURL,
		SubmittedAt:     handlers.FormatTime(p.SubmittedAt),
		ValidatedAt:     handlers.FormatTime(p.ValidatedAt),
		ValidatedBy:     p.ValidatedBy,
		RejectionReason: p.RejectionReason,
	}
}

// FromServiceResult конвертирует результат сервиса в HTTP ответ
func FromServiceResult(res *payments.Result) *PaymentResultResponse {
	return &PaymentResultResponse{
		Payment: FromDomainPayment(res.Payment),
		Slot:    handlers.FromDomainSlot(res.Slot),
	}
}
