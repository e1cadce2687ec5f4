package payments

import (
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

// maxProofURLLength максимальная длина ссылки на подтверждение оплаты
const maxProofURLLength = 2048

// SubmitRequest данные подтверждения оплаты депозита
type SubmitRequest struct {
	SlotID   int64
	UserID   int64
	Method   domain.PaymentMethod
	Amount   decimal.Decimal
	ProofURL *string
}

// Result платеж и слот после операции
type Result struct {
	Payment *domain.PaymentRecord
	Slot    *domain.Slot
}
