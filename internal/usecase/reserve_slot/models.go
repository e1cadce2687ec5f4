package reserve_slot

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

// Request модель запроса на бронирование слота
type Request struct {
	SlotID      int64
	Client      domain.ClientInfo
	OwnerUserID *int64 // nil для брони без аккаунта (по телефону)
}

// Response модель ответа бронирования
type Response struct {
	Slot               *domain.Slot
	RequiresDeposit    bool
	DepositAmount      *decimal.Decimal
	ExpirationDeadline *time.Time
}

// Результаты попыток бронирования для метрик
const (
	resultReserved    = "reserved"
	resultConfirmed   = "confirmed"
	resultRateLimited = "rate_limited"
	resultRejected    = "rejected"
	resultConflict    = "conflict"
	resultError       = "error"
)
