package get_slot

import (
	"context"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

type SlotService interface {
	GetByID(ctx context.Context, slotID int64, userID int64) (*domain.Slot, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
