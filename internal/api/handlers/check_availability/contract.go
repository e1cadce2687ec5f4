package check_availability

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

type SlotService interface {
	CheckAvailabilityByDays(ctx context.Context, courtID int64, fromDay, toDay time.Time) ([]*domain.Slot, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
