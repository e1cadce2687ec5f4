package slot_action

import (
	"context"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

type SlotService interface {
	Cancel(ctx context.Context, slotID int64, userID int64) (*domain.Slot, error)
	CancelRecurringOccurrence(ctx context.Context, slotID int64, userID int64) (*domain.Slot, error)
	MarkNoShow(ctx context.Context, slotID int64, userID int64) (*domain.Slot, error)
	Block(ctx context.Context, slotID int64, userID int64) (*domain.Slot, error)
	Reopen(ctx context.Context, slotID int64, userID int64) (*domain.Slot, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
