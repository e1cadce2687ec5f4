package get_recurring_history

import (
	"context"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

type RecurringService interface {
	History(ctx context.Context, id int64, actorID int64) ([]*domain.HistoryEntry, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
