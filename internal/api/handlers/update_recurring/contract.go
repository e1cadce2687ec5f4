package update_recurring

import (
	"context"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	"github.com/m04kA/SMC-CourtSlotService/internal/service/recurring"
)

type RecurringService interface {
	Pause(ctx context.Context, id int64, actorID int64) (*domain.RecurringBooking, error)
	Reactivate(ctx context.Context, id int64, actorID int64) (*domain.RecurringBooking, error)
	Cancel(ctx context.Context, id int64, actorID int64) (*recurring.CancelResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
