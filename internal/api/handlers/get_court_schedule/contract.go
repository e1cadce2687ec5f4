package get_court_schedule

import (
	"context"

	"github.com/m04kA/SMC-CourtSlotService/internal/service/schedule/models"
)

type ScheduleService interface {
	ListTemplates(ctx context.Context, courtID int64) (*models.CourtScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
