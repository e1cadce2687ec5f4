package update_court_schedule

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/service/schedule/models"
)

type ScheduleService interface {
	UpsertTemplate(ctx context.Context, req *models.UpsertTemplateRequest) (*models.TemplateResponse, error)
	DeleteTemplate(ctx context.Context, courtID int64, weekday time.Weekday, userID int64) error
	UpsertPriceRule(ctx context.Context, req *models.UpsertPriceRuleRequest) (*models.PriceRuleResponse, error)
	DeletePriceRule(ctx context.Context, courtID int64, weekday time.Weekday, userID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
