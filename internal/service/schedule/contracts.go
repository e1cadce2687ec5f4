package schedule

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

// ScheduleRepository интерфейс репозитория шаблонов расписания
type ScheduleRepository interface {
	Upsert(ctx context.Context, t *domain.ScheduleTemplate) (*domain.ScheduleTemplate, error)
	GetByCourt(ctx context.Context, courtID int64) ([]*domain.ScheduleTemplate, error)
	Delete(ctx context.Context, courtID int64, weekday time.Weekday) error
}

// PriceRuleRepository интерфейс репозитория правил цены
type PriceRuleRepository interface {
	Upsert(ctx context.Context, rule *domain.PriceRule) (*domain.PriceRule, error)
	GetByCourt(ctx context.Context, courtID int64) (map[time.Weekday]*domain.PriceRule, error)
	Delete(ctx context.Context, courtID int64, weekday time.Weekday) error
}

// FacilityServiceClient интерфейс клиента для FacilityService
type FacilityServiceClient interface {
	GetFacility(ctx context.Context, facilityID int64) (*domain.Facility, error)
	GetCourt(ctx context.Context, courtID int64) (*domain.Court, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
