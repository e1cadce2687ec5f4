package generate_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	InsertBatch(ctx context.Context, slots []*domain.Slot) (int64, error)
}

// ScheduleRepository интерфейс репозитория шаблонов расписания
type ScheduleRepository interface {
	GetByCourt(ctx context.Context, courtID int64) ([]*domain.ScheduleTemplate, error)
	ListCourtIDsWithActive(ctx context.Context) ([]int64, error)
}

// PriceRuleRepository интерфейс репозитория правил цены
type PriceRuleRepository interface {
	GetByCourt(ctx context.Context, courtID int64) (map[time.Weekday]*domain.PriceRule, error)
}

// FacilityServiceClient интерфейс клиента для FacilityService
type FacilityServiceClient interface {
	GetFacility(ctx context.Context, facilityID int64) (*domain.Facility, error)
	GetCourt(ctx context.Context, courtID int64) (*domain.Court, error)
}

// Metrics интерфейс доменных метрик
type Metrics interface {
	AddSlotsCreated(source string, n int)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
