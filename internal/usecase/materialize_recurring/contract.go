package materialize_recurring

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	"github.com/m04kA/SMC-CourtSlotService/pkg/types"
)

// RecurringRepository интерфейс репозитория постоянных броней
type RecurringRepository interface {
	ListActiveForDate(ctx context.Context, date time.Time) ([]*domain.RecurringBooking, error)
	SetActive(ctx context.Context, id int64, active bool, now time.Time) error
	UpdateCourt(ctx context.Context, id, courtID int64, now time.Time) error
	Delete(ctx context.Context, id int64) error
	IsClaimed(ctx context.Context, courtID int64, weekday time.Weekday, startTime types.TimeString) (bool, error)
	AppendHistory(ctx context.Context, e *domain.HistoryEntry) error
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	InsertIfAbsent(ctx context.Context, s *domain.Slot) (*domain.Slot, bool, error)
	GetByCourtAndStart(ctx context.Context, courtID int64, startAt time.Time) (*domain.Slot, error)
	ApplyTransition(ctx context.Context, id int64, event domain.SlotEvent, upd domain.SlotUpdate, now time.Time) (*domain.Slot, error)
	CancelFutureByRecurring(ctx context.Context, recurringID int64, now time.Time) ([]int64, error)
}

// PaymentRepository интерфейс репозитория платежей
type PaymentRepository interface {
	VoidLive(ctx context.Context, slotIDs []int64, reason string, at time.Time) (int64, error)
}

// PriceRuleRepository интерфейс репозитория правил цены
type PriceRuleRepository interface {
	GetByCourt(ctx context.Context, courtID int64) (map[time.Weekday]*domain.PriceRule, error)
}

// FacilityServiceClient интерфейс клиента для FacilityService
type FacilityServiceClient interface {
	GetFacility(ctx context.Context, facilityID int64) (*domain.Facility, error)
	GetCourt(ctx context.Context, courtID int64) (*domain.Court, error)
	ListCourts(ctx context.Context, facilityID, sportID int64) ([]*domain.Court, error)
}

// EventPublisher публикует доменные события
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// Metrics интерфейс доменных метрик
type Metrics interface {
	AddSlotsCreated(source string, n int)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
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
