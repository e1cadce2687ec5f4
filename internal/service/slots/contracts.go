package slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Slot, error)
	ListAvailable(ctx context.Context, courtID int64, from, to time.Time) ([]*domain.Slot, error)
	ApplyTransition(ctx context.Context, id int64, event domain.SlotEvent, upd domain.SlotUpdate, now time.Time) (*domain.Slot, error)
}

// PaymentRepository интерфейс репозитория платежей
type PaymentRepository interface {
	VoidLive(ctx context.Context, slotIDs []int64, reason string, at time.Time) (int64, error)
}

// FacilityServiceClient интерфейс клиента для FacilityService
type FacilityServiceClient interface {
	GetFacility(ctx context.Context, facilityID int64) (*domain.Facility, error)
	GetCourt(ctx context.Context, courtID int64) (*domain.Court, error)
}

// EventPublisher публикует доменные события
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, payload any) error
}

// TransactionManager выполняет функцию в транзакции
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
