package recurring

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	"github.com/m04kA/SMC-CourtSlotService/internal/usecase/materialize_recurring"
)

// RecurringRepository интерфейс репозитория постоянных броней
type RecurringRepository interface {
	Create(ctx context.Context, b *domain.RecurringBooking) (*domain.RecurringBooking, error)
	GetByID(ctx context.Context, id int64) (*domain.RecurringBooking, error)
	SetActive(ctx context.Context, id int64, active bool, now time.Time) error
	Delete(ctx context.Context, id int64) error
	AppendHistory(ctx context.Context, e *domain.HistoryEntry) error
	ListHistory(ctx context.Context, recurringID int64) ([]*domain.HistoryEntry, error)
}

// SlotRepository интерфейс репозитория слотов
type SlotRepository interface {
	CancelFutureByRecurring(ctx context.Context, recurringID int64, now time.Time) ([]int64, error)
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

// Materializer материализует одну постоянную бронь на горизонт
type Materializer interface {
	MaterializeBooking(ctx context.Context, b *domain.RecurringBooking) (*materialize_recurring.BookingResult, error)
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
