package recurring

import (
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

// CreateRequest данные новой постоянной брони
type CreateRequest struct {
	ActorID         int64
	CourtID         int64
	Weekday         time.Weekday
	StartTime       string // HH:MM
	DurationMinutes int
	StartDate       time.Time
	EndDate         *time.Time
	RequiresDeposit *bool  // nil = политика площадки
	OwnerUserID     *int64 // nil = актор
	Client          domain.ClientInfo
}

// CreateResponse созданная бронь и число материализованных слотов
type CreateResponse struct {
	Booking      *domain.RecurringBooking
	Materialized int
}

// CancelResponse результат полной отмены брони
type CancelResponse struct {
	RecurringBookingID int64
	CancelledSlots     int64
}
