package domain

import (
	"time"

	"github.com/m04kA/SMC-CourtSlotService/pkg/types"
)

// RecurringBooking is a weekly standing booking ("turno fijo").
// Unique by (CourtID, Weekday, StartTime).
type RecurringBooking struct {
	ID              int64
	CourtID         int64
	FacilityID      int64
	Weekday         time.Weekday
	StartTime       types.TimeString
	DurationMinutes int
	IsActive        bool
	StartDate       time.Time
	EndDate         *time.Time // nil = бессрочно
	RequiresDeposit bool
	OwnerUserID     *int64

	// Контактные данные копируются в каждый материализованный слот
	Client ClientInfo

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CoversDate returns true if the calendar day of date in loc lies within [StartDate, EndDate].
// StartDate and EndDate are calendar dates, their own location is ignored.
func (b *RecurringBooking) CoversDate(date time.Time, loc *time.Location) bool {
	day := civilDate(date.In(loc))
	if day < civilDate(b.StartDate) {
		return false
	}
	if b.EndDate != nil && day > civilDate(*b.EndDate) {
		return false
	}
	return true
}

func civilDate(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

// Occurrences returns the start datetimes of the booking inside [from, to),
// walking week by week from the first matching weekday on or after from.
func (b *RecurringBooking) Occurrences(from, to time.Time, loc *time.Location) ([]time.Time, error) {
	day := StartOfDay(from, loc)
	offset := (int(b.Weekday) - int(day.Weekday()) + 7) % 7
	day = day.AddDate(0, 0, offset)

	var out []time.Time
	for ; day.Before(to); day = day.AddDate(0, 0, 7) {
		if !b.CoversDate(day, loc) {
			continue
		}
		startAt, err := b.StartTime.On(day, loc)
		if err != nil {
			return nil, err
		}
		if startAt.Before(from) || !startAt.Before(to) {
			continue
		}
		out = append(out, startAt)
	}
	return out, nil
}

// HistoryAction is the kind of a recurring booking history entry
type HistoryAction string

const (
	HistoryCreated         HistoryAction = "CREATED"
	HistoryPaused          HistoryAction = "PAUSED"
	HistoryReactivated     HistoryAction = "REACTIVATED"
	HistoryCancelled       HistoryAction = "CANCELLED"
	HistoryCourtReassigned HistoryAction = "COURT_REASSIGNED"
	HistoryAutoDeactivated HistoryAction = "AUTO_DEACTIVATED"
	HistoryAutoCancelled   HistoryAction = "AUTO_CANCELLED"
)

// HistoryEntry is an append-only audit record of a recurring booking.
// Entries outlive the booking row.
type HistoryEntry struct {
	ID                 int64
	RecurringBookingID int64
	Action             HistoryAction
	Detail             string
	ActorID            *int64
	CreatedAt          time.Time
}
