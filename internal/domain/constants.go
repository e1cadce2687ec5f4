package domain

import "time"

// Default configuration values
const (
	DefaultGenerationHorizonDays      = 14
	DefaultMaterializationHorizonDays = 30
	DefaultAbuseWindow                = 10 * time.Minute
	DefaultAbuseLimit                 = 5
	DefaultExpirationMinutes          = 60
	DefaultPricePercentage            = 100
)

// Business validation constants
const (
	MaxActiveSlotsPerClient  = 3
	MinSlotDurationMinutes   = 15
	MaxSlotDurationMinutes   = 480 // 8 hours
	MinHorizonDays           = 1
	MaxGenerationHorizonDays = 90
	MinPricePercentage       = 1
	MaxPricePercentage       = 1000
	MaxPriceRuleNoteLength   = 255
	MaxRejectionReasonLength = 500
	MaxClientNameLength      = 100
	MaxPhoneLength           = 30
	MaxNationalIDLength      = 30
	RecurringDepositLeadTime = 24 * time.Hour
	MaxDepositPercentage     = 100
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// ActiveSlotStatuses статусы, в которых слот удерживается клиентом.
// Используются для лимита активных слотов на телефон.
var ActiveSlotStatuses = []SlotStatus{
	SlotReserved,
	SlotDepositSent,
	SlotConfirmed,
}

// StartOfDay возвращает полночь дня t в часовом поясе loc
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// DateIn возвращает полночь календарной даты date в часовом поясе loc.
// В отличие от StartOfDay дата не пересчитывается в loc.
func DateIn(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}
