package materialize_recurring

// Outcome итог обработки одной постоянной брони
type Outcome string

const (
	OutcomeMaterialized Outcome = "materialized"
	OutcomeReassigned   Outcome = "reassigned"
	OutcomeDeactivated  Outcome = "deactivated"
	OutcomeDeleted      Outcome = "deleted"
)

// BookingResult результат материализации одной брони
type BookingResult struct {
	RecurringBookingID int64
	Outcome            Outcome
	CourtID            int64 // корт после возможного переноса
	Created            int   // новые и присоединенные слоты
}

// SweepResult итог прохода по всем активным броням
type SweepResult struct {
	Processed   int
	Created     int
	Reassigned  int
	Deactivated int
	Deleted     int
	Failed      int
}
