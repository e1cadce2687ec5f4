package check_availability

import (
	"fmt"
	"net/url"
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	CourtID int64                    `json:"courtId"`
	From    string                   `json:"from"`
	To      string                   `json:"to"`
	Slots   []*handlers.SlotResponse `json:"slots"`
}

// parseRange разбирает календарные даты from и to (YYYY-MM-DD, обе включительно).
// Без to возвращается один день from. Часовой пояс дат определяет сервис по площадке.
func parseRange(q url.Values) (time.Time, time.Time, error) {
	from, err := time.Parse(domain.DateFormat, q.Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("from: %w", err)
	}

	to := from
	if raw := q.Get("to"); raw != "" {
		to, err = time.Parse(domain.DateFormat, raw)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("to: %w", err)
		}
	}

	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to %s is before from %s", q.Get("to"), q.Get("from"))
	}

	return from, to, nil
}

// FromDomain конвертирует список слотов в HTTP ответ
func FromDomain(courtID int64, fromDay, toDay time.Time, slots []*domain.Slot) *AvailabilityResponse {
	return &AvailabilityResponse{
		CourtID: courtID,
		From:    fromDay.Format(domain.DateFormat),
		To:      toDay.Format(domain.DateFormat),
		Slots:   handlers.FromDomainSlots(slots),
	}
}
