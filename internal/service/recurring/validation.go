package recurring

import (
	"fmt"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	"github.com/m04kA/SMC-CourtSlotService/pkg/types"
)

const minutesInDay = 24 * 60

// validateCreate валидирует запрос и возвращает нормализованное время начала
func validateCreate(req *CreateRequest) (types.TimeString, error) {
	if req == nil {
		return "", fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}
	if req.CourtID <= 0 {
		return "", fmt.Errorf("%w: courtID must be positive", ErrInvalidInput)
	}
	if req.Weekday < 0 || req.Weekday > 6 {
		return "", fmt.Errorf("%w: weekday must be between 0 and 6", ErrInvalidInput)
	}

	startTime, err := types.NewTimeStringFromString(req.StartTime)
	if err != nil {
		return "", fmt.Errorf("%w: invalid start time %q", ErrInvalidInput, req.StartTime)
	}
	if req.DurationMinutes < domain.MinSlotDurationMinutes || req.DurationMinutes > domain.MaxSlotDurationMinutes {
		return "", fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrInvalidInput, domain.MinSlotDurationMinutes, domain.MaxSlotDurationMinutes)
	}
	startMinutes, err := startTime.Minutes()
	if err != nil || startMinutes+req.DurationMinutes > minutesInDay {
		return "", fmt.Errorf("%w: booking must end within the day", ErrInvalidInput)
	}

	if req.StartDate.IsZero() {
		return "", fmt.Errorf("%w: start date is required", ErrInvalidInput)
	}
	if req.EndDate != nil && req.EndDate.Before(req.StartDate) {
		return "", fmt.Errorf("%w: end date must not be before start date", ErrInvalidInput)
	}

	if err := req.Client.Normalize(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return startTime, nil
}
