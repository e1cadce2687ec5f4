package generate_slots

import "fmt"

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.CourtID <= 0 {
		return fmt.Errorf("%w: courtID must be positive", ErrInvalidInput)
	}

	if req.DaysAhead != nil && *req.DaysAhead <= 0 {
		return fmt.Errorf("%w: daysAhead must be positive", ErrInvalidInput)
	}

	return nil
}

// horizonFor возвращает количество дней генерации для шаблона
func horizonFor(requested *int, templateHorizon, maxHorizon int) int {
	days := templateHorizon
	if requested != nil {
		days = *requested
	}
	if days > maxHorizon {
		days = maxHorizon
	}
	return days
}
