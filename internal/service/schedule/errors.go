package schedule

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

var (
	// ErrTemplateNotFound возвращается, когда шаблон расписания не найден
	ErrTemplateNotFound = fmt.Errorf("%w: schedule template not found", domain.ErrNotFound)

	// ErrPriceRuleNotFound возвращается, когда правило цены не найдено
	ErrPriceRuleNotFound = fmt.Errorf("%w: price rule not found", domain.ErrNotFound)

	// ErrCourtNotFound возвращается, когда корт не найден
	ErrCourtNotFound = fmt.Errorf("%w: court not found", domain.ErrNotFound)

	// ErrFacilityNotFound возвращается, когда площадка не найдена
	ErrFacilityNotFound = fmt.Errorf("%w: facility not found", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда пользователь не из персонала площадки
	ErrAccessDenied = fmt.Errorf("%w: access denied", domain.ErrForbidden)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: invalid input data", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
