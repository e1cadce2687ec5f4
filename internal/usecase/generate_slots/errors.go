package generate_slots

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

var (
	// ErrCourtNotFound возвращается, когда корт не найден
	ErrCourtNotFound = fmt.Errorf("%w: generate_slots: court not found", domain.ErrNotFound)

	// ErrFacilityNotFound возвращается, когда площадка корта не найдена
	ErrFacilityNotFound = fmt.Errorf("%w: generate_slots: facility not found", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда ручной запуск выполняет не персонал площадки
	ErrAccessDenied = fmt.Errorf("%w: generate_slots: access denied", domain.ErrForbidden)

	// ErrCourtNotEnabled возвращается, когда корт выключен или на обслуживании
	ErrCourtNotEnabled = fmt.Errorf("%w: generate_slots: court is not enabled", domain.ErrValidation)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: generate_slots: invalid input data", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("generate_slots: internal error")
)
