package slots

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = fmt.Errorf("%w: slot not found", domain.ErrNotFound)

	// ErrCourtNotFound возвращается, когда корт не найден
	ErrCourtNotFound = fmt.Errorf("%w: court not found", domain.ErrNotFound)

	// ErrFacilityNotFound возвращается, когда площадка слота не найдена
	ErrFacilityNotFound = fmt.Errorf("%w: facility not found", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда у пользователя нет прав на слот
	ErrAccessDenied = fmt.Errorf("%w: access denied", domain.ErrForbidden)

	// ErrInvalidTransition возвращается, когда текущий статус слота не допускает операцию
	ErrInvalidTransition = fmt.Errorf("%w: slot status does not allow the operation", domain.ErrConflict)

	// ErrNotRecurring возвращается при отмене вхождения у слота без постоянной брони
	ErrNotRecurring = fmt.Errorf("%w: slot does not belong to a recurring booking", domain.ErrValidation)

	// ErrNoShowTooEarly возвращается при отметке неявки до начала слота
	ErrNoShowTooEarly = fmt.Errorf("%w: slot has not started yet", domain.ErrValidation)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: invalid input data", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
