package recurring

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

var (
	// ErrRecurringNotFound возвращается, когда постоянная бронь не найдена
	ErrRecurringNotFound = fmt.Errorf("%w: recurring booking not found", domain.ErrNotFound)

	// ErrCourtNotFound возвращается, когда корт не найден
	ErrCourtNotFound = fmt.Errorf("%w: court not found", domain.ErrNotFound)

	// ErrFacilityNotFound возвращается, когда площадка не найдена
	ErrFacilityNotFound = fmt.Errorf("%w: facility not found", domain.ErrNotFound)

	// ErrCourtNotEnabled возвращается, когда корт выключен или на обслуживании
	ErrCourtNotEnabled = fmt.Errorf("%w: court is not enabled", domain.ErrValidation)

	// ErrRecurringNotAllowed возвращается, когда площадка не принимает постоянные брони
	ErrRecurringNotAllowed = fmt.Errorf("%w: facility does not allow recurring bookings", domain.ErrValidation)

	// ErrAlreadyExists возвращается, когда корт уже занят постоянной бронью в этот день и время
	ErrAlreadyExists = fmt.Errorf("%w: recurring booking already exists for court, weekday and time", domain.ErrConflict)

	// ErrInvalidState возвращается, когда бронь уже находится в запрошенном состоянии
	ErrInvalidState = fmt.Errorf("%w: recurring booking state does not allow the operation", domain.ErrConflict)

	// ErrAccessDenied возвращается, когда у пользователя нет прав на бронь
	ErrAccessDenied = fmt.Errorf("%w: access denied", domain.ErrForbidden)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: invalid input data", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
