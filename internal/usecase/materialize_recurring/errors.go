package materialize_recurring

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

var (
	// ErrCourtNotFound возвращается, когда корт брони не найден в каталоге
	ErrCourtNotFound = fmt.Errorf("%w: materialize_recurring: court not found", domain.ErrNotFound)

	// ErrFacilityNotFound возвращается, когда площадка брони не найдена
	ErrFacilityNotFound = fmt.Errorf("%w: materialize_recurring: facility not found", domain.ErrNotFound)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("materialize_recurring: internal error")
)
