package reserve_slot

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = fmt.Errorf("%w: reserve_slot: slot not found", domain.ErrNotFound)

	// ErrFacilityNotFound возвращается, когда площадка слота не найдена
	ErrFacilityNotFound = fmt.Errorf("%w: reserve_slot: facility not found", domain.ErrNotFound)

	// ErrSlotNotAvailable возвращается, когда слот уже не в статусе DISPONIBLE
	ErrSlotNotAvailable = fmt.Errorf("%w: reserve_slot: slot is not available", domain.ErrConflict)

	// ErrSlotInPast возвращается, когда начало слота уже наступило
	ErrSlotInPast = fmt.Errorf("%w: reserve_slot: slot has already started", domain.ErrValidation)

	// ErrTooManyActiveSlots возвращается, когда у клиента уже максимум активных слотов
	ErrTooManyActiveSlots = fmt.Errorf("%w: reserve_slot: client holds too many active slots", domain.ErrConflict)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: reserve_slot: invalid input data", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reserve_slot: internal error")
)
