package abuseguard

import (
	"fmt"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

var (
	// ErrTooManyAttempts возвращается, когда с телефона слишком много попыток бронирования в окне
	ErrTooManyAttempts = fmt.Errorf("%w: abuseguard: too many booking attempts", domain.ErrRateLimited)

	// ErrEmptyPhone возвращается, когда телефон не передан
	ErrEmptyPhone = fmt.Errorf("%w: abuseguard: phone is required", domain.ErrValidation)
)
