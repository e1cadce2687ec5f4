package payments

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

var (
	// ErrPaymentNotFound возвращается, когда платеж не найден
	ErrPaymentNotFound = fmt.Errorf("%w: payment not found", domain.ErrNotFound)

	// ErrSlotNotFound возвращается, когда слот платежа не найден
	ErrSlotNotFound = fmt.Errorf("%w: slot not found", domain.ErrNotFound)

	// ErrFacilityNotFound возвращается, когда площадка слота не найдена
	ErrFacilityNotFound = fmt.Errorf("%w: facility not found", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда у пользователя нет прав на операцию
	ErrAccessDenied = fmt.Errorf("%w: access denied", domain.ErrForbidden)

	// ErrDepositNotRequired возвращается, когда площадка не требует депозит
	ErrDepositNotRequired = fmt.Errorf("%w: facility does not require a deposit", domain.ErrValidation)

	// ErrCashNotAllowed возвращается при попытке подтвердить депозит наличными
	ErrCashNotAllowed = fmt.Errorf("%w: cash is not accepted as deposit proof", domain.ErrValidation)

	// ErrAmountMismatch возвращается, когда сумма не совпадает с депозитом слота
	ErrAmountMismatch = fmt.Errorf("%w: amount does not match the slot deposit", domain.ErrValidation)

	// ErrAlreadySubmitted возвращается, когда для слота уже есть неотклоненный платеж
	ErrAlreadySubmitted = fmt.Errorf("%w: payment already submitted for slot", domain.ErrConflict)

	// ErrSlotNotReserved возвращается, когда слот не ожидает депозит
	ErrSlotNotReserved = fmt.Errorf("%w: slot is not awaiting a deposit", domain.ErrConflict)

	// ErrPaymentNotSubmitted возвращается, когда платеж не ожидает проверки
	ErrPaymentNotSubmitted = fmt.Errorf("%w: payment is not awaiting validation", domain.ErrConflict)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("%w: invalid input data", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
