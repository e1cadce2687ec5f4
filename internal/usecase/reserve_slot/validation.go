package reserve_slot

import (
	"fmt"
	"time"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.SlotID <= 0 {
		return fmt.Errorf("%w: slotID must be positive", ErrInvalidInput)
	}

	if err := req.Client.Normalize(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return nil
}

// expirationDeadline срок оплаты депозита: TTL площадки, но не позже начала слота
func expirationDeadline(now time.Time, ttl time.Duration, startAt time.Time) time.Time {
	deadline := now.Add(ttl)
	if deadline.After(startAt) {
		return startAt
	}
	return deadline
}
