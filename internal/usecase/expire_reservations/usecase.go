package expire_reservations

import (
	"context"
	"fmt"
)

// UseCase переводит неоплаченные брони с истекшим сроком в EXPIRADO
type UseCase struct {
	slotRepo     SlotRepository
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(slotRepo SlotRepository, logger Logger) *UseCase {
	return &UseCase{
		slotRepo:     slotRepo,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Execute выполняет один проход. Идемпотентен: повторный запуск ничего не меняет.
// Слоты в SENA_ENVIADA не трогаются, их судьбу решает проверка платежа.
func (uc *UseCase) Execute(ctx context.Context) (int, error) {
	now := uc.timeProvider.Now()

	expired, err := uc.slotRepo.ExpireOverdue(ctx, now)
	if err != nil {
		uc.logger.Error("ExpireReservations: failed to expire reservations: %v", err)
		return 0, fmt.Errorf("%w: ExpireOverdue - repository error: %v", ErrInternal, err)
	}

	if expired > 0 {
		uc.logger.Info("ExpireReservations: expired %d reservations", expired)
	}
	return int(expired), nil
}
