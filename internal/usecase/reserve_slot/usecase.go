package reserve_slot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	slotRepo "github.com/m04kA/SMC-CourtSlotService/internal/infra/storage/slot"
	facilityClient "github.com/m04kA/SMC-CourtSlotService/internal/integrations/facilityservice"
	"github.com/m04kA/SMC-CourtSlotService/pkg/txmanager"
)

// UseCase use case бронирования слота клиентом
type UseCase struct {
	slotRepo       SlotRepository
	facilityClient FacilityServiceClient
	abuseGuard     AbuseGuard
	publisher      EventPublisher
	metrics        Metrics
	txManager      TransactionManager
	maxActiveSlots int
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	facilityClient FacilityServiceClient,
	abuseGuard AbuseGuard,
	publisher EventPublisher,
	metrics Metrics,
	txManager TransactionManager,
	maxActiveSlots int,
	logger Logger,
) *UseCase {
	if maxActiveSlots <= 0 {
		maxActiveSlots = domain.MaxActiveSlotsPerClient
	}
	return &UseCase{
		slotRepo:       slotRepo,
		facilityClient: facilityClient,
		abuseGuard:     abuseGuard,
		publisher:      publisher,
		metrics:        metrics,
		txManager:      txManager,
		maxActiveSlots: maxActiveSlots,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// Execute бронирует свободный слот.
// Статус, начало в будущем и лимит активных слотов клиента проверяются одной условной
// записью внутри сериализуемой транзакции, поэтому из двух конкурентных попыток успешна ровно одна.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("ReserveSlot: slot=%d, phone=%s, owner=%v", req.SlotID, req.Client.Phone, req.OwnerUserID)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("ReserveSlot: validation failed: %v", err)
		uc.metrics.ObserveReservation(resultRejected)
		return nil, err
	}

	// 2. Ограничение частоты попыток по телефону
	if err := uc.abuseGuard.Check(ctx, req.Client.Phone); err != nil {
		uc.logger.Warn("ReserveSlot: abuse guard rejected phone=%s: %v", req.Client.Phone, err)
		if errors.Is(err, domain.ErrRateLimited) {
			uc.metrics.ObserveReservation(resultRateLimited)
		} else {
			uc.metrics.ObserveReservation(resultRejected)
		}
		return nil, err
	}

	now := uc.timeProvider.Now()

	// 3. Получаем слот
	slot, err := uc.slotRepo.GetByID(ctx, req.SlotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			uc.logger.Warn("ReserveSlot: slot id=%d not found", req.SlotID)
			uc.metrics.ObserveReservation(resultRejected)
			return nil, ErrSlotNotFound
		}
		uc.logger.Error("ReserveSlot: failed to get slot id=%d: %v", req.SlotID, err)
		uc.metrics.ObserveReservation(resultError)
		return nil, fmt.Errorf("%w: failed to get slot: %v", ErrInternal, err)
	}
	if slot.Status != domain.SlotAvailable {
		uc.logger.Warn("ReserveSlot: slot id=%d is %s", slot.ID, slot.Status)
		uc.metrics.ObserveReservation(resultConflict)
		return nil, ErrSlotNotAvailable
	}
	if !slot.StartAt.After(now) {
		uc.logger.Warn("ReserveSlot: slot id=%d started at %s", slot.ID, slot.StartAt.Format(time.RFC3339))
		uc.metrics.ObserveReservation(resultRejected)
		return nil, ErrSlotInPast
	}

	// 4. Политика депозита площадки
	facility, err := uc.facilityClient.GetFacility(ctx, slot.FacilityID)
	if err != nil {
		if errors.Is(err, facilityClient.ErrFacilityNotFound) {
			uc.logger.Warn("ReserveSlot: facility id=%d not found", slot.FacilityID)
			uc.metrics.ObserveReservation(resultRejected)
			return nil, ErrFacilityNotFound
		}
		uc.logger.Error("ReserveSlot: failed to get facility id=%d: %v", slot.FacilityID, err)
		uc.metrics.ObserveReservation(resultError)
		return nil, fmt.Errorf("%w: failed to get facility: %v", ErrInternal, err)
	}

	event := domain.BookingEvent(facility.RequiresDeposit)
	client := req.Client
	upd := domain.SlotUpdate{
		Client:            &client,
		OwnerUserID:       req.OwnerUserID,
		ReservedAt:        &now,
		StartsAfter:       &now,
		MaxActivePerPhone: uc.maxActiveSlots,
	}
	if facility.RequiresDeposit {
		deposit := facility.DepositFor(slot.TotalPrice)
		deadline := expirationDeadline(now, facility.ReservationTTL(), slot.StartAt)
		upd.DepositAmount = &deposit
		upd.ExpiresAt = &deadline
	} else {
		upd.ConfirmedAt = &now
	}

	// 5. Условная запись в сериализуемой транзакции
	var reserved *domain.Slot
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		updated, err := uc.slotRepo.ApplyTransition(txCtx, slot.ID, event, upd, now)
		if err != nil {
			return err
		}
		reserved = updated
		return nil
	})
	if err != nil {
		return nil, uc.classifyFailure(ctx, slot.ID, req.Client.Phone, now, err)
	}

	// 6. Событие публикуется после фиксации транзакции
	topic := domain.TopicSlotConfirmed
	result := resultConfirmed
	if reserved.Status == domain.SlotReserved {
		topic = domain.TopicSlotReserved
		result = resultReserved
	}
	if err := uc.publisher.Publish(ctx, topic, domain.NewSlotChanged(reserved)); err != nil {
		uc.logger.Error("ReserveSlot: failed to publish %s for slot id=%d: %v", topic, reserved.ID, err)
	}
	uc.metrics.ObserveReservation(result)

	uc.logger.Info("ReserveSlot: slot id=%d is %s, deposit=%v, expires=%v",
		reserved.ID, reserved.Status, reserved.DepositAmount, reserved.ExpiresAt)

	return &Response{
		Slot:               reserved,
		RequiresDeposit:    facility.RequiresDeposit,
		DepositAmount:      reserved.DepositAmount,
		ExpirationDeadline: reserved.ExpiresAt,
	}, nil
}

// classifyFailure определяет причину неудачной условной записи, перечитывая слот
func (uc *UseCase) classifyFailure(ctx context.Context, slotID int64, phone string, now time.Time, err error) error {
	switch {
	case errors.Is(err, slotRepo.ErrConcurrentUpdate), errors.Is(err, txmanager.ErrSerialization):
		uc.logger.Warn("ReserveSlot: concurrent reservation of slot id=%d: %v", slotID, err)
		uc.metrics.ObserveReservation(resultConflict)
		return fmt.Errorf("%w: concurrent reservation", ErrSlotNotAvailable)
	case !errors.Is(err, slotRepo.ErrStateConflict):
		uc.logger.Error("ReserveSlot: failed to reserve slot id=%d: %v", slotID, err)
		uc.metrics.ObserveReservation(resultError)
		return fmt.Errorf("%w: failed to reserve slot: %v", ErrInternal, err)
	}

	current, getErr := uc.slotRepo.GetByID(ctx, slotID)
	if getErr != nil {
		uc.logger.Error("ReserveSlot: failed to re-read slot id=%d: %v", slotID, getErr)
		uc.metrics.ObserveReservation(resultConflict)
		return ErrSlotNotAvailable
	}
	if current.Status != domain.SlotAvailable {
		uc.logger.Warn("ReserveSlot: slot id=%d was taken, now %s", slotID, current.Status)
		uc.metrics.ObserveReservation(resultConflict)
		return ErrSlotNotAvailable
	}
	if !current.StartAt.After(now) {
		uc.metrics.ObserveReservation(resultRejected)
		return ErrSlotInPast
	}

	count, countErr := uc.slotRepo.CountActiveByPhone(ctx, phone)
	if countErr == nil && count >= uc.maxActiveSlots {
		uc.logger.Warn("ReserveSlot: phone=%s already holds %d active slots", phone, count)
		uc.metrics.ObserveReservation(resultConflict)
		return fmt.Errorf("%w: limit is %d", ErrTooManyActiveSlots, uc.maxActiveSlots)
	}

	uc.metrics.ObserveReservation(resultConflict)
	return ErrSlotNotAvailable
}
