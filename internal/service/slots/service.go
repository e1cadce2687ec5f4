package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	slotRepo "github.com/m04kA/SMC-CourtSlotService/internal/infra/storage/slot"
	facilityClient "github.com/m04kA/SMC-CourtSlotService/internal/integrations/facilityservice"
)

// maxAvailabilityRange максимальный диапазон запроса доступности
const maxAvailabilityRange = (domain.MaxGenerationHorizonDays + 1) * 24 * time.Hour

// Service сервис для работы со слотами после бронирования: просмотр, отмена, неявка, блокировка
type Service struct {
	slotRepo       SlotRepository
	paymentRepo    PaymentRepository
	facilityClient FacilityServiceClient
	publisher      EventPublisher
	txManager      TransactionManager
	location       *time.Location // часовой пояс площадок без своего пояса
	timeProvider   TimeProvider
	logger         Logger
}

// NewService создает новый экземпляр сервиса слотов
func NewService(
	slotRepo SlotRepository,
	paymentRepo PaymentRepository,
	facilityClient FacilityServiceClient,
	publisher EventPublisher,
	txManager TransactionManager,
	location *time.Location,
	logger Logger,
) *Service {
	if location == nil {
		location = time.UTC
	}
	return &Service{
		slotRepo:       slotRepo,
		paymentRepo:    paymentRepo,
		facilityClient: facilityClient,
		publisher:      publisher,
		txManager:      txManager,
		location:       location,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// GetByID получает слот по ID.
// Свободный или заблокированный слот виден всем, занятый - владельцу и персоналу площадки.
func (s *Service) GetByID(ctx context.Context, slotID int64, userID int64) (*domain.Slot, error) {
	s.logger.Info("GetByID: fetching slot id=%d for user=%d", slotID, userID)

	slot, err := s.getSlot(ctx, "GetByID", slotID)
	if err != nil {
		return nil, err
	}

	if slot.Client != nil {
		if err := s.checkOwnerOrStaff(ctx, slot, userID); err != nil {
			s.logger.Warn("GetByID: access denied for user=%d to slot id=%d", userID, slotID)
			return nil, err
		}
	}

	return slot, nil
}

// CheckAvailability возвращает свободные слоты корта, начинающиеся в [from, to)
func (s *Service) CheckAvailability(ctx context.Context, courtID int64, from, to time.Time) ([]*domain.Slot, error) {
	s.logger.Info("CheckAvailability: court=%d, from=%s, to=%s",
		courtID, from.Format(time.RFC3339), to.Format(time.RFC3339))

	if courtID <= 0 {
		return nil, fmt.Errorf("%w: courtID must be positive", ErrInvalidInput)
	}
	if !to.After(from) {
		return nil, fmt.Errorf("%w: range end must be after start", ErrInvalidInput)
	}
	if to.Sub(from) > maxAvailabilityRange {
		return nil, fmt.Errorf("%w: range must not exceed %d days", ErrInvalidInput, domain.MaxGenerationHorizonDays+1)
	}

	slots, err := s.slotRepo.ListAvailable(ctx, courtID, from, to)
	if err != nil {
		s.logger.Error("CheckAvailability: repository error for court=%d: %v", courtID, err)
		return nil, fmt.Errorf("%w: CheckAvailability - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("CheckAvailability: court=%d has %d free slots", courtID, len(slots))
	return slots, nil
}

// CheckAvailabilityByDays возвращает свободные слоты корта за дни [fromDay, toDay] включительно.
// Календарные даты отсчитываются в часовом поясе площадки корта.
func (s *Service) CheckAvailabilityByDays(
	ctx context.Context,
	courtID int64,
	fromDay, toDay time.Time,
) ([]*domain.Slot, error) {
	if courtID <= 0 {
		return nil, fmt.Errorf("%w: courtID must be positive", ErrInvalidInput)
	}

	court, err := s.facilityClient.GetCourt(ctx, courtID)
	if err != nil {
		if errors.Is(err, facilityClient.ErrCourtNotFound) {
			s.logger.Warn("CheckAvailabilityByDays: court id=%d not found", courtID)
			return nil, ErrCourtNotFound
		}
		s.logger.Error("CheckAvailabilityByDays: failed to get court id=%d: %v", courtID, err)
		return nil, fmt.Errorf("%w: CheckAvailabilityByDays - failed to get court: %v", ErrInternal, err)
	}

	facility, err := s.facilityClient.GetFacility(ctx, court.FacilityID)
	if err != nil {
		if errors.Is(err, facilityClient.ErrFacilityNotFound) {
			s.logger.Warn("CheckAvailabilityByDays: facility id=%d not found", court.FacilityID)
			return nil, ErrFacilityNotFound
		}
		s.logger.Error("CheckAvailabilityByDays: failed to get facility id=%d: %v", court.FacilityID, err)
		return nil, fmt.Errorf("%w: CheckAvailabilityByDays - failed to get facility: %v", ErrInternal, err)
	}

	loc := facility.Location(s.location)
	from := domain.DateIn(fromDay, loc)
	to := domain.DateIn(toDay, loc).AddDate(0, 0, 1)
	return s.CheckAvailability(ctx, courtID, from, to)
}

// Cancel отменяет бронь слота. Доступно владельцу и персоналу площадки.
// Живой платеж слота аннулируется.
func (s *Service) Cancel(ctx context.Context, slotID int64, userID int64) (*domain.Slot, error) {
	s.logger.Info("Cancel: cancelling slot id=%d by user=%d", slotID, userID)

	slot, err := s.getSlot(ctx, "Cancel", slotID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwnerOrStaff(ctx, slot, userID); err != nil {
		s.logger.Warn("Cancel: access denied for user=%d to slot id=%d", userID, slotID)
		return nil, err
	}

	cancelled, err := s.transition(ctx, "Cancel", slot, domain.EventCancel, domain.SlotUpdate{})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.TopicSlotCancelled, cancelled)
	return cancelled, nil
}

// CancelRecurringOccurrence освобождает одно вхождение постоянной брони.
// Слот возвращается в DISPONIBLE без данных клиента, ссылка на бронь сохраняется,
// поэтому материализатор не займет его повторно. Живой платеж аннулируется,
// и следующий клиент может отправить свой депозит.
func (s *Service) CancelRecurringOccurrence(ctx context.Context, slotID int64, userID int64) (*domain.Slot, error) {
	s.logger.Info("CancelRecurringOccurrence: releasing slot id=%d by user=%d", slotID, userID)

	slot, err := s.getSlot(ctx, "CancelRecurringOccurrence", slotID)
	if err != nil {
		return nil, err
	}
	if !slot.IsRecurring() {
		s.logger.Warn("CancelRecurringOccurrence: slot id=%d is not recurring", slotID)
		return nil, ErrNotRecurring
	}
	if err := s.checkOwnerOrStaff(ctx, slot, userID); err != nil {
		s.logger.Warn("CancelRecurringOccurrence: access denied for user=%d to slot id=%d", userID, slotID)
		return nil, err
	}

	released, err := s.transition(ctx, "CancelRecurringOccurrence", slot, domain.EventReleaseOccurrence, domain.SlotUpdate{})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, domain.TopicSlotCancelled, released)
	return released, nil
}

// MarkNoShow отмечает неявку клиента на подтвержденный слот, который уже начался.
// Доступно только персоналу площадки.
func (s *Service) MarkNoShow(ctx context.Context, slotID int64, userID int64) (*domain.Slot, error) {
	s.logger.Info("MarkNoShow: slot id=%d by user=%d", slotID, userID)

	slot, err := s.getSlot(ctx, "MarkNoShow", slotID)
	if err != nil {
		return nil, err
	}
	if err := s.checkStaff(ctx, slot.FacilityID, userID); err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	if !slot.StartAt.Before(now) {
		s.logger.Warn("MarkNoShow: slot id=%d starts at %s", slotID, slot.StartAt.Format(time.RFC3339))
		return nil, ErrNoShowTooEarly
	}

	return s.transition(ctx, "MarkNoShow", slot, domain.EventMarkNoShow, domain.SlotUpdate{StartsBefore: &now})
}

// Block блокирует свободный слот. Доступно только персоналу площадки.
func (s *Service) Block(ctx context.Context, slotID int64, userID int64) (*domain.Slot, error) {
	return s.staffTransition(ctx, "Block", slotID, userID, domain.EventBlock)
}

// Reopen возвращает заблокированный слот в продажу. Доступно только персоналу площадки.
func (s *Service) Reopen(ctx context.Context, slotID int64, userID int64) (*domain.Slot, error) {
	return s.staffTransition(ctx, "Reopen", slotID, userID, domain.EventReopen)
}

// Вспомогательные методы

func (s *Service) staffTransition(ctx context.Context, op string, slotID, userID int64, event domain.SlotEvent) (*domain.Slot, error) {
	s.logger.Info("%s: slot id=%d by user=%d", op, slotID, userID)

	slot, err := s.getSlot(ctx, op, slotID)
	if err != nil {
		return nil, err
	}
	if err := s.checkStaff(ctx, slot.FacilityID, userID); err != nil {
		return nil, err
	}

	return s.transition(ctx, op, slot, event, domain.SlotUpdate{})
}

// transition выполняет условный переход. Проверка по прочитанному статусу дает понятную ошибку,
// условная запись защищает от гонки между чтением и записью. Отмена и освобождение слота
// аннулируют его платеж в той же транзакции.
func (s *Service) transition(
	ctx context.Context,
	op string,
	slot *domain.Slot,
	event domain.SlotEvent,
	upd domain.SlotUpdate,
) (*domain.Slot, error) {
	if !slot.Can(event) {
		s.logger.Warn("%s: slot id=%d is %s, %s not allowed", op, slot.ID, slot.Status, event)
		return nil, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, event, slot.Status)
	}

	now := s.timeProvider.Now()
	var (
		updated *domain.Slot
		voided  int64
	)
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		updated, err = s.slotRepo.ApplyTransition(txCtx, slot.ID, event, upd, now)
		if err != nil {
			return err
		}
		if !event.VoidsPayment() {
			return nil
		}
		voided, err = s.paymentRepo.VoidLive(txCtx, []int64{slot.ID}, voidReason(event), now)
		return err
	})
	if err != nil {
		if errors.Is(err, slotRepo.ErrStateConflict) || errors.Is(err, slotRepo.ErrConcurrentUpdate) {
			s.logger.Warn("%s: slot id=%d changed concurrently", op, slot.ID)
			return nil, fmt.Errorf("%w: slot changed concurrently", ErrInvalidTransition)
		}
		s.logger.Error("%s: transaction failed for slot id=%d: %v", op, slot.ID, err)
		return nil, fmt.Errorf("%w: %s - transaction failed: %v", ErrInternal, op, err)
	}

	if voided > 0 {
		s.logger.Info("%s: voided %d payments of slot id=%d", op, voided, slot.ID)
	}
	s.logger.Info("%s: slot id=%d moved %s -> %s", op, slot.ID, slot.Status, updated.Status)
	return updated, nil
}

func voidReason(event domain.SlotEvent) string {
	if event == domain.EventReleaseOccurrence {
		return domain.VoidReasonOccurrenceReleased
	}
	return domain.VoidReasonSlotCancelled
}

func (s *Service) getSlot(ctx context.Context, op string, slotID int64) (*domain.Slot, error) {
	if slotID <= 0 {
		return nil, fmt.Errorf("%w: slotID must be positive", ErrInvalidInput)
	}

	slot, err := s.slotRepo.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			s.logger.Warn("%s: slot id=%d not found", op, slotID)
			return nil, ErrSlotNotFound
		}
		s.logger.Error("%s: repository error for slot id=%d: %v", op, slotID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return slot, nil
}

// checkOwnerOrStaff проверяет, что пользователь владелец слота или персонал площадки
func (s *Service) checkOwnerOrStaff(ctx context.Context, slot *domain.Slot, userID int64) error {
	if slot.IsOwnedBy(userID) {
		return nil
	}
	return s.checkStaff(ctx, slot.FacilityID, userID)
}

// checkStaff проверяет, что пользователь входит в персонал площадки
func (s *Service) checkStaff(ctx context.Context, facilityID int64, userID int64) error {
	facility, err := s.facilityClient.GetFacility(ctx, facilityID)
	if err != nil {
		if errors.Is(err, facilityClient.ErrFacilityNotFound) {
			s.logger.Warn("checkStaff: facility id=%d not found", facilityID)
			return ErrFacilityNotFound
		}
		s.logger.Error("checkStaff: failed to get facility id=%d: %v", facilityID, err)
		return fmt.Errorf("%w: checkStaff - failed to get facility: %v", ErrInternal, err)
	}

	if !facility.IsStaff(userID) {
		s.logger.Warn("checkStaff: user=%d is not staff of facility=%d", userID, facilityID)
		return ErrAccessDenied
	}
	return nil
}

func (s *Service) publish(ctx context.Context, topic string, slot *domain.Slot) {
	if err := s.publisher.Publish(ctx, topic, domain.NewSlotChanged(slot)); err != nil {
		s.logger.Error("publish: failed to publish %s for slot id=%d: %v", topic, slot.ID, err)
	}
}
