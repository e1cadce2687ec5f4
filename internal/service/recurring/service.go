package recurring

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	recurringRepo "github.com/m04kA/SMC-CourtSlotService/internal/infra/storage/recurring"
	facilityClient "github.com/m04kA/SMC-CourtSlotService/internal/integrations/facilityservice"
	"github.com/m04kA/SMC-CourtSlotService/pkg/ptr"
)

// Service сервис управления постоянными бронями
type Service struct {
	recurringRepo  RecurringRepository
	slotRepo       SlotRepository
	paymentRepo    PaymentRepository
	facilityClient FacilityServiceClient
	materializer   Materializer
	txManager      TransactionManager
	timeProvider   TimeProvider
	logger         Logger
}

// NewService создает новый экземпляр сервиса постоянных броней
func NewService(
	recurringRepo RecurringRepository,
	slotRepo SlotRepository,
	paymentRepo PaymentRepository,
	facilityClient FacilityServiceClient,
	materializer Materializer,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		recurringRepo:  recurringRepo,
		slotRepo:       slotRepo,
		paymentRepo:    paymentRepo,
		facilityClient: facilityClient,
		materializer:   materializer,
		txManager:      txManager,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// Create создает постоянную бронь и сразу материализует ее на горизонт.
// Ошибка материализации не отменяет создание: ночной обход повторит попытку.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*CreateResponse, error) {
	startTime, err := validateCreate(req)
	if err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	s.logger.Info("Create: court=%d, weekday=%d, start=%s by user=%d",
		req.CourtID, req.Weekday, startTime, req.ActorID)

	court, err := s.facilityClient.GetCourt(ctx, req.CourtID)
	if err != nil {
		if errors.Is(err, facilityClient.ErrCourtNotFound) {
			s.logger.Warn("Create: court id=%d not found", req.CourtID)
			return nil, ErrCourtNotFound
		}
		s.logger.Error("Create: failed to get court id=%d: %v", req.CourtID, err)
		return nil, fmt.Errorf("%w: Create - failed to get court: %v", ErrInternal, err)
	}
	if !court.IsEnabled() {
		s.logger.Warn("Create: court id=%d is %s", court.ID, court.State)
		return nil, ErrCourtNotEnabled
	}

	facility, err := s.getFacility(ctx, "Create", court.FacilityID)
	if err != nil {
		return nil, err
	}
	if !facility.AllowsRecurring {
		s.logger.Warn("Create: facility id=%d does not allow recurring bookings", facility.ID)
		return nil, ErrRecurringNotAllowed
	}

	owner := req.ActorID
	if req.OwnerUserID != nil {
		owner = *req.OwnerUserID
	}
	if owner != req.ActorID && !facility.IsStaff(req.ActorID) {
		s.logger.Warn("Create: user=%d may not book for user=%d", req.ActorID, owner)
		return nil, ErrAccessDenied
	}

	requiresDeposit := facility.RequiresDeposit
	if req.RequiresDeposit != nil {
		requiresDeposit = *req.RequiresDeposit
	}

	now := s.timeProvider.Now()
	booking := &domain.RecurringBooking{
		CourtID:         court.ID,
		FacilityID:      court.FacilityID,
		Weekday:         req.Weekday,
		StartTime:       startTime,
		DurationMinutes: req.DurationMinutes,
		IsActive:        true,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		RequiresDeposit: requiresDeposit,
		OwnerUserID:     ptr.Ptr(owner),
		Client:          req.Client,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var created *domain.RecurringBooking
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		b, err := s.recurringRepo.Create(txCtx, booking)
		if err != nil {
			return err
		}
		created = b
		return s.recurringRepo.AppendHistory(txCtx, &domain.HistoryEntry{
			RecurringBookingID: b.ID,
			Action:             domain.HistoryCreated,
			Detail:             fmt.Sprintf("court %d, weekday %d, %s", b.CourtID, b.Weekday, b.StartTime),
			ActorID:            ptr.Ptr(req.ActorID),
			CreatedAt:          now,
		})
	})
	if err != nil {
		if errors.Is(err, recurringRepo.ErrDuplicate) {
			s.logger.Warn("Create: court=%d weekday=%d start=%s already claimed", req.CourtID, req.Weekday, startTime)
			return nil, ErrAlreadyExists
		}
		s.logger.Error("Create: failed to create recurring booking: %v", err)
		return nil, fmt.Errorf("%w: Create - repository error: %v", ErrInternal, err)
	}

	resp := &CreateResponse{Booking: created}
	result, err := s.materializer.MaterializeBooking(ctx, created)
	if err != nil {
		s.logger.Error("Create: materialization of recurring id=%d failed: %v", created.ID, err)
	} else {
		resp.Materialized = result.Created
	}

	s.logger.Info("Create: recurring id=%d created, %d slots materialized", created.ID, resp.Materialized)
	return resp, nil
}

// Pause приостанавливает бронь. Уже созданные слоты не меняются.
func (s *Service) Pause(ctx context.Context, id int64, actorID int64) (*domain.RecurringBooking, error) {
	s.logger.Info("Pause: recurring id=%d by user=%d", id, actorID)

	b, err := s.getAuthorized(ctx, "Pause", id, actorID)
	if err != nil {
		return nil, err
	}
	if !b.IsActive {
		s.logger.Warn("Pause: recurring id=%d is already paused", id)
		return nil, fmt.Errorf("%w: already paused", ErrInvalidState)
	}

	if err := s.setActive(ctx, "Pause", b, false, domain.HistoryPaused, actorID); err != nil {
		return nil, err
	}
	return b, nil
}

// Reactivate возобновляет бронь и сразу материализует недостающие слоты
func (s *Service) Reactivate(ctx context.Context, id int64, actorID int64) (*domain.RecurringBooking, error) {
	s.logger.Info("Reactivate: recurring id=%d by user=%d", id, actorID)

	b, err := s.getAuthorized(ctx, "Reactivate", id, actorID)
	if err != nil {
		return nil, err
	}
	if b.IsActive {
		s.logger.Warn("Reactivate: recurring id=%d is already active", id)
		return nil, fmt.Errorf("%w: already active", ErrInvalidState)
	}

	if err := s.setActive(ctx, "Reactivate", b, true, domain.HistoryReactivated, actorID); err != nil {
		return nil, err
	}

	if _, err := s.materializer.MaterializeBooking(ctx, b); err != nil {
		s.logger.Error("Reactivate: materialization of recurring id=%d failed: %v", id, err)
	}
	return b, nil
}

// Cancel полностью отменяет бронь: будущие слоты отменяются, строка брони удаляется,
// история сохраняется
func (s *Service) Cancel(ctx context.Context, id int64, actorID int64) (*CancelResponse, error) {
	s.logger.Info("Cancel: recurring id=%d by user=%d", id, actorID)

	b, err := s.getAuthorized(ctx, "Cancel", id, actorID)
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	resp := &CancelResponse{RecurringBookingID: b.ID}
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		cancelled, err := s.slotRepo.CancelFutureByRecurring(txCtx, b.ID, now)
		if err != nil {
			return err
		}
		resp.CancelledSlots = int64(len(cancelled))

		voided, err := s.paymentRepo.VoidLive(txCtx, cancelled, domain.VoidReasonRecurringCancelled, now)
		if err != nil {
			return err
		}

		if err := s.recurringRepo.AppendHistory(txCtx, &domain.HistoryEntry{
			RecurringBookingID: b.ID,
			Action:             domain.HistoryCancelled,
			Detail:             fmt.Sprintf("%d future slots cancelled, %d payments voided", len(cancelled), voided),
			ActorID:            ptr.Ptr(actorID),
			CreatedAt:          now,
		}); err != nil {
			return err
		}

		return s.recurringRepo.Delete(txCtx, b.ID)
	})
	if err != nil {
		if errors.Is(err, recurringRepo.ErrRecurringNotFound) {
			return nil, ErrRecurringNotFound
		}
		s.logger.Error("Cancel: failed to cancel recurring id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: Cancel - transaction failed: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: recurring id=%d removed, %d slots cancelled", id, resp.CancelledSlots)
	return resp, nil
}

// History возвращает историю брони. История доступна и после удаления брони.
func (s *Service) History(ctx context.Context, id int64, actorID int64) ([]*domain.HistoryEntry, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	}

	b, err := s.recurringRepo.GetByID(ctx, id)
	switch {
	case errors.Is(err, recurringRepo.ErrRecurringNotFound):
		b = nil
	case err != nil:
		s.logger.Error("History: repository error for recurring id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: History - repository error: %v", ErrInternal, err)
	}
	if b != nil {
		if err := s.checkOwnerOrStaff(ctx, "History", b, actorID); err != nil {
			return nil, err
		}
	}

	entries, err := s.recurringRepo.ListHistory(ctx, id)
	if err != nil {
		s.logger.Error("History: repository error for recurring id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: History - repository error: %v", ErrInternal, err)
	}
	if len(entries) == 0 && b == nil {
		s.logger.Warn("History: recurring id=%d not found", id)
		return nil, ErrRecurringNotFound
	}

	return entries, nil
}

// Вспомогательные методы

func (s *Service) setActive(
	ctx context.Context,
	op string,
	b *domain.RecurringBooking,
	active bool,
	action domain.HistoryAction,
	actorID int64,
) error {
	now := s.timeProvider.Now()
	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := s.recurringRepo.SetActive(txCtx, b.ID, active, now); err != nil {
			return err
		}
		return s.recurringRepo.AppendHistory(txCtx, &domain.HistoryEntry{
			RecurringBookingID: b.ID,
			Action:             action,
			ActorID:            ptr.Ptr(actorID),
			CreatedAt:          now,
		})
	})
	if err != nil {
		if errors.Is(err, recurringRepo.ErrRecurringNotFound) {
			return ErrRecurringNotFound
		}
		s.logger.Error("%s: failed to update recurring id=%d: %v", op, b.ID, err)
		return fmt.Errorf("%w: %s - transaction failed: %v", ErrInternal, op, err)
	}

	b.IsActive = active
	b.UpdatedAt = now
	s.logger.Info("%s: recurring id=%d active=%t", op, b.ID, active)
	return nil
}

func (s *Service) getAuthorized(ctx context.Context, op string, id, actorID int64) (*domain.RecurringBooking, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive", ErrInvalidInput)
	}

	b, err := s.recurringRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, recurringRepo.ErrRecurringNotFound) {
			s.logger.Warn("%s: recurring id=%d not found", op, id)
			return nil, ErrRecurringNotFound
		}
		s.logger.Error("%s: repository error for recurring id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}

	if err := s.checkOwnerOrStaff(ctx, op, b, actorID); err != nil {
		return nil, err
	}
	return b, nil
}

// checkOwnerOrStaff проверяет, что пользователь владелец брони или персонал площадки
func (s *Service) checkOwnerOrStaff(ctx context.Context, op string, b *domain.RecurringBooking, actorID int64) error {
	if b.OwnerUserID != nil && *b.OwnerUserID == actorID {
		return nil
	}

	facility, err := s.getFacility(ctx, op, b.FacilityID)
	if err != nil {
		return err
	}
	if !facility.IsStaff(actorID) {
		s.logger.Warn("%s: access denied for user=%d to recurring id=%d", op, actorID, b.ID)
		return ErrAccessDenied
	}
	return nil
}

func (s *Service) getFacility(ctx context.Context, op string, facilityID int64) (*domain.Facility, error) {
	facility, err := s.facilityClient.GetFacility(ctx, facilityID)
	if err != nil {
		if errors.Is(err, facilityClient.ErrFacilityNotFound) {
			s.logger.Warn("%s: facility id=%d not found", op, facilityID)
			return nil, ErrFacilityNotFound
		}
		s.logger.Error("%s: failed to get facility id=%d: %v", op, facilityID, err)
		return nil, fmt.Errorf("%w: %s - failed to get facility: %v", ErrInternal, op, err)
	}
	return facility, nil
}
