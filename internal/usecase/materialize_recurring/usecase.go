package materialize_recurring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	recurringRepo "github.com/m04kA/SMC-CourtSlotService/internal/infra/storage/recurring"
	slotRepo "github.com/m04kA/SMC-CourtSlotService/internal/infra/storage/slot"
	facilityClient "github.com/m04kA/SMC-CourtSlotService/internal/integrations/facilityservice"
)

// Settings параметры материализации
type Settings struct {
	Location    *time.Location // часовой пояс по умолчанию
	HorizonDays int
	DepositLead time.Duration // срок оплаты депозита до начала слота
}

// UseCase материализует постоянные брони в конкретные слоты на горизонт вперед
type UseCase struct {
	recurringRepo  RecurringRepository
	slotRepo       SlotRepository
	paymentRepo    PaymentRepository
	priceRuleRepo  PriceRuleRepository
	facilityClient FacilityServiceClient
	publisher      EventPublisher
	metrics        Metrics
	txManager      TransactionManager
	settings       Settings
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	recurringRepo RecurringRepository,
	slotRepo SlotRepository,
	paymentRepo PaymentRepository,
	priceRuleRepo PriceRuleRepository,
	facilityClient FacilityServiceClient,
	publisher EventPublisher,
	metrics Metrics,
	txManager TransactionManager,
	settings Settings,
	logger Logger,
) *UseCase {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.HorizonDays <= 0 {
		settings.HorizonDays = domain.DefaultMaterializationHorizonDays
	}
	if settings.DepositLead <= 0 {
		settings.DepositLead = domain.RecurringDepositLeadTime
	}
	return &UseCase{
		recurringRepo:  recurringRepo,
		slotRepo:       slotRepo,
		paymentRepo:    paymentRepo,
		priceRuleRepo:  priceRuleRepo,
		facilityClient: facilityClient,
		publisher:      publisher,
		metrics:        metrics,
		txManager:      txManager,
		settings:       settings,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// ExecuteAll обходит все активные брони, покрывающие сегодняшний день.
// Ошибка по одной брони логируется и не прерывает обход.
func (uc *UseCase) ExecuteAll(ctx context.Context) (*SweepResult, error) {
	now := uc.timeProvider.Now()
	today := domain.StartOfDay(now, uc.settings.Location)

	bookings, err := uc.recurringRepo.ListActiveForDate(ctx, today)
	if err != nil {
		uc.logger.Error("MaterializeRecurring: failed to list active bookings: %v", err)
		return nil, fmt.Errorf("%w: ListActiveForDate - repository error: %v", ErrInternal, err)
	}

	result := &SweepResult{}
	for _, b := range bookings {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		res, err := uc.MaterializeBooking(ctx, b)
		if err != nil {
			uc.logger.Error("MaterializeRecurring: booking id=%d failed: %v", b.ID, err)
			result.Failed++
			continue
		}

		result.Processed++
		result.Created += res.Created
		switch res.Outcome {
		case OutcomeReassigned:
			result.Reassigned++
		case OutcomeDeactivated:
			result.Deactivated++
		case OutcomeDeleted:
			result.Deleted++
		}
	}

	uc.logger.Info("MaterializeRecurring: processed=%d, created=%d, reassigned=%d, deactivated=%d, deleted=%d, failed=%d",
		result.Processed, result.Created, result.Reassigned, result.Deactivated, result.Deleted, result.Failed)
	return result, nil
}

// MaterializeBooking материализует одну бронь.
// Если корт брони выключен, бронь переносится на свободный корт того же спорта,
// деактивируется (все соседние корты заняты) или удаляется (других кортов нет).
func (uc *UseCase) MaterializeBooking(ctx context.Context, b *domain.RecurringBooking) (*BookingResult, error) {
	now := uc.timeProvider.Now()
	result := &BookingResult{RecurringBookingID: b.ID, Outcome: OutcomeMaterialized, CourtID: b.CourtID}

	court, err := uc.facilityClient.GetCourt(ctx, b.CourtID)
	if err != nil {
		if errors.Is(err, facilityClient.ErrCourtNotFound) {
			uc.logger.Warn("MaterializeRecurring: court id=%d of booking id=%d not found", b.CourtID, b.ID)
			return nil, ErrCourtNotFound
		}
		return nil, fmt.Errorf("%w: failed to get court: %v", ErrInternal, err)
	}

	facility, err := uc.facilityClient.GetFacility(ctx, court.FacilityID)
	if err != nil {
		if errors.Is(err, facilityClient.ErrFacilityNotFound) {
			uc.logger.Warn("MaterializeRecurring: facility id=%d not found", court.FacilityID)
			return nil, ErrFacilityNotFound
		}
		return nil, fmt.Errorf("%w: failed to get facility: %v", ErrInternal, err)
	}

	if !court.IsEnabled() {
		target, outcome, err := uc.remediate(ctx, b, court, now)
		if err != nil {
			return nil, err
		}
		result.Outcome = outcome
		if target == nil {
			return result, nil
		}
		court = target
		result.CourtID = target.ID
	}

	created, err := uc.materialize(ctx, b, court, facility, now)
	if err != nil {
		return nil, err
	}
	result.Created = created
	uc.metrics.AddSlotsCreated("recurring", created)

	uc.logger.Info("MaterializeRecurring: booking id=%d, court=%d, outcome=%s, created=%d",
		b.ID, court.ID, result.Outcome, created)
	return result, nil
}

// remediate обрабатывает бронь на выключенном корте.
// Возвращает новый корт при переносе или nil, если бронь деактивирована или удалена.
func (uc *UseCase) remediate(
	ctx context.Context,
	b *domain.RecurringBooking,
	court *domain.Court,
	now time.Time,
) (*domain.Court, Outcome, error) {
	courts, err := uc.facilityClient.ListCourts(ctx, court.FacilityID, court.SportID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: failed to list courts: %v", ErrInternal, err)
	}

	var siblings []*domain.Court
	for _, c := range courts {
		if c.ID != court.ID {
			siblings = append(siblings, c)
		}
	}

	// Других кортов этого спорта нет: бронь отменяется целиком
	if len(siblings) == 0 {
		detail := fmt.Sprintf("court %d is %s and the facility has no other court for the sport", court.ID, court.State)
		if err := uc.autoCancel(ctx, b, detail, now); err != nil {
			return nil, "", err
		}
		return nil, OutcomeDeleted, nil
	}

	for _, sibling := range siblings {
		if !sibling.IsEnabled() {
			continue
		}

		claimed, err := uc.recurringRepo.IsClaimed(ctx, sibling.ID, b.Weekday, b.StartTime)
		if err != nil {
			return nil, "", fmt.Errorf("%w: IsClaimed - repository error: %v", ErrInternal, err)
		}
		if claimed {
			continue
		}

		reassigned, err := uc.reassign(ctx, b, court, sibling, now)
		if err != nil {
			return nil, "", err
		}
		if reassigned {
			return sibling, OutcomeReassigned, nil
		}
	}

	// Все соседние корты заняты в это время
	detail := fmt.Sprintf("court %d is %s and no other court is free on %s at %s",
		court.ID, court.State, b.Weekday, b.StartTime)
	if err := uc.deactivate(ctx, b, detail, now); err != nil {
		return nil, "", err
	}
	return nil, OutcomeDeactivated, nil
}

// reassign переносит бронь на другой корт. Возвращает false, если корт успели занять.
// Будущие занятые слоты на старом корте отменяются вместе с их платежами,
// материализация затем создает их заново на новом корте.
func (uc *UseCase) reassign(
	ctx context.Context,
	b *domain.RecurringBooking,
	from, to *domain.Court,
	now time.Time,
) (bool, error) {
	detail := fmt.Sprintf("court %d is %s, moved to court %d", from.ID, from.State, to.ID)

	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := uc.recurringRepo.UpdateCourt(txCtx, b.ID, to.ID, now); err != nil {
			return err
		}

		cancelled, err := uc.slotRepo.CancelFutureByRecurring(txCtx, b.ID, now)
		if err != nil {
			return err
		}
		voided, err := uc.paymentRepo.VoidLive(txCtx, cancelled, domain.VoidReasonCourtReassigned, now)
		if err != nil {
			return err
		}
		if len(cancelled) > 0 {
			detail = fmt.Sprintf("%s; cancelled %d future slots, voided %d payments", detail, len(cancelled), voided)
		}

		return uc.recurringRepo.AppendHistory(txCtx, &domain.HistoryEntry{
			RecurringBookingID: b.ID,
			Action:             domain.HistoryCourtReassigned,
			Detail:             detail,
			CreatedAt:          now,
		})
	})
	if errors.Is(err, recurringRepo.ErrDuplicate) {
		uc.logger.Warn("MaterializeRecurring: court id=%d was claimed concurrently for booking id=%d", to.ID, b.ID)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: failed to reassign booking: %v", ErrInternal, err)
	}

	b.CourtID = to.ID
	uc.logger.Info("MaterializeRecurring: booking id=%d moved from court=%d to court=%d", b.ID, from.ID, to.ID)
	uc.publish(ctx, domain.TopicRecurringReassigned, domain.RecurringChanged{
		RecurringBookingID: b.ID,
		Action:             domain.HistoryCourtReassigned,
		CourtID:            to.ID,
		PreviousCourtID:    &from.ID,
		Detail:             detail,
	})
	return true, nil
}

func (uc *UseCase) deactivate(ctx context.Context, b *domain.RecurringBooking, detail string, now time.Time) error {
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := uc.recurringRepo.SetActive(txCtx, b.ID, false, now); err != nil {
			return err
		}
		return uc.recurringRepo.AppendHistory(txCtx, &domain.HistoryEntry{
			RecurringBookingID: b.ID,
			Action:             domain.HistoryAutoDeactivated,
			Detail:             detail,
			CreatedAt:          now,
		})
	})
	if err != nil {
		return fmt.Errorf("%w: failed to deactivate booking: %v", ErrInternal, err)
	}

	b.IsActive = false
	uc.logger.Warn("MaterializeRecurring: booking id=%d deactivated: %s", b.ID, detail)
	uc.publish(ctx, domain.TopicRecurringDeactivated, domain.RecurringChanged{
		RecurringBookingID: b.ID,
		Action:             domain.HistoryAutoDeactivated,
		CourtID:            b.CourtID,
		Detail:             detail,
	})
	return nil
}

func (uc *UseCase) autoCancel(ctx context.Context, b *domain.RecurringBooking, detail string, now time.Time) error {
	err := uc.txManager.Do(ctx, func(txCtx context.Context) error {
		cancelled, err := uc.slotRepo.CancelFutureByRecurring(txCtx, b.ID, now)
		if err != nil {
			return err
		}
		voided, err := uc.paymentRepo.VoidLive(txCtx, cancelled, domain.VoidReasonRecurringCancelled, now)
		if err != nil {
			return err
		}
		if err := uc.recurringRepo.AppendHistory(txCtx, &domain.HistoryEntry{
			RecurringBookingID: b.ID,
			Action:             domain.HistoryAutoCancelled,
			Detail:             fmt.Sprintf("%s; cancelled %d future slots, voided %d payments", detail, len(cancelled), voided),
			CreatedAt:          now,
		}); err != nil {
			return err
		}
		return uc.recurringRepo.Delete(txCtx, b.ID)
	})
	if err != nil {
		return fmt.Errorf("%w: failed to cancel booking: %v", ErrInternal, err)
	}

	uc.logger.Warn("MaterializeRecurring: booking id=%d cancelled: %s", b.ID, detail)
	uc.publish(ctx, domain.TopicRecurringAutoCanceled, domain.RecurringChanged{
		RecurringBookingID: b.ID,
		Action:             domain.HistoryAutoCancelled,
		CourtID:            b.CourtID,
		Detail:             detail,
	})
	return nil
}

// materialize создает слоты брони на горизонт. Существующий свободный слот, не привязанный
// к другой брони, присоединяется; остальные существующие слоты пропускаются.
func (uc *UseCase) materialize(
	ctx context.Context,
	b *domain.RecurringBooking,
	court *domain.Court,
	facility *domain.Facility,
	now time.Time,
) (int, error) {
	loc := facility.Location(uc.settings.Location)
	horizonEnd := domain.StartOfDay(now, loc).AddDate(0, 0, uc.settings.HorizonDays)

	starts, err := b.Occurrences(now, horizonEnd, loc)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to compute occurrences: %v", ErrInternal, err)
	}
	if len(starts) == 0 {
		return 0, nil
	}

	rules, err := uc.priceRuleRepo.GetByCourt(ctx, court.ID)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to get price rules: %v", ErrInternal, err)
	}
	price := domain.SlotPrice(court.BasePrice, rules[b.Weekday])
	event := domain.BookingEvent(b.RequiresDeposit)

	created := 0
	for _, startAt := range starts {
		client := b.Client
		slot := &domain.Slot{
			CourtID:            court.ID,
			FacilityID:         facility.ID,
			StartAt:            startAt,
			DurationMinutes:    b.DurationMinutes,
			TotalPrice:         price,
			Status:             event.Target(),
			Client:             &client,
			OwnerUserID:        b.OwnerUserID,
			ReservedAt:         &now,
			RecurringBookingID: &b.ID,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		uc.applyPaymentTerms(slot, facility, b.RequiresDeposit, now)

		_, inserted, err := uc.slotRepo.InsertIfAbsent(ctx, slot)
		if err != nil {
			return created, fmt.Errorf("%w: failed to insert slot: %v", ErrInternal, err)
		}
		if inserted {
			created++
			continue
		}

		claimed, err := uc.claim(ctx, b, slot, facility, event, now)
		if err != nil {
			return created, err
		}
		if claimed {
			created++
		}
	}

	return created, nil
}

// claim присоединяет к брони уже сгенерированный свободный слот
func (uc *UseCase) claim(
	ctx context.Context,
	b *domain.RecurringBooking,
	candidate *domain.Slot,
	facility *domain.Facility,
	event domain.SlotEvent,
	now time.Time,
) (bool, error) {
	existing, err := uc.slotRepo.GetByCourtAndStart(ctx, candidate.CourtID, candidate.StartAt)
	if err != nil {
		if errors.Is(err, slotRepo.ErrSlotNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("%w: failed to get existing slot: %v", ErrInternal, err)
	}
	// Отпущенное вхождение сохраняет ссылку на бронь и не присоединяется повторно
	if existing.Status != domain.SlotAvailable || existing.IsRecurring() {
		return false, nil
	}

	// Цена существующего слота зафиксирована при генерации
	existing.Client = candidate.Client
	existing.OwnerUserID = candidate.OwnerUserID
	existing.ReservedAt = candidate.ReservedAt
	uc.applyPaymentTerms(existing, facility, b.RequiresDeposit, now)

	_, err = uc.slotRepo.ApplyTransition(ctx, existing.ID, event, domain.SlotUpdate{
		Client:             existing.Client,
		OwnerUserID:        existing.OwnerUserID,
		DepositAmount:      existing.DepositAmount,
		ReservedAt:         existing.ReservedAt,
		ExpiresAt:          existing.ExpiresAt,
		ConfirmedAt:        existing.ConfirmedAt,
		RecurringBookingID: &b.ID,
		StartsAfter:        &now,
		RequireUnlinked:    true,
	}, now)
	if errors.Is(err, slotRepo.ErrStateConflict) || errors.Is(err, slotRepo.ErrConcurrentUpdate) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: failed to claim slot id=%d: %v", ErrInternal, existing.ID, err)
	}
	return true, nil
}

// applyPaymentTerms выставляет депозит и срок оплаты либо подтверждение.
// Срок оплаты - за DepositLead до начала; если он уже прошел, действует TTL площадки.
func (uc *UseCase) applyPaymentTerms(s *domain.Slot, facility *domain.Facility, requiresDeposit bool, now time.Time) {
	if !requiresDeposit {
		s.DepositAmount = nil
		s.ExpiresAt = nil
		s.ConfirmedAt = &now
		return
	}

	deposit := facility.DepositFor(s.TotalPrice)
	deadline := s.StartAt.Add(-uc.settings.DepositLead)
	if !deadline.After(now) {
		deadline = now.Add(facility.ReservationTTL())
		if deadline.After(s.StartAt) {
			deadline = s.StartAt
		}
	}
	s.DepositAmount = &deposit
	s.ExpiresAt = &deadline
	s.ConfirmedAt = nil
}

func (uc *UseCase) publish(ctx context.Context, topic string, payload any) {
	if err := uc.publisher.Publish(ctx, topic, payload); err != nil {
		uc.logger.Error("MaterializeRecurring: failed to publish %s: %v", topic, err)
	}
}
