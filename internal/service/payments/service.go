package payments

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	paymentRepo "github.com/m04kA/SMC-CourtSlotService/internal/infra/storage/payment"
	slotRepo "github.com/m04kA/SMC-CourtSlotService/internal/infra/storage/slot"
	facilityClient "github.com/m04kA/SMC-CourtSlotService/internal/integrations/facilityservice"
	"github.com/m04kA/SMC-CourtSlotService/pkg/txmanager"
)

// Service журнал платежей: подтверждение, одобрение и отклонение депозита
type Service struct {
	paymentRepo    PaymentRepository
	slotRepo       SlotRepository
	facilityClient FacilityServiceClient
	publisher      EventPublisher
	txManager      TransactionManager
	timeProvider   TimeProvider
	logger         Logger
}

// NewService создает новый экземпляр сервиса платежей
func NewService(
	paymentRepo PaymentRepository,
	slotRepo SlotRepository,
	facilityClient FacilityServiceClient,
	publisher EventPublisher,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		paymentRepo:    paymentRepo,
		slotRepo:       slotRepo,
		facilityClient: facilityClient,
		publisher:      publisher,
		txManager:      txManager,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// SubmitProof регистрирует подтверждение оплаты депозита и переводит слот в SENA_ENVIADA.
// Платеж и переход слота пишутся в одной транзакции.
func (s *Service) SubmitProof(ctx context.Context, req *SubmitRequest) (*Result, error) {
	if err := validateSubmit(req); err != nil {
		s.logger.Warn("SubmitProof: validation failed: %v", err)
		return nil, err
	}

	s.logger.Info("SubmitProof: slot id=%d, method=%s, amount=%s", req.SlotID, req.Method, req.Amount.String())

	slot, err := s.getSlot(ctx, "SubmitProof", req.SlotID)
	if err != nil {
		return nil, err
	}

	facility, err := s.getFacility(ctx, "SubmitProof", slot.FacilityID)
	if err != nil {
		return nil, err
	}
	// Слот без владельца забронирован персоналом, подтверждение отправляет только персонал
	if !slot.IsOwnedBy(req.UserID) && !facility.IsStaff(req.UserID) {
		s.logger.Warn("SubmitProof: access denied for user=%d to slot id=%d", req.UserID, slot.ID)
		return nil, ErrAccessDenied
	}
	if !facility.RequiresDeposit {
		s.logger.Warn("SubmitProof: facility id=%d does not require deposit", facility.ID)
		return nil, ErrDepositNotRequired
	}

	now := s.timeProvider.Now()
	if slot.Status != domain.SlotReserved || slot.IsExpired(now) {
		s.logger.Warn("SubmitProof: slot id=%d is %s", slot.ID, slot.Status)
		return nil, ErrSlotNotReserved
	}

	deposit := facility.DepositFor(slot.TotalPrice)
	if slot.DepositAmount != nil {
		deposit = *slot.DepositAmount
	}
	if !req.Amount.Equal(deposit) {
		s.logger.Warn("SubmitProof: slot id=%d expects %s, got %s", slot.ID, deposit.String(), req.Amount.String())
		return nil, fmt.Errorf("%w: expected %s", ErrAmountMismatch, deposit.StringFixed(2))
	}

	var result Result
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		payment, err := s.paymentRepo.Create(txCtx, &domain.PaymentRecord{
			SlotID:      slot.ID,
			Amount:      req.Amount,
			Method:      req.Method,
			Status:      domain.PaymentSubmitted,
			ProofURL:    req.ProofURL,
			SubmittedAt: &now,
		})
		if err != nil {
			return err
		}

		updated, err := s.slotRepo.ApplyTransition(txCtx, slot.ID, domain.EventSubmitDeposit, domain.SlotUpdate{}, now)
		if err != nil {
			return err
		}

		result = Result{Payment: payment, Slot: updated}
		return nil
	})
	if err != nil {
		return nil, s.mapTxError("SubmitProof", slot.ID, err)
	}

	s.publish(ctx, domain.TopicPaymentSubmitted, result.Payment)
	s.logger.Info("SubmitProof: payment id=%d submitted for slot id=%d", result.Payment.ID, slot.ID)
	return &result, nil
}

// Approve одобряет депозит и подтверждает слот. Доступно только персоналу площадки.
func (s *Service) Approve(ctx context.Context, paymentID int64, userID int64) (*Result, error) {
	s.logger.Info("Approve: payment id=%d by user=%d", paymentID, userID)

	payment, slot, err := s.loadForValidation(ctx, "Approve", paymentID, userID)
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	var result Result
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		approved, err := s.paymentRepo.Transition(txCtx, payment.ID,
			domain.PaymentSubmitted, domain.PaymentApproved, nil, &userID, now)
		if err != nil {
			return err
		}

		updated, err := s.slotRepo.ApplyTransition(txCtx, slot.ID, domain.EventApproveDeposit,
			domain.SlotUpdate{ConfirmedAt: &now}, now)
		if err != nil {
			return err
		}

		result = Result{Payment: approved, Slot: updated}
		return nil
	})
	if err != nil {
		return nil, s.mapTxError("Approve", slot.ID, err)
	}

	if err := s.publisher.Publish(ctx, domain.TopicSlotConfirmed, domain.NewSlotChanged(result.Slot)); err != nil {
		s.logger.Error("Approve: failed to publish %s for slot id=%d: %v", domain.TopicSlotConfirmed, slot.ID, err)
	}
	s.logger.Info("Approve: payment id=%d approved, slot id=%d confirmed", payment.ID, slot.ID)
	return &result, nil
}

// Reject отклоняет депозит и возвращает слот в продажу без данных клиента.
// Доступно только персоналу площадки.
func (s *Service) Reject(ctx context.Context, paymentID int64, userID int64, reason string) (*Result, error) {
	s.logger.Info("Reject: payment id=%d by user=%d", paymentID, userID)

	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(reason) > domain.MaxRejectionReasonLength {
		return nil, fmt.Errorf("%w: rejection reason must not exceed %d characters",
			ErrInvalidInput, domain.MaxRejectionReasonLength)
	}

	payment, slot, err := s.loadForValidation(ctx, "Reject", paymentID, userID)
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	var result Result
	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		rejected, err := s.paymentRepo.Transition(txCtx, payment.ID,
			domain.PaymentSubmitted, domain.PaymentRejected, &reason, &userID, now)
		if err != nil {
			return err
		}

		updated, err := s.slotRepo.ApplyTransition(txCtx, slot.ID, domain.EventRejectDeposit, domain.SlotUpdate{}, now)
		if err != nil {
			return err
		}

		result = Result{Payment: rejected, Slot: updated}
		return nil
	})
	if err != nil {
		return nil, s.mapTxError("Reject", slot.ID, err)
	}

	s.publish(ctx, domain.TopicPaymentRejected, result.Payment)
	s.logger.Info("Reject: payment id=%d rejected, slot id=%d released", payment.ID, slot.ID)
	return &result, nil
}

// Вспомогательные методы

func validateSubmit(req *SubmitRequest) error {
	if req == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidInput)
	}
	if req.SlotID <= 0 {
		return fmt.Errorf("%w: slotID must be positive", ErrInvalidInput)
	}
	if !req.Method.IsValid() {
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, req.Method)
	}
	if req.Method == domain.PaymentCash {
		return ErrCashNotAllowed
	}
	if !req.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if req.ProofURL != nil && len(*req.ProofURL) > maxProofURLLength {
		return fmt.Errorf("%w: proof url must not exceed %d characters", ErrInvalidInput, maxProofURLLength)
	}
	return nil
}

// loadForValidation получает платеж и его слот и проверяет, что пользователь из персонала площадки
func (s *Service) loadForValidation(ctx context.Context, op string, paymentID, userID int64) (*domain.PaymentRecord, *domain.Slot, error) {
	if paymentID <= 0 {
		return nil, nil, fmt.Errorf("%w: paymentID must be positive", ErrInvalidInput)
	}

	payment, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, paymentRepo.ErrPaymentNotFound) {
			s.logger.Warn("%s: payment id=%d not found", op, paymentID)
			return nil, nil, ErrPaymentNotFound
		}
		s.logger.Error("%s: repository error for payment id=%d: %v", op, paymentID, err)
		return nil, nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	if payment.Status != domain.PaymentSubmitted {
		s.logger.Warn("%s: payment id=%d is %s", op, paymentID, payment.Status)
		return nil, nil, ErrPaymentNotSubmitted
	}

	slot, err := s.getSlot(ctx, op, payment.SlotID)
	if err != nil {
		return nil, nil, err
	}

	facility, err := s.getFacility(ctx, op, slot.FacilityID)
	if err != nil {
		return nil, nil, err
	}
	if !facility.IsStaff(userID) {
		s.logger.Warn("%s: user=%d is not staff of facility=%d", op, userID, facility.ID)
		return nil, nil, ErrAccessDenied
	}

	return payment, slot, nil
}

func (s *Service) getSlot(ctx context.Context, op string, slotID int64) (*domain.Slot, error) {
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

// mapTxError переводит ошибки транзакции в ошибки сервиса
func (s *Service) mapTxError(op string, slotID int64, err error) error {
	switch {
	case errors.Is(err, paymentRepo.ErrPaymentExists):
		s.logger.Warn("%s: slot id=%d already has a live payment", op, slotID)
		return ErrAlreadySubmitted
	case errors.Is(err, paymentRepo.ErrStatusConflict):
		s.logger.Warn("%s: payment for slot id=%d changed concurrently", op, slotID)
		return ErrPaymentNotSubmitted
	case errors.Is(err, slotRepo.ErrStateConflict),
		errors.Is(err, slotRepo.ErrConcurrentUpdate),
		errors.Is(err, txmanager.ErrSerialization):
		s.logger.Warn("%s: slot id=%d changed concurrently: %v", op, slotID, err)
		return ErrSlotNotReserved
	default:
		s.logger.Error("%s: transaction failed for slot id=%d: %v", op, slotID, err)
		return fmt.Errorf("%w: %s - transaction failed: %v", ErrInternal, op, err)
	}
}

func (s *Service) publish(ctx context.Context, topic string, p *domain.PaymentRecord) {
	ev := domain.PaymentChanged{
		PaymentID: p.ID,
		SlotID:    p.SlotID,
		Status:    p.Status,
		Method:    p.Method,
		Amount:    p.Amount,
		Reason:    p.RejectionReason,
	}
	if err := s.publisher.Publish(ctx, topic, ev); err != nil {
		s.logger.Error("publish: failed to publish %s for payment id=%d: %v", topic, p.ID, err)
	}
}
