package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	priceRuleRepo "github.com/m04kA/SMC-CourtSlotService/internal/infra/storage/pricerule"
	scheduleRepo "github.com/m04kA/SMC-CourtSlotService/internal/infra/storage/schedule"
	facilityClient "github.com/m04kA/SMC-CourtSlotService/internal/integrations/facilityservice"
	"github.com/m04kA/SMC-CourtSlotService/internal/service/schedule/models"
)

// Service сервис для работы с недельным расписанием кортов и правилами цены.
// Изменения действуют только на слоты, созданные после них.
type Service struct {
	scheduleRepo   ScheduleRepository
	priceRuleRepo  PriceRuleRepository
	facilityClient FacilityServiceClient
	logger         Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(
	scheduleRepo ScheduleRepository,
	priceRuleRepo PriceRuleRepository,
	facilityClient FacilityServiceClient,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo:   scheduleRepo,
		priceRuleRepo:  priceRuleRepo,
		facilityClient: facilityClient,
		logger:         logger,
	}
}

// UpsertTemplate создает или заменяет шаблон расписания корта на день недели.
// Доступно только персоналу площадки.
func (s *Service) UpsertTemplate(ctx context.Context, req *models.UpsertTemplateRequest) (*models.TemplateResponse, error) {
	s.logger.Info("UpsertTemplate: court=%d, weekday=%d by user=%d", req.CourtID, req.Weekday, req.UserID)

	// 1. Валидируем шаблон до обращения к внешним сервисам
	template := req.ToDomainTemplate()
	if err := template.Validate(); err != nil {
		s.logger.Warn("UpsertTemplate: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	// 2. Проверяем права доступа (только персонал площадки корта)
	if err := s.checkStaff(ctx, "UpsertTemplate", req.CourtID, req.UserID); err != nil {
		return nil, err
	}

	// 3. Сохраняем шаблон
	saved, err := s.scheduleRepo.Upsert(ctx, template)
	if err != nil {
		s.logger.Error("UpsertTemplate: repository error for court=%d: %v", req.CourtID, err)
		return nil, fmt.Errorf("%w: UpsertTemplate - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpsertTemplate: saved template id=%d for court=%d, weekday=%d", saved.ID, saved.CourtID, saved.Weekday)
	return models.FromDomainTemplate(saved), nil
}

// DeleteTemplate удаляет шаблон расписания. Уже созданные слоты не меняются.
// Доступно только персоналу площадки.
func (s *Service) DeleteTemplate(ctx context.Context, courtID int64, weekday time.Weekday, userID int64) error {
	s.logger.Info("DeleteTemplate: court=%d, weekday=%d by user=%d", courtID, weekday, userID)

	if err := validateKey(courtID, weekday); err != nil {
		return err
	}
	if err := s.checkStaff(ctx, "DeleteTemplate", courtID, userID); err != nil {
		return err
	}

	if err := s.scheduleRepo.Delete(ctx, courtID, weekday); err != nil {
		if errors.Is(err, scheduleRepo.ErrTemplateNotFound) {
			s.logger.Warn("DeleteTemplate: template for court=%d, weekday=%d not found", courtID, weekday)
			return ErrTemplateNotFound
		}
		s.logger.Error("DeleteTemplate: repository error for court=%d: %v", courtID, err)
		return fmt.Errorf("%w: DeleteTemplate - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeleteTemplate: deleted template for court=%d, weekday=%d", courtID, weekday)
	return nil
}

// UpsertPriceRule создает или заменяет правило цены корта на день недели.
// Доступно только персоналу площадки.
func (s *Service) UpsertPriceRule(ctx context.Context, req *models.UpsertPriceRuleRequest) (*models.PriceRuleResponse, error) {
	s.logger.Info("UpsertPriceRule: court=%d, weekday=%d, percentage=%d by user=%d",
		req.CourtID, req.Weekday, req.Percentage, req.UserID)

	rule := req.ToDomainRule()
	if err := rule.Validate(); err != nil {
		s.logger.Warn("UpsertPriceRule: validation failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.checkStaff(ctx, "UpsertPriceRule", req.CourtID, req.UserID); err != nil {
		return nil, err
	}

	saved, err := s.priceRuleRepo.Upsert(ctx, rule)
	if err != nil {
		s.logger.Error("UpsertPriceRule: repository error for court=%d: %v", req.CourtID, err)
		return nil, fmt.Errorf("%w: UpsertPriceRule - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpsertPriceRule: saved rule id=%d for court=%d, weekday=%d", saved.ID, saved.CourtID, saved.Weekday)
	return models.FromDomainRule(saved), nil
}

// DeletePriceRule удаляет правило цены, день недели возвращается к базовой цене.
// Доступно только персоналу площадки.
func (s *Service) DeletePriceRule(ctx context.Context, courtID int64, weekday time.Weekday, userID int64) error {
	s.logger.Info("DeletePriceRule: court=%d, weekday=%d by user=%d", courtID, weekday, userID)

	if err := validateKey(courtID, weekday); err != nil {
		return err
	}
	if err := s.checkStaff(ctx, "DeletePriceRule", courtID, userID); err != nil {
		return err
	}

	if err := s.priceRuleRepo.Delete(ctx, courtID, weekday); err != nil {
		if errors.Is(err, priceRuleRepo.ErrRuleNotFound) {
			s.logger.Warn("DeletePriceRule: rule for court=%d, weekday=%d not found", courtID, weekday)
			return ErrPriceRuleNotFound
		}
		s.logger.Error("DeletePriceRule: repository error for court=%d: %v", courtID, err)
		return fmt.Errorf("%w: DeletePriceRule - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("DeletePriceRule: deleted rule for court=%d, weekday=%d", courtID, weekday)
	return nil
}

// ListTemplates возвращает недельное расписание корта и правила цены.
// Публичный метод - доступен всем.
func (s *Service) ListTemplates(ctx context.Context, courtID int64) (*models.CourtScheduleResponse, error) {
	s.logger.Info("ListTemplates: fetching schedule for court=%d", courtID)

	if courtID <= 0 {
		return nil, fmt.Errorf("%w: courtID must be positive", ErrInvalidInput)
	}

	templates, err := s.scheduleRepo.GetByCourt(ctx, courtID)
	if err != nil {
		s.logger.Error("ListTemplates: repository error for court=%d: %v", courtID, err)
		return nil, fmt.Errorf("%w: ListTemplates - repository error: %v", ErrInternal, err)
	}

	rules, err := s.priceRuleRepo.GetByCourt(ctx, courtID)
	if err != nil {
		s.logger.Error("ListTemplates: price rule repository error for court=%d: %v", courtID, err)
		return nil, fmt.Errorf("%w: ListTemplates - repository error: %v", ErrInternal, err)
	}

	resp := &models.CourtScheduleResponse{
		CourtID:    courtID,
		Templates:  make([]models.TemplateResponse, 0, len(templates)),
		PriceRules: make([]models.PriceRuleResponse, 0, len(rules)),
	}
	for _, t := range templates {
		resp.Templates = append(resp.Templates, *models.FromDomainTemplate(t))
	}
	for _, r := range rules {
		resp.PriceRules = append(resp.PriceRules, *models.FromDomainRule(r))
	}
	sort.Slice(resp.PriceRules, func(i, j int) bool { return resp.PriceRules[i].Weekday < resp.PriceRules[j].Weekday })

	s.logger.Info("ListTemplates: court=%d has %d templates and %d price rules",
		courtID, len(resp.Templates), len(resp.PriceRules))
	return resp, nil
}

// Вспомогательные методы

func validateKey(courtID int64, weekday time.Weekday) error {
	if courtID <= 0 {
		return fmt.Errorf("%w: courtID must be positive", ErrInvalidInput)
	}
	if weekday < time.Sunday || weekday > time.Saturday {
		return fmt.Errorf("%w: weekday must be between 0 and 6", ErrInvalidInput)
	}
	return nil
}

// checkStaff проверяет, что пользователь входит в персонал площадки, которой принадлежит корт
func (s *Service) checkStaff(ctx context.Context, op string, courtID int64, userID int64) error {
	court, err := s.facilityClient.GetCourt(ctx, courtID)
	if err != nil {
		if errors.Is(err, facilityClient.ErrCourtNotFound) {
			s.logger.Warn("%s: court id=%d not found", op, courtID)
			return ErrCourtNotFound
		}
		s.logger.Error("%s: failed to get court id=%d: %v", op, courtID, err)
		return fmt.Errorf("%w: failed to get court: %v", ErrInternal, err)
	}

	facility, err := s.facilityClient.GetFacility(ctx, court.FacilityID)
	if err != nil {
		if errors.Is(err, facilityClient.ErrFacilityNotFound) {
			s.logger.Warn("%s: facility id=%d not found", op, court.FacilityID)
			return ErrFacilityNotFound
		}
		s.logger.Error("%s: failed to get facility id=%d: %v", op, court.FacilityID, err)
		return fmt.Errorf("%w: failed to get facility: %v", ErrInternal, err)
	}

	if !facility.IsStaff(userID) {
		s.logger.Warn("%s: user=%d is not staff of facility=%d", op, userID, facility.ID)
		return ErrAccessDenied
	}
	return nil
}
