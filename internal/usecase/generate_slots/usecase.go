package generate_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	facilityClient "github.com/m04kA/SMC-CourtSlotService/internal/integrations/facilityservice"
)

// batchSize ограничивает число строк в одном INSERT
const batchSize = 500

// UseCase use case генерации слотов по шаблонам расписания
type UseCase struct {
	slotRepo       SlotRepository
	scheduleRepo   ScheduleRepository
	priceRuleRepo  PriceRuleRepository
	facilityClient FacilityServiceClient
	metrics        Metrics
	defaultLoc     *time.Location
	maxHorizonDays int
	timeProvider   TimeProvider
	logger         Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	scheduleRepo ScheduleRepository,
	priceRuleRepo PriceRuleRepository,
	facilityClient FacilityServiceClient,
	metrics Metrics,
	defaultLoc *time.Location,
	maxHorizonDays int,
	logger Logger,
) *UseCase {
	if maxHorizonDays <= 0 || maxHorizonDays > domain.MaxGenerationHorizonDays {
		maxHorizonDays = domain.MaxGenerationHorizonDays
	}
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return &UseCase{
		slotRepo:       slotRepo,
		scheduleRepo:   scheduleRepo,
		priceRuleRepo:  priceRuleRepo,
		facilityClient: facilityClient,
		metrics:        metrics,
		defaultLoc:     defaultLoc,
		maxHorizonDays: maxHorizonDays,
		timeProvider:   &RealTimeProvider{},
		logger:         logger,
	}
}

// Execute создает недостающие слоты корта на горизонт вперед.
// Повторный запуск не создает дубликатов: уникальность (court_id, start_at) обеспечивает БД.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GenerateSlots: court=%d, daysAhead=%v", req.CourtID, req.DaysAhead)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GenerateSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем корт, генерация только для включенных
	court, err := uc.facilityClient.GetCourt(ctx, req.CourtID)
	if err != nil {
		if errors.Is(err, facilityClient.ErrCourtNotFound) {
			uc.logger.Warn("GenerateSlots: court id=%d not found", req.CourtID)
			return nil, ErrCourtNotFound
		}
		uc.logger.Error("GenerateSlots: failed to get court id=%d: %v", req.CourtID, err)
		return nil, fmt.Errorf("%w: failed to get court: %v", ErrInternal, err)
	}
	if !court.IsEnabled() {
		uc.logger.Warn("GenerateSlots: court id=%d is %s", court.ID, court.State)
		return nil, ErrCourtNotEnabled
	}

	// 3. Площадка нужна ради часового пояса и проверки прав
	facility, err := uc.facilityClient.GetFacility(ctx, court.FacilityID)
	if err != nil {
		if errors.Is(err, facilityClient.ErrFacilityNotFound) {
			uc.logger.Warn("GenerateSlots: facility id=%d not found", court.FacilityID)
			return nil, ErrFacilityNotFound
		}
		uc.logger.Error("GenerateSlots: failed to get facility id=%d: %v", court.FacilityID, err)
		return nil, fmt.Errorf("%w: failed to get facility: %v", ErrInternal, err)
	}
	if req.ActorID != nil && !facility.IsStaff(*req.ActorID) {
		uc.logger.Warn("GenerateSlots: user=%d is not staff of facility=%d", *req.ActorID, facility.ID)
		return nil, ErrAccessDenied
	}
	loc := facility.Location(uc.defaultLoc)

	// 4. Шаблоны и правила цены
	templates, err := uc.scheduleRepo.GetByCourt(ctx, court.ID)
	if err != nil {
		uc.logger.Error("GenerateSlots: failed to get templates for court=%d: %v", court.ID, err)
		return nil, fmt.Errorf("%w: failed to get templates: %v", ErrInternal, err)
	}
	rules, err := uc.priceRuleRepo.GetByCourt(ctx, court.ID)
	if err != nil {
		uc.logger.Error("GenerateSlots: failed to get price rules for court=%d: %v", court.ID, err)
		return nil, fmt.Errorf("%w: failed to get price rules: %v", ErrInternal, err)
	}

	// 5. Строим кандидатов
	now := uc.timeProvider.Now()
	slots, err := uc.buildSlots(court, facility, templates, rules, req.DaysAhead, now, loc)
	if err != nil {
		uc.logger.Error("GenerateSlots: failed to build slots for court=%d: %v", court.ID, err)
		return nil, fmt.Errorf("%w: failed to build slots: %v", ErrInternal, err)
	}

	// 6. Вставляем пачками, существующие слоты пропускаются
	var created int64
	for start := 0; start < len(slots); start += batchSize {
		end := start + batchSize
		if end > len(slots) {
			end = len(slots)
		}
		n, err := uc.slotRepo.InsertBatch(ctx, slots[start:end])
		if err != nil {
			uc.logger.Error("GenerateSlots: failed to insert slots for court=%d: %v", court.ID, err)
			return nil, fmt.Errorf("%w: failed to insert slots: %v", ErrInternal, err)
		}
		created += n
	}

	uc.metrics.AddSlotsCreated("generator", int(created))
	uc.logger.Info("GenerateSlots: court=%d, candidates=%d, created=%d", court.ID, len(slots), created)

	return &Response{CourtID: court.ID, Created: int(created)}, nil
}

// ExecuteAll обновляет горизонт для всех кортов с активными шаблонами.
// Ошибка по одному корту не прерывает обход.
func (uc *UseCase) ExecuteAll(ctx context.Context) (*SweepResult, error) {
	courtIDs, err := uc.scheduleRepo.ListCourtIDsWithActive(ctx)
	if err != nil {
		uc.logger.Error("GenerateSlotsSweep: failed to list courts: %v", err)
		return nil, fmt.Errorf("%w: failed to list courts: %v", ErrInternal, err)
	}

	result := &SweepResult{Courts: len(courtIDs)}
	for _, courtID := range courtIDs {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		resp, err := uc.Execute(ctx, &Request{CourtID: courtID})
		switch {
		case err == nil:
			result.Created += resp.Created
		case errors.Is(err, ErrCourtNotEnabled), errors.Is(err, ErrCourtNotFound):
			result.Skipped++
		default:
			uc.logger.Error("GenerateSlotsSweep: court=%d failed: %v", courtID, err)
			result.Failed++
		}
	}

	uc.logger.Info("GenerateSlotsSweep: courts=%d, created=%d, skipped=%d, failed=%d",
		result.Courts, result.Created, result.Skipped, result.Failed)
	return result, nil
}

// buildSlots раскладывает активные шаблоны по датам горизонта.
// Слоты, начало которых уже прошло, не создаются.
func (uc *UseCase) buildSlots(
	court *domain.Court,
	facility *domain.Facility,
	templates []*domain.ScheduleTemplate,
	rules map[time.Weekday]*domain.PriceRule,
	requested *int,
	now time.Time,
	loc *time.Location,
) ([]*domain.Slot, error) {
	byWeekday := make(map[time.Weekday]*domain.ScheduleTemplate, len(templates))
	maxDays := 0
	for _, t := range templates {
		if !t.IsActive {
			continue
		}
		byWeekday[t.Weekday] = t
		if days := horizonFor(requested, t.HorizonDays, uc.maxHorizonDays); days > maxDays {
			maxDays = days
		}
	}

	today := domain.StartOfDay(now, loc)
	var slots []*domain.Slot
	for d := 0; d < maxDays; d++ {
		date := today.AddDate(0, 0, d)
		tpl, ok := byWeekday[date.Weekday()]
		if !ok || d >= horizonFor(requested, tpl.HorizonDays, uc.maxHorizonDays) {
			continue
		}

		candidates, err := tpl.Candidates(date, loc)
		if err != nil {
			return nil, fmt.Errorf("template id=%d: %w", tpl.ID, err)
		}

		price := domain.SlotPrice(court.BasePrice, rules[tpl.Weekday])
		for _, c := range candidates {
			if !c.StartAt.After(now) {
				continue
			}
			slots = append(slots, &domain.Slot{
				CourtID:         court.ID,
				FacilityID:      facility.ID,
				StartAt:         c.StartAt,
				DurationMinutes: c.DurationMinutes,
				TotalPrice:      price,
				Status:          domain.SlotAvailable,
				CreatedAt:       now,
				UpdatedAt:       now,
			})
		}
	}
	return slots, nil
}
