package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	priceRuleRepo "github.com/m04kA/SMC-CourtSlotService/internal/infra/storage/pricerule"
	scheduleRepo "github.com/m04kA/SMC-CourtSlotService/internal/infra/storage/schedule"
)

type courtWeekday struct {
	courtID int64
	weekday time.Weekday
}

// ── Schedule template repository ──

// ScheduleRepo in-memory аналог schedule.Repository
type ScheduleRepo struct {
	mu        sync.Mutex
	templates map[courtWeekday]*domain.ScheduleTemplate
	nextID    int64
}

// NewScheduleRepo создает пустой репозиторий шаблонов
func NewScheduleRepo() *ScheduleRepo {
	return &ScheduleRepo{templates: make(map[courtWeekday]*domain.ScheduleTemplate), nextID: 1}
}

func (r *ScheduleRepo) Upsert(_ context.Context, t *domain.ScheduleTemplate) (*domain.ScheduleTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := courtWeekday{t.CourtID, t.Weekday}
	cp := *t
	if existing, ok := r.templates[key]; ok {
		cp.ID = existing.ID
		cp.CreatedAt = existing.CreatedAt
	} else {
		cp.ID = r.nextID
		r.nextID++
	}
	r.templates[key] = &cp
	out := cp
	return &out, nil
}

func (r *ScheduleRepo) GetByCourt(_ context.Context, courtID int64) ([]*domain.ScheduleTemplate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.ScheduleTemplate
	for key, t := range r.templates {
		if key.courtID == courtID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Weekday < out[j].Weekday })
	return out, nil
}

func (r *ScheduleRepo) Delete(_ context.Context, courtID int64, weekday time.Weekday) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := courtWeekday{courtID, weekday}
	if _, ok := r.templates[key]; !ok {
		return scheduleRepo.ErrTemplateNotFound
	}
	delete(r.templates, key)
	return nil
}

func (r *ScheduleRepo) ListCourtIDsWithActive(_ context.Context) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[int64]bool)
	var ids []int64
	for key, t := range r.templates {
		if t.IsActive && !seen[key.courtID] {
			seen[key.courtID] = true
			ids = append(ids, key.courtID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

// ── Price rule repository ──

// PriceRuleRepo in-memory аналог pricerule.Repository
type PriceRuleRepo struct {
	mu     sync.Mutex
	rules  map[courtWeekday]*domain.PriceRule
	nextID int64
}

// NewPriceRuleRepo создает пустой репозиторий правил цены
func NewPriceRuleRepo() *PriceRuleRepo {
	return &PriceRuleRepo{rules: make(map[courtWeekday]*domain.PriceRule), nextID: 1}
}

func (r *PriceRuleRepo) Upsert(_ context.Context, rule *domain.PriceRule) (*domain.PriceRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := courtWeekday{rule.CourtID, rule.Weekday}
	cp := *rule
	if existing, ok := r.rules[key]; ok {
		cp.ID = existing.ID
	} else {
		cp.ID = r.nextID
		r.nextID++
	}
	r.rules[key] = &cp
	out := cp
	return &out, nil
}

func (r *PriceRuleRepo) GetByCourt(_ context.Context, courtID int64) (map[time.Weekday]*domain.PriceRule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[time.Weekday]*domain.PriceRule)
	for key, rule := range r.rules {
		if key.courtID == courtID {
			cp := *rule
			out[key.weekday] = &cp
		}
	}
	return out, nil
}

func (r *PriceRuleRepo) Delete(_ context.Context, courtID int64, weekday time.Weekday) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := courtWeekday{courtID, weekday}
	if _, ok := r.rules[key]; !ok {
		return priceRuleRepo.ErrRuleNotFound
	}
	delete(r.rules, key)
	return nil
}
