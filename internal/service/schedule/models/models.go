package models

import (
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	"github.com/m04kA/SMC-CourtSlotService/pkg/types"
)

// Request модели

// UpsertTemplateRequest запрос на создание или замену шаблона расписания корта на день недели
type UpsertTemplateRequest struct {
	UserID              int64        `json:"-"`
	CourtID             int64        `json:"-"`
	Weekday             time.Weekday `json:"-"`
	StartTime           string       `json:"startTime"`             // HH:MM
	EndTime             string       `json:"endTime"`               // HH:MM
	SlotDurationMinutes int          `json:"slotDurationMinutes"`   // 15, 30, 60, 90...
	IsActive            *bool        `json:"isActive,omitempty"`    // по умолчанию true
	HorizonDays         *int         `json:"horizonDays,omitempty"` // по умолчанию 14
}

// UpsertPriceRuleRequest запрос на создание или замену правила цены корта на день недели
type UpsertPriceRuleRequest struct {
	UserID     int64        `json:"-"`
	CourtID    int64        `json:"-"`
	Weekday    time.Weekday `json:"-"`
	Percentage int          `json:"percentage"` // 100 = базовая цена
	Note       *string      `json:"note,omitempty"`
}

// ToDomainTemplate конвертирует запрос в domain модель
func (r *UpsertTemplateRequest) ToDomainTemplate() *domain.ScheduleTemplate {
	t := &domain.ScheduleTemplate{
		CourtID:             r.CourtID,
		Weekday:             r.Weekday,
		StartTime:           types.TimeString(r.StartTime),
		EndTime:             types.TimeString(r.EndTime),
		SlotDurationMinutes: r.SlotDurationMinutes,
		IsActive:            true,
		HorizonDays:         domain.DefaultGenerationHorizonDays,
	}
	if r.IsActive != nil {
		t.IsActive = *r.IsActive
	}
	if r.HorizonDays != nil {
		t.HorizonDays = *r.HorizonDays
	}
	return t
}

// ToDomainRule конвертирует запрос в domain модель
func (r *UpsertPriceRuleRequest) ToDomainRule() *domain.PriceRule {
	return &domain.PriceRule{
		CourtID:    r.CourtID,
		Weekday:    r.Weekday,
		Percentage: r.Percentage,
		Note:       r.Note,
	}
}

// Response модели

// TemplateResponse шаблон расписания
type TemplateResponse struct {
	ID                  int64     `json:"id"`
	CourtID             int64     `json:"courtId"`
	Weekday             int       `json:"weekday"`
	StartTime           string    `json:"startTime"`
	EndTime             string    `json:"endTime"`
	SlotDurationMinutes int       `json:"slotDurationMinutes"`
	IsActive            bool      `json:"isActive"`
	HorizonDays         int       `json:"horizonDays"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// PriceRuleResponse правило цены
type PriceRuleResponse struct {
	ID         int64     `json:"id"`
	CourtID    int64     `json:"courtId"`
	Weekday    int       `json:"weekday"`
	Percentage int       `json:"percentage"`
	Note       *string   `json:"note,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CourtScheduleResponse недельное расписание корта вместе с правилами цены
type CourtScheduleResponse struct {
	CourtID    int64               `json:"courtId"`
	Templates  []TemplateResponse  `json:"templates"`
	PriceRules []PriceRuleResponse `json:"priceRules"`
}

// Методы конвертации

// FromDomainTemplate конвертирует domain модель в DTO
func FromDomainTemplate(t *domain.ScheduleTemplate) *TemplateResponse {
	if t == nil {
		return nil
	}
	return &TemplateResponse{
		ID:                  t.ID,
		CourtID:             t.CourtID,
		Weekday:             int(t.Weekday),
		StartTime:           t.StartTime.String(),
		EndTime:             t.EndTime.String(),
		SlotDurationMinutes: t.SlotDurationMinutes,
		IsActive:            t.IsActive,
		HorizonDays:         t.HorizonDays,
		UpdatedAt:           t.UpdatedAt,
	}
}

// FromDomainRule конвертирует domain модель в DTO
func FromDomainRule(r *domain.PriceRule) *PriceRuleResponse {
	if r == nil {
		return nil
	}
	return &PriceRuleResponse{
		ID:         r.ID,
		CourtID:    r.CourtID,
		Weekday:    int(r.Weekday),
		Percentage: r.Percentage,
		Note:       r.Note,
		UpdatedAt:  r.UpdatedAt,
	}
}
