package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-CourtSlotService/pkg/types"
)

var (
	// ErrInvalidTemplate is returned for schedule templates that fail validation
	ErrInvalidTemplate = fmt.Errorf("%w: invalid schedule template", ErrValidation)

	// ErrInvalidPriceRule is returned for price rules that fail validation
	ErrInvalidPriceRule = fmt.Errorf("%w: invalid price rule", ErrValidation)
)

// ScheduleTemplate is the weekly opening window of a court for one weekday.
// Unique by (CourtID, Weekday).
type ScheduleTemplate struct {
	ID                  int64
	CourtID             int64
	Weekday             time.Weekday
	StartTime           types.TimeString
	EndTime             types.TimeString
	SlotDurationMinutes int
	IsActive            bool
	HorizonDays         int
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Validate checks the template before it is stored
func (t *ScheduleTemplate) Validate() error {
	if t.CourtID <= 0 {
		return fmt.Errorf("%w: court_id must be positive", ErrInvalidTemplate)
	}
	if t.Weekday < time.Sunday || t.Weekday > time.Saturday {
		return fmt.Errorf("%w: weekday must be 0..6", ErrInvalidTemplate)
	}
	start, err := t.StartTime.Minutes()
	if err != nil {
		return fmt.Errorf("%w: start_time: %v", ErrInvalidTemplate, err)
	}
	end, err := t.EndTime.Minutes()
	if err != nil {
		return fmt.Errorf("%w: end_time: %v", ErrInvalidTemplate, err)
	}
	if end <= start {
		return fmt.Errorf("%w: end_time must be after start_time", ErrInvalidTemplate)
	}
	if t.SlotDurationMinutes < MinSlotDurationMinutes || t.SlotDurationMinutes > MaxSlotDurationMinutes {
		return fmt.Errorf("%w: slot duration must be between %d and %d minutes",
			ErrInvalidTemplate, MinSlotDurationMinutes, MaxSlotDurationMinutes)
	}
	if t.SlotDurationMinutes > end-start {
		return fmt.Errorf("%w: slot duration exceeds opening window", ErrInvalidTemplate)
	}
	if t.HorizonDays < MinHorizonDays || t.HorizonDays > MaxGenerationHorizonDays {
		return fmt.Errorf("%w: horizon must be between %d and %d days",
			ErrInvalidTemplate, MinHorizonDays, MaxGenerationHorizonDays)
	}
	return nil
}

// SlotCandidate is a slot start produced by a template for a concrete date
type SlotCandidate struct {
	StartAt         time.Time
	DurationMinutes int
}

// Candidates walks [StartTime, EndTime) in duration steps on date.
// Only increments that end at or before EndTime are returned.
func (t *ScheduleTemplate) Candidates(date time.Time, loc *time.Location) ([]SlotCandidate, error) {
	start, err := t.StartTime.Minutes()
	if err != nil {
		return nil, err
	}
	end, err := t.EndTime.Minutes()
	if err != nil {
		return nil, err
	}
	if t.SlotDurationMinutes <= 0 {
		return nil, errors.New("slot duration must be positive")
	}

	day := StartOfDay(date, loc)
	var out []SlotCandidate
	for m := start; m+t.SlotDurationMinutes <= end; m += t.SlotDurationMinutes {
		out = append(out, SlotCandidate{
			StartAt:         day.Add(time.Duration(m) * time.Minute),
			DurationMinutes: t.SlotDurationMinutes,
		})
	}
	return out, nil
}

// PriceRule is a per-weekday percentage applied to the court base price.
// Unique by (CourtID, Weekday).
type PriceRule struct {
	ID         int64
	CourtID    int64
	Weekday    time.Weekday
	Percentage int
	Note       *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Validate checks the rule before it is stored
func (r *PriceRule) Validate() error {
	if r.CourtID <= 0 {
		return fmt.Errorf("%w: court_id must be positive", ErrInvalidPriceRule)
	}
	if r.Weekday < time.Sunday || r.Weekday > time.Saturday {
		return fmt.Errorf("%w: weekday must be 0..6", ErrInvalidPriceRule)
	}
	if r.Percentage < MinPricePercentage || r.Percentage > MaxPricePercentage {
		return fmt.Errorf("%w: percentage must be between %d and %d",
			ErrInvalidPriceRule, MinPricePercentage, MaxPricePercentage)
	}
	if r.Note != nil && len(*r.Note) > MaxPriceRuleNoteLength {
		return fmt.Errorf("%w: note is too long", ErrInvalidPriceRule)
	}
	return nil
}

// SlotPrice applies the rule percentage (100 when rule is nil) to base, rounded to 2 decimals
func SlotPrice(base decimal.Decimal, rule *PriceRule) decimal.Decimal {
	pct := int64(DefaultPricePercentage)
	if rule != nil {
		pct = int64(rule.Percentage)
	}
	return base.Mul(decimal.NewFromInt(pct)).Div(decimal.NewFromInt(100)).Round(2)
}
