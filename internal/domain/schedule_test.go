package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtSlotService/pkg/ptr"
)

func validTemplate() ScheduleTemplate {
	return ScheduleTemplate{
		CourtID:             1,
		Weekday:             time.Monday,
		StartTime:           "08:00",
		EndTime:             "12:00",
		SlotDurationMinutes: 60,
		IsActive:            true,
		HorizonDays:         14,
	}
}

func TestScheduleTemplate_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(t *ScheduleTemplate)
		wantErr bool
	}{
		{"valid", func(t *ScheduleTemplate) {}, false},
		{"end before start", func(t *ScheduleTemplate) { t.EndTime = "07:00" }, true},
		{"end equals start", func(t *ScheduleTemplate) { t.EndTime = "08:00" }, true},
		{"bad start format", func(t *ScheduleTemplate) { t.StartTime = "8am" }, true},
		{"duration too short", func(t *ScheduleTemplate) { t.SlotDurationMinutes = 5 }, true},
		{"duration longer than window", func(t *ScheduleTemplate) { t.SlotDurationMinutes = 300 }, true},
		{"horizon zero", func(t *ScheduleTemplate) { t.HorizonDays = 0 }, true},
		{"horizon over cap", func(t *ScheduleTemplate) { t.HorizonDays = 91 }, true},
		{"bad weekday", func(t *ScheduleTemplate) { t.Weekday = 7 }, true},
		{"end of day", func(t *ScheduleTemplate) { t.EndTime = "24:00" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := validTemplate()
			tt.modify(&tpl)
			err := tpl.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestScheduleTemplate_Candidates(t *testing.T) {
	loc := time.UTC
	date := time.Date(2026, 3, 2, 15, 0, 0, 0, loc) // понедельник

	tpl := validTemplate()
	tpl.EndTime = "11:30"
	tpl.SlotDurationMinutes = 60

	got, err := tpl.Candidates(date, loc)
	require.NoError(t, err)
	require.Len(t, got, 3) // 08, 09, 10; 11:00-12:00 не помещается

	assert.Equal(t, time.Date(2026, 3, 2, 8, 0, 0, 0, loc), got[0].StartAt)
	assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, loc), got[2].StartAt)
	assert.Equal(t, 60, got[1].DurationMinutes)
}

func TestSlotPrice(t *testing.T) {
	base := decimal.RequireFromString("3000")

	assert.True(t, SlotPrice(base, nil).Equal(decimal.RequireFromString("3000")))
	assert.True(t, SlotPrice(base, &PriceRule{Percentage: 150}).Equal(decimal.RequireFromString("4500")))
	assert.True(t, SlotPrice(decimal.RequireFromString("999.99"), &PriceRule{Percentage: 33}).
		Equal(decimal.RequireFromString("330")))
}

func TestPriceRule_Validate(t *testing.T) {
	assert.NoError(t, (&PriceRule{CourtID: 1, Weekday: time.Friday, Percentage: 1}).Validate())
	assert.NoError(t, (&PriceRule{CourtID: 1, Weekday: time.Friday, Percentage: 1000}).Validate())
	assert.ErrorIs(t, (&PriceRule{CourtID: 1, Weekday: time.Friday, Percentage: 0}).Validate(), ErrValidation)
	assert.ErrorIs(t, (&PriceRule{CourtID: 1, Weekday: time.Friday, Percentage: 1001}).Validate(), ErrValidation)

	long := make([]byte, MaxPriceRuleNoteLength+1)
	for i := range long {
		long[i] = 'x'
	}
	assert.ErrorIs(t, (&PriceRule{CourtID: 1, Percentage: 100, Note: ptr.Ptr(string(long))}).Validate(), ErrValidation)
}

func TestFacility_DepositFor(t *testing.T) {
	f := &Facility{DepositPercentage: 50}
	assert.True(t, f.DepositFor(decimal.RequireFromString("3000")).Equal(decimal.RequireFromString("1500")))

	f.DepositPercentage = 30
	assert.True(t, f.DepositFor(decimal.RequireFromString("1234.55")).Equal(decimal.RequireFromString("370.37")))
}

func TestFacility_IsStaff(t *testing.T) {
	f := &Facility{StaffUserIDs: []int64{10, 20}}
	assert.True(t, f.IsStaff(20))
	assert.False(t, f.IsStaff(30))
}
