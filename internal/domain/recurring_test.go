package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtSlotService/pkg/ptr"
	"github.com/m04kA/SMC-CourtSlotService/pkg/types"
)

func TestRecurringBooking_Occurrences(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, loc) // понедельник
	horizon := StartOfDay(now, loc).AddDate(0, 0, DefaultMaterializationHorizonDays)

	tests := []struct {
		name      string
		weekday   time.Weekday
		startTime string
		want      int
	}{
		{"same weekday later today", time.Monday, "20:00", 5},
		{"same weekday already passed", time.Monday, "09:00", 4},
		{"two days ahead", time.Wednesday, "20:00", 4},
		{"next day", time.Tuesday, "20:00", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &RecurringBooking{
				Weekday:   tt.weekday,
				StartTime: types.TimeString(tt.startTime),
				StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
			}

			got, err := b.Occurrences(now, horizon, loc)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
			for _, at := range got {
				assert.Equal(t, tt.weekday, at.Weekday())
				assert.True(t, at.After(now))
				assert.True(t, at.Before(horizon))
			}
		})
	}
}

func TestRecurringBooking_OccurrencesRespectsRange(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, loc)
	horizon := now.AddDate(0, 0, 30)

	b := &RecurringBooking{
		Weekday:   time.Thursday,
		StartTime: "18:00",
		StartDate: time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   ptr.Ptr(time.Date(2026, 3, 19, 0, 0, 0, 0, time.UTC)),
	}

	got, err := b.Occurrences(now, horizon, loc)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, time.Date(2026, 3, 12, 18, 0, 0, 0, loc), got[0])
	assert.Equal(t, time.Date(2026, 3, 19, 18, 0, 0, 0, loc), got[1])
}

func TestRecurringBooking_CoversDate(t *testing.T) {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	require.NoError(t, err)

	b := &RecurringBooking{
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   ptr.Ptr(time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)),
	}

	// 31 марта 22:00 по Буэнос-Айресу это уже 1 апреля по UTC
	assert.True(t, b.CoversDate(time.Date(2026, 3, 31, 22, 0, 0, 0, loc), loc))
	assert.False(t, b.CoversDate(time.Date(2026, 4, 1, 10, 0, 0, 0, loc), loc))
	assert.False(t, b.CoversDate(time.Date(2026, 2, 28, 10, 0, 0, 0, loc), loc))
}

func TestDateIn(t *testing.T) {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	require.NoError(t, err)

	date := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 5, 0, 0, 0, 0, loc), DateIn(date, loc))
	// StartOfDay пересчитывает момент в loc и попадает на предыдущий день
	assert.Equal(t, time.Date(2026, 3, 4, 0, 0, 0, 0, loc), StartOfDay(date, loc))
}
