package generate_slots

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	"github.com/m04kA/SMC-CourtSlotService/internal/testutil"
	"github.com/m04kA/SMC-CourtSlotService/pkg/ptr"
)

// понедельник, 09:30 UTC
var testNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

type fixture struct {
	uc         *UseCase
	slots      *testutil.SlotRepo
	schedule   *testutil.ScheduleRepo
	prices     *testutil.PriceRuleRepo
	facilities *testutil.Facilities
	metrics    *testutil.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		slots:      testutil.NewSlotRepo(),
		schedule:   testutil.NewScheduleRepo(),
		prices:     testutil.NewPriceRuleRepo(),
		facilities: testutil.NewFacilities(),
		metrics:    testutil.NewMetrics(),
	}
	f.facilities.AddFacility(&domain.Facility{ID: 1, Name: "Club", Timezone: "UTC"})
	f.facilities.AddCourt(&domain.Court{
		ID: 1, FacilityID: 1, SportID: 1, Name: "Cancha 1",
		BasePrice: decimal.NewFromInt(3000), State: domain.CourtEnabled,
	})

	_, err := f.schedule.Upsert(context.Background(), &domain.ScheduleTemplate{
		CourtID:             1,
		Weekday:             time.Monday,
		StartTime:           "08:00",
		EndTime:             "11:30",
		SlotDurationMinutes: 60,
		IsActive:            true,
		HorizonDays:         14,
	})
	require.NoError(t, err)

	f.uc = NewUseCase(f.slots, f.schedule, f.prices, f.facilities, f.metrics, time.UTC, 90, testutil.Logger())
	f.uc.timeProvider = testutil.NewClock(testNow)
	return f
}

func TestExecute_SkipsPastAndTrailingIncrements(t *testing.T) {
	f := newFixture(t)

	resp, err := f.uc.Execute(context.Background(), &Request{CourtID: 1})
	require.NoError(t, err)

	// сегодня остается только 10:00, через неделю 08:00, 09:00, 10:00
	assert.Equal(t, 4, resp.Created)
	assert.Equal(t, 4, f.metrics.SlotsCreated["generator"])

	slots := f.slots.All()
	require.Len(t, slots, 4)
	assert.Equal(t, time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC), slots[0].StartAt)
	assert.Equal(t, time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC), slots[1].StartAt)
	for _, s := range slots {
		assert.Equal(t, domain.SlotAvailable, s.Status)
		assert.Equal(t, 60, s.DurationMinutes)
		assert.True(t, s.TotalPrice.Equal(decimal.NewFromInt(3000)))
		assert.True(t, s.EndAt().Hour() <= 11)
	}
}

func TestExecute_Idempotent(t *testing.T) {
	f := newFixture(t)

	first, err := f.uc.Execute(context.Background(), &Request{CourtID: 1})
	require.NoError(t, err)
	second, err := f.uc.Execute(context.Background(), &Request{CourtID: 1})
	require.NoError(t, err)

	assert.Equal(t, 4, first.Created)
	assert.Equal(t, 0, second.Created)
	assert.Len(t, f.slots.All(), 4)
}

func TestExecute_AppliesPriceRule(t *testing.T) {
	f := newFixture(t)
	_, err := f.prices.Upsert(context.Background(), &domain.PriceRule{CourtID: 1, Weekday: time.Monday, Percentage: 150})
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), &Request{CourtID: 1})
	require.NoError(t, err)

	for _, s := range f.slots.All() {
		assert.True(t, s.TotalPrice.Equal(decimal.NewFromInt(4500)), "price %s", s.TotalPrice)
	}
}

func TestExecute_DaysAhead(t *testing.T) {
	tests := []struct {
		name      string
		daysAhead int
		expected  int
	}{
		{name: "only today", daysAhead: 1, expected: 1},
		{name: "capped at max horizon", daysAhead: 200, expected: 1 + 12*3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			resp, err := f.uc.Execute(context.Background(), &Request{CourtID: 1, DaysAhead: ptr.Ptr(tt.daysAhead)})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resp.Created)
		})
	}
}

func TestExecute_Errors(t *testing.T) {
	t.Run("court disabled", func(t *testing.T) {
		f := newFixture(t)
		f.facilities.SetCourtState(1, domain.CourtMaintenance)

		_, err := f.uc.Execute(context.Background(), &Request{CourtID: 1})
		assert.ErrorIs(t, err, ErrCourtNotEnabled)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Empty(t, f.slots.All())
	})

	t.Run("court not found", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Execute(context.Background(), &Request{CourtID: 42})
		assert.ErrorIs(t, err, ErrCourtNotFound)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("manual run by non staff", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Execute(context.Background(), &Request{CourtID: 1, ActorID: ptr.Ptr(int64(99))})
		assert.ErrorIs(t, err, ErrAccessDenied)
		assert.ErrorIs(t, err, domain.ErrForbidden)
		assert.Empty(t, f.slots.All())
	})

	t.Run("invalid days ahead", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.uc.Execute(context.Background(), &Request{CourtID: 1, DaysAhead: ptr.Ptr(0)})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("inactive template generates nothing", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.schedule.Upsert(context.Background(), &domain.ScheduleTemplate{
			CourtID: 1, Weekday: time.Monday, StartTime: "08:00", EndTime: "11:30",
			SlotDurationMinutes: 60, IsActive: false, HorizonDays: 14,
		})
		require.NoError(t, err)

		resp, err := f.uc.Execute(context.Background(), &Request{CourtID: 1})
		require.NoError(t, err)
		assert.Zero(t, resp.Created)
	})
}

func TestExecuteAll(t *testing.T) {
	f := newFixture(t)
	f.facilities.AddCourt(&domain.Court{
		ID: 2, FacilityID: 1, SportID: 1, BasePrice: decimal.NewFromInt(2000), State: domain.CourtDisabled,
	})
	_, err := f.schedule.Upsert(context.Background(), &domain.ScheduleTemplate{
		CourtID: 2, Weekday: time.Tuesday, StartTime: "18:00", EndTime: "20:00",
		SlotDurationMinutes: 60, IsActive: true, HorizonDays: 14,
	})
	require.NoError(t, err)

	result, err := f.uc.ExecuteAll(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Courts)
	assert.Equal(t, 4, result.Created)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.Failed)
}
