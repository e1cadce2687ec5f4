package materialize_recurring

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

// понедельник, 09:00 UTC
var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fixture struct {
	uc         *UseCase
	recurring  *testutil.RecurringRepo
	slots      *testutil.SlotRepo
	payments   *testutil.PaymentRepo
	prices     *testutil.PriceRuleRepo
	facilities *testutil.Facilities
	publisher  *testutil.Publisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		recurring:  testutil.NewRecurringRepo(),
		slots:      testutil.NewSlotRepo(),
		payments:   testutil.NewPaymentRepo(),
		prices:     testutil.NewPriceRuleRepo(),
		facilities: testutil.NewFacilities(),
		publisher:  &testutil.Publisher{},
	}
	f.facilities.AddFacility(&domain.Facility{
		ID:                1,
		RequiresDeposit:   true,
		DepositPercentage: 50,
		ExpirationMinutes: 60,
		AllowsRecurring:   true,
		Timezone:          "UTC",
	})
	f.facilities.AddCourt(&domain.Court{
		ID: 1, FacilityID: 1, SportID: 1, BasePrice: decimal.NewFromInt(3000), State: domain.CourtEnabled,
	})

	f.uc = NewUseCase(f.recurring, f.slots, f.payments, f.prices, f.facilities, f.publisher, testutil.NewMetrics(),
		&testutil.TxManager{}, Settings{Location: time.UTC, HorizonDays: 30, DepositLead: 24 * time.Hour},
		testutil.Logger())
	f.uc.timeProvider = testutil.NewClock(testNow)
	return f
}

func (f *fixture) addBooking(t *testing.T, courtID int64, requiresDeposit bool) *domain.RecurringBooking {
	t.Helper()
	b, err := f.recurring.Create(context.Background(), &domain.RecurringBooking{
		CourtID:         courtID,
		FacilityID:      1,
		Weekday:         time.Monday,
		StartTime:       "12:00",
		DurationMinutes: 60,
		IsActive:        true,
		StartDate:       time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		RequiresDeposit: requiresDeposit,
		OwnerUserID:     ptr.Ptr(int64(7)),
		Client:          domain.ClientInfo{Name: "Ana", Surname: "Gomez", Phone: "1144440000"},
	})
	require.NoError(t, err)
	return b
}

func monday(day int) time.Time {
	return time.Date(2026, 3, day, 12, 0, 0, 0, time.UTC)
}

func TestExecuteAll_MaterializesHorizon(t *testing.T) {
	f := newFixture(t)
	b := f.addBooking(t, 1, true)

	result, err := f.uc.ExecuteAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Processed)
	assert.Equal(t, 5, result.Created)

	slots := f.slots.All()
	require.Len(t, slots, 5)
	for i, s := range slots {
		assert.Equal(t, monday(2+7*i), s.StartAt)
		assert.Equal(t, domain.SlotReserved, s.Status)
		require.NotNil(t, s.RecurringBookingID)
		assert.Equal(t, b.ID, *s.RecurringBookingID)
		require.NotNil(t, s.Client)
		assert.Equal(t, "1144440000", s.Client.Phone)
		require.NotNil(t, s.DepositAmount)
		assert.True(t, s.DepositAmount.Equal(decimal.NewFromInt(1500)))
	}

	// для сегодняшнего слота срок start-24h уже прошел, действует TTL площадки
	require.NotNil(t, slots[0].ExpiresAt)
	assert.Equal(t, testNow.Add(time.Hour), *slots[0].ExpiresAt)
	require.NotNil(t, slots[1].ExpiresAt)
	assert.Equal(t, monday(9).Add(-24*time.Hour), *slots[1].ExpiresAt)
}

func TestExecuteAll_Idempotent(t *testing.T) {
	f := newFixture(t)
	f.addBooking(t, 1, true)

	_, err := f.uc.ExecuteAll(context.Background())
	require.NoError(t, err)
	second, err := f.uc.ExecuteAll(context.Background())
	require.NoError(t, err)

	assert.Zero(t, second.Created)
	assert.Len(t, f.slots.All(), 5)
}

func TestExecuteAll_PricedByCurrentRule(t *testing.T) {
	f := newFixture(t)
	f.addBooking(t, 1, false)
	_, err := f.prices.Upsert(context.Background(), &domain.PriceRule{CourtID: 1, Weekday: time.Monday, Percentage: 80})
	require.NoError(t, err)

	_, err = f.uc.ExecuteAll(context.Background())
	require.NoError(t, err)

	for _, s := range f.slots.All() {
		assert.True(t, s.TotalPrice.Equal(decimal.NewFromInt(2400)))
		assert.Equal(t, domain.SlotConfirmed, s.Status)
		assert.Nil(t, s.DepositAmount)
		assert.Nil(t, s.ExpiresAt)
		require.NotNil(t, s.ConfirmedAt)
	}
}

func TestExecuteAll_ExistingSlots(t *testing.T) {
	f := newFixture(t)
	b := f.addBooking(t, 1, true)

	generated := f.slots.Put(&domain.Slot{
		CourtID: 1, FacilityID: 1, StartAt: monday(9), DurationMinutes: 60,
		TotalPrice: decimal.NewFromInt(2000), Status: domain.SlotAvailable,
	})
	released := f.slots.Put(&domain.Slot{
		CourtID: 1, FacilityID: 1, StartAt: monday(16), DurationMinutes: 60,
		TotalPrice: decimal.NewFromInt(3000), Status: domain.SlotAvailable, RecurringBookingID: ptr.Ptr(b.ID),
	})
	walkIn := f.slots.Put(&domain.Slot{
		CourtID: 1, FacilityID: 1, StartAt: monday(23), DurationMinutes: 60,
		TotalPrice: decimal.NewFromInt(3000), Status: domain.SlotConfirmed,
		Client: &domain.ClientInfo{Name: "X", Surname: "Y", Phone: "999"},
	})

	result, err := f.uc.ExecuteAll(context.Background())
	require.NoError(t, err)
	// 2 и 30 марта созданы, 9 марта присоединен
	assert.Equal(t, 3, result.Created)

	claimed, err := f.slots.GetByID(context.Background(), generated)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotReserved, claimed.Status)
	require.NotNil(t, claimed.RecurringBookingID)
	assert.Equal(t, b.ID, *claimed.RecurringBookingID)
	assert.True(t, claimed.TotalPrice.Equal(decimal.NewFromInt(2000)))
	require.NotNil(t, claimed.DepositAmount)
	assert.True(t, claimed.DepositAmount.Equal(decimal.NewFromInt(1000)))

	stillFree, err := f.slots.GetByID(context.Background(), released)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotAvailable, stillFree.Status)
	assert.Nil(t, stillFree.Client)

	untouched, err := f.slots.GetByID(context.Background(), walkIn)
	require.NoError(t, err)
	assert.Equal(t, "999", untouched.Client.Phone)
	assert.Nil(t, untouched.RecurringBookingID)
}

func TestExecuteAll_CourtDisabled(t *testing.T) {
	t.Run("reassigned to free sibling", func(t *testing.T) {
		f := newFixture(t)
		b := f.addBooking(t, 1, true)
		f.facilities.SetCourtState(1, domain.CourtMaintenance)
		f.facilities.AddCourt(&domain.Court{
			ID: 2, FacilityID: 1, SportID: 1, BasePrice: decimal.NewFromInt(3000), State: domain.CourtEnabled,
		})

		result, err := f.uc.ExecuteAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.Reassigned)
		assert.Equal(t, 5, result.Created)

		moved, err := f.recurring.GetByID(context.Background(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), moved.CourtID)
		assert.True(t, moved.IsActive)
		assert.Equal(t, []domain.HistoryAction{domain.HistoryCourtReassigned}, f.recurring.Actions(b.ID))

		for _, s := range f.slots.All() {
			assert.Equal(t, int64(2), s.CourtID)
		}
		assert.Equal(t, []string{domain.TopicRecurringReassigned}, f.publisher.Types())
	})

	t.Run("reassignment cancels future slots on the old court", func(t *testing.T) {
		f := newFixture(t)
		b := f.addBooking(t, 1, true)

		_, err := f.uc.ExecuteAll(context.Background())
		require.NoError(t, err)
		old := f.slots.All()
		require.Len(t, old, 5)

		_, err = f.payments.Create(context.Background(), &domain.PaymentRecord{
			SlotID: old[0].ID, Amount: decimal.NewFromInt(1500), Method: domain.PaymentTransfer,
			Status: domain.PaymentSubmitted,
		})
		require.NoError(t, err)

		f.facilities.SetCourtState(1, domain.CourtMaintenance)
		f.facilities.AddCourt(&domain.Court{
			ID: 2, FacilityID: 1, SportID: 1, BasePrice: decimal.NewFromInt(3000), State: domain.CourtEnabled,
		})

		result, err := f.uc.ExecuteAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.Reassigned)
		assert.Equal(t, 5, result.Created)

		var onOld, onNew int
		for _, s := range f.slots.All() {
			switch s.CourtID {
			case 1:
				onOld++
				assert.Equal(t, domain.SlotCancelled, s.Status)
			case 2:
				onNew++
				assert.True(t, s.Status.IsActive())
			}
		}
		assert.Equal(t, 5, onOld)
		assert.Equal(t, 5, onNew)

		voided := f.payments.BySlot(old[0].ID)
		require.Len(t, voided, 1)
		assert.Equal(t, domain.PaymentVoided, voided[0].Status)
		require.NotNil(t, voided[0].RejectionReason)
		assert.Equal(t, domain.VoidReasonCourtReassigned, *voided[0].RejectionReason)

		history, err := f.recurring.ListHistory(context.Background(), b.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Contains(t, history[0].Detail, "cancelled 5 future slots, voided 1 payments")
	})

	t.Run("deactivated when siblings are claimed", func(t *testing.T) {
		f := newFixture(t)
		b := f.addBooking(t, 1, true)
		f.addBooking(t, 2, true)
		f.facilities.SetCourtState(1, domain.CourtDisabled)
		f.facilities.AddCourt(&domain.Court{
			ID: 2, FacilityID: 1, SportID: 1, BasePrice: decimal.NewFromInt(3000), State: domain.CourtEnabled,
		})

		res, err := f.uc.MaterializeBooking(context.Background(), b)
		require.NoError(t, err)
		assert.Equal(t, OutcomeDeactivated, res.Outcome)
		assert.Zero(t, res.Created)

		stored, err := f.recurring.GetByID(context.Background(), b.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsActive)
		assert.Equal(t, int64(1), stored.CourtID)
		assert.Equal(t, []domain.HistoryAction{domain.HistoryAutoDeactivated}, f.recurring.Actions(b.ID))
		assert.Empty(t, f.slots.All())
	})

	t.Run("deleted when no sibling exists", func(t *testing.T) {
		f := newFixture(t)
		b := f.addBooking(t, 1, true)

		_, err := f.uc.ExecuteAll(context.Background())
		require.NoError(t, err)
		require.Len(t, f.slots.All(), 5)

		f.facilities.SetCourtState(1, domain.CourtDisabled)
		result, err := f.uc.ExecuteAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, result.Deleted)

		_, err = f.recurring.GetByID(context.Background(), b.ID)
		assert.Error(t, err)
		assert.Equal(t, []domain.HistoryAction{domain.HistoryAutoCancelled}, f.recurring.Actions(b.ID))
		for _, s := range f.slots.All() {
			assert.Equal(t, domain.SlotCancelled, s.Status)
		}
		assert.Contains(t, f.publisher.Types(), domain.TopicRecurringAutoCanceled)
	})
}

func TestExecuteAll_SkipsInactiveAndEnded(t *testing.T) {
	f := newFixture(t)
	paused := f.addBooking(t, 1, true)
	require.NoError(t, f.recurring.SetActive(context.Background(), paused.ID, false, testNow))

	result, err := f.uc.ExecuteAll(context.Background())
	require.NoError(t, err)
	assert.Zero(t, result.Processed)
	assert.Empty(t, f.slots.All())
}
