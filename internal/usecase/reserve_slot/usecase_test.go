package reserve_slot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	"github.com/m04kA/SMC-CourtSlotService/internal/infra/ratelimit"
	"github.com/m04kA/SMC-CourtSlotService/internal/service/abuseguard"
	"github.com/m04kA/SMC-CourtSlotService/internal/testutil"
	"github.com/m04kA/SMC-CourtSlotService/pkg/ptr"
)

var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

// allowAll пропускает все попытки
type allowAll struct{}

func (allowAll) Check(context.Context, string) error { return nil }

type fixture struct {
	uc         *UseCase
	slots      *testutil.SlotRepo
	facilities *testutil.Facilities
	publisher  *testutil.Publisher
	metrics    *testutil.Metrics
}

func newFixture(t *testing.T, requiresDeposit bool) *fixture {
	t.Helper()

	f := &fixture{
		slots:      testutil.NewSlotRepo(),
		facilities: testutil.NewFacilities(),
		publisher:  &testutil.Publisher{},
		metrics:    testutil.NewMetrics(),
	}
	f.facilities.AddFacility(&domain.Facility{
		ID:                1,
		RequiresDeposit:   requiresDeposit,
		DepositPercentage: 50,
		ExpirationMinutes: 60,
	})

	f.uc = NewUseCase(f.slots, f.facilities, allowAll{}, f.publisher, f.metrics, &testutil.TxManager{}, 3, testutil.Logger())
	f.uc.timeProvider = testutil.NewClock(testNow)
	return f
}

func (f *fixture) addSlot(startAt time.Time) int64 {
	return f.slots.Put(&domain.Slot{
		CourtID:         1,
		FacilityID:      1,
		StartAt:         startAt,
		DurationMinutes: 60,
		TotalPrice:      decimal.NewFromInt(3000),
		Status:          domain.SlotAvailable,
	})
}

func client(phone string) domain.ClientInfo {
	return domain.ClientInfo{Name: "Juan", Surname: "Perez", Phone: phone}
}

func TestExecute_WithDeposit(t *testing.T) {
	f := newFixture(t, true)
	id := f.addSlot(testNow.Add(48 * time.Hour))

	resp, err := f.uc.Execute(context.Background(), &Request{SlotID: id, Client: client("1155550000"), OwnerUserID: ptr.Ptr(int64(7))})
	require.NoError(t, err)

	assert.True(t, resp.RequiresDeposit)
	require.NotNil(t, resp.DepositAmount)
	assert.True(t, resp.DepositAmount.Equal(decimal.NewFromInt(1500)))
	require.NotNil(t, resp.ExpirationDeadline)
	assert.Equal(t, testNow.Add(time.Hour), *resp.ExpirationDeadline)

	assert.Equal(t, domain.SlotReserved, resp.Slot.Status)
	require.NotNil(t, resp.Slot.Client)
	assert.Equal(t, "1155550000", resp.Slot.Client.Phone)
	assert.True(t, resp.Slot.IsOwnedBy(7))
	assert.Nil(t, resp.Slot.ConfirmedAt)

	assert.Equal(t, []string{domain.TopicSlotReserved}, f.publisher.Types())
	assert.Equal(t, 1, f.metrics.Reservations[resultReserved])
}

func TestExecute_DeadlineCappedAtSlotStart(t *testing.T) {
	f := newFixture(t, true)
	start := testNow.Add(30 * time.Minute)
	id := f.addSlot(start)

	resp, err := f.uc.Execute(context.Background(), &Request{SlotID: id, Client: client("1155550000")})
	require.NoError(t, err)

	require.NotNil(t, resp.ExpirationDeadline)
	assert.Equal(t, start, *resp.ExpirationDeadline)
}

func TestExecute_WithoutDeposit(t *testing.T) {
	f := newFixture(t, false)
	id := f.addSlot(testNow.Add(24 * time.Hour))

	resp, err := f.uc.Execute(context.Background(), &Request{SlotID: id, Client: client("1155550000")})
	require.NoError(t, err)

	assert.False(t, resp.RequiresDeposit)
	assert.Nil(t, resp.DepositAmount)
	assert.Nil(t, resp.ExpirationDeadline)
	assert.Equal(t, domain.SlotConfirmed, resp.Slot.Status)
	require.NotNil(t, resp.Slot.ConfirmedAt)
	assert.Equal(t, testNow, *resp.Slot.ConfirmedAt)
	assert.Equal(t, []string{domain.TopicSlotConfirmed}, f.publisher.Types())
}

func TestExecute_Rejections(t *testing.T) {
	t.Run("already reserved", func(t *testing.T) {
		f := newFixture(t, true)
		id := f.addSlot(testNow.Add(time.Hour))
		_, err := f.uc.Execute(context.Background(), &Request{SlotID: id, Client: client("111")})
		require.NoError(t, err)

		_, err = f.uc.Execute(context.Background(), &Request{SlotID: id, Client: client("222")})
		assert.ErrorIs(t, err, ErrSlotNotAvailable)
		assert.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("slot in past", func(t *testing.T) {
		f := newFixture(t, true)
		id := f.addSlot(testNow.Add(-time.Minute))

		_, err := f.uc.Execute(context.Background(), &Request{SlotID: id, Client: client("111")})
		assert.ErrorIs(t, err, ErrSlotInPast)
	})

	t.Run("slot not found", func(t *testing.T) {
		f := newFixture(t, true)
		_, err := f.uc.Execute(context.Background(), &Request{SlotID: 99, Client: client("111")})
		assert.ErrorIs(t, err, ErrSlotNotFound)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("missing phone", func(t *testing.T) {
		f := newFixture(t, true)
		id := f.addSlot(testNow.Add(time.Hour))
		_, err := f.uc.Execute(context.Background(), &Request{SlotID: id, Client: client("  ")})
		assert.ErrorIs(t, err, ErrInvalidInput)
		assert.Empty(t, f.publisher.Types())
	})

	t.Run("phone longer than the column", func(t *testing.T) {
		f := newFixture(t, true)
		id := f.addSlot(testNow.Add(time.Hour))
		_, err := f.uc.Execute(context.Background(), &Request{SlotID: id, Client: client(strings.Repeat("1", 31))})
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("national id longer than the column", func(t *testing.T) {
		f := newFixture(t, true)
		id := f.addSlot(testNow.Add(time.Hour))
		c := client("111")
		c.NationalID = ptr.Ptr(strings.Repeat("9", 31))
		_, err := f.uc.Execute(context.Background(), &Request{SlotID: id, Client: c})
		assert.ErrorIs(t, err, ErrInvalidInput)

		slot, err := f.slots.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.SlotAvailable, slot.Status)
	})

	t.Run("active slot limit", func(t *testing.T) {
		f := newFixture(t, false)
		for i := 1; i <= 3; i++ {
			id := f.addSlot(testNow.Add(time.Duration(i) * time.Hour))
			_, err := f.uc.Execute(context.Background(), &Request{SlotID: id, Client: client("111")})
			require.NoError(t, err)
		}

		id := f.addSlot(testNow.Add(5 * time.Hour))
		_, err := f.uc.Execute(context.Background(), &Request{SlotID: id, Client: client("111")})
		assert.ErrorIs(t, err, ErrTooManyActiveSlots)

		slot, err := f.slots.GetByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, domain.SlotAvailable, slot.Status)
	})
}

func TestExecute_RateLimited(t *testing.T) {
	f := newFixture(t, true)
	f.uc.abuseGuard = abuseguard.NewService(ratelimit.NewMemoryStore(), 10*time.Minute, 5, testutil.Logger())

	for i := 0; i < 5; i++ {
		_, err := f.uc.Execute(context.Background(), &Request{SlotID: 99, Client: client("111")})
		require.ErrorIs(t, err, ErrSlotNotFound)
	}

	_, err := f.uc.Execute(context.Background(), &Request{SlotID: 99, Client: client("111")})
	assert.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 1, f.metrics.Reservations[resultRateLimited])
}

func TestExecute_ConcurrentReservations(t *testing.T) {
	f := newFixture(t, true)
	id := f.addSlot(testNow.Add(24 * time.Hour))

	const attempts = 10
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.uc.Execute(context.Background(), &Request{SlotID: id, Client: client(fmt.Sprintf("11%02d", i))})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ErrSlotNotAvailable):
				conflicts++
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, attempts-1, conflicts)
}

func TestExecute_PublishFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, true)
	f.publisher.Err = errors.New("broker down")
	id := f.addSlot(testNow.Add(time.Hour))

	resp, err := f.uc.Execute(context.Background(), &Request{SlotID: id, Client: client("111")})
	require.NoError(t, err)
	assert.Equal(t, domain.SlotReserved, resp.Slot.Status)
}
