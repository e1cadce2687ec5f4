package slots

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

const (
	ownerID = int64(10)
	staffID = int64(20)
	otherID = int64(30)
)

var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *testutil.SlotRepo, *testutil.Publisher) {
	t.Helper()
	svc, repo, _, publisher := newTestServiceWithPayments(t)
	return svc, repo, publisher
}

func newTestServiceWithPayments(t *testing.T) (*Service, *testutil.SlotRepo, *testutil.PaymentRepo, *testutil.Publisher) {
	t.Helper()

	repo := testutil.NewSlotRepo()
	payments := testutil.NewPaymentRepo()
	facilities := testutil.NewFacilities()
	facilities.AddFacility(&domain.Facility{ID: 1, StaffUserIDs: []int64{staffID}})
	publisher := &testutil.Publisher{}

	svc := NewService(repo, payments, facilities, publisher, &testutil.TxManager{}, time.UTC, testutil.Logger())
	svc.timeProvider = testutil.NewClock(testNow)
	return svc, repo, payments, publisher
}

func putPayment(t *testing.T, payments *testutil.PaymentRepo, slotID int64, status domain.PaymentStatus) {
	t.Helper()
	_, err := payments.Create(context.Background(), &domain.PaymentRecord{
		SlotID:    slotID,
		Amount:    decimal.NewFromInt(1500),
		Method:    domain.PaymentTransfer,
		Status:    status,
		ProofURL:  ptr.Ptr("https://files.example/receipt.jpg"),
		CreatedAt: testNow.Add(-time.Hour),
		UpdatedAt: testNow.Add(-time.Hour),
	})
	require.NoError(t, err)
}

func putSlot(repo *testutil.SlotRepo, status domain.SlotStatus, startAt time.Time, recurringID *int64) int64 {
	s := &domain.Slot{
		CourtID:            1,
		FacilityID:         1,
		StartAt:            startAt,
		DurationMinutes:    60,
		TotalPrice:         decimal.NewFromInt(3000),
		Status:             status,
		RecurringBookingID: recurringID,
	}
	if status.IsActive() {
		s.Client = &domain.ClientInfo{Name: "Juan", Surname: "Perez", Phone: "111"}
		s.OwnerUserID = ptr.Ptr(ownerID)
		s.DepositAmount = ptr.Ptr(decimal.NewFromInt(1500))
		s.ReservedAt = ptr.Ptr(testNow.Add(-time.Hour))
	}
	return repo.Put(s)
}

func TestCancel(t *testing.T) {
	tests := []struct {
		name     string
		status   domain.SlotStatus
		userID   int64
		expected error
	}{
		{name: "owner cancels reservation", status: domain.SlotReserved, userID: ownerID},
		{name: "staff cancels confirmed", status: domain.SlotConfirmed, userID: staffID},
		{name: "owner cancels deposit sent", status: domain.SlotDepositSent, userID: ownerID},
		{name: "stranger is denied", status: domain.SlotReserved, userID: otherID, expected: domain.ErrForbidden},
		{name: "expired cannot be cancelled", status: domain.SlotExpired, userID: staffID, expected: domain.ErrConflict},
		{name: "available cannot be cancelled", status: domain.SlotAvailable, userID: staffID, expected: domain.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, publisher := newTestService(t)
			id := putSlot(repo, tt.status, testNow.Add(24*time.Hour), nil)

			slot, err := svc.Cancel(context.Background(), id, tt.userID)
			if tt.expected != nil {
				assert.ErrorIs(t, err, tt.expected)
				assert.Empty(t, publisher.Types())
				return
			}

			require.NoError(t, err)
			assert.Equal(t, domain.SlotCancelled, slot.Status)
			assert.Equal(t, []string{domain.TopicSlotCancelled}, publisher.Types())
		})
	}
}

func TestCancel_VoidsLivePayment(t *testing.T) {
	tests := []struct {
		name   string
		status domain.SlotStatus
		paid   domain.PaymentStatus
	}{
		{name: "deposit sent", status: domain.SlotDepositSent, paid: domain.PaymentPending},
		{name: "confirmed", status: domain.SlotConfirmed, paid: domain.PaymentApproved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, payments, _ := newTestServiceWithPayments(t)
			id := putSlot(repo, tt.status, testNow.Add(24*time.Hour), nil)
			putPayment(t, payments, id, tt.paid)

			_, err := svc.Cancel(context.Background(), id, ownerID)
			require.NoError(t, err)

			live, err := payments.GetLiveBySlotID(context.Background(), id)
			require.NoError(t, err)
			assert.Nil(t, live)

			history := payments.BySlot(id)
			require.Len(t, history, 1)
			assert.Equal(t, domain.PaymentVoided, history[0].Status)
			require.NotNil(t, history[0].RejectionReason)
			assert.Equal(t, domain.VoidReasonSlotCancelled, *history[0].RejectionReason)
		})
	}
}

func TestCancelRecurringOccurrence(t *testing.T) {
	t.Run("releases slot and keeps link", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		id := putSlot(repo, domain.SlotConfirmed, testNow.Add(24*time.Hour), ptr.Ptr(int64(5)))

		slot, err := svc.CancelRecurringOccurrence(context.Background(), id, ownerID)
		require.NoError(t, err)

		assert.Equal(t, domain.SlotAvailable, slot.Status)
		assert.Nil(t, slot.Client)
		assert.Nil(t, slot.OwnerUserID)
		assert.Nil(t, slot.DepositAmount)
		assert.Nil(t, slot.ReservedAt)
		require.NotNil(t, slot.RecurringBookingID)
		assert.Equal(t, int64(5), *slot.RecurringBookingID)
	})

	t.Run("voids the deposit of the released occurrence", func(t *testing.T) {
		svc, repo, payments, _ := newTestServiceWithPayments(t)
		id := putSlot(repo, domain.SlotDepositSent, testNow.Add(24*time.Hour), ptr.Ptr(int64(5)))
		putPayment(t, payments, id, domain.PaymentPending)

		_, err := svc.CancelRecurringOccurrence(context.Background(), id, ownerID)
		require.NoError(t, err)

		history := payments.BySlot(id)
		require.Len(t, history, 1)
		assert.Equal(t, domain.PaymentVoided, history[0].Status)
		require.NotNil(t, history[0].RejectionReason)
		assert.Equal(t, domain.VoidReasonOccurrenceReleased, *history[0].RejectionReason)
	})

	t.Run("non recurring slot", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		id := putSlot(repo, domain.SlotConfirmed, testNow.Add(24*time.Hour), nil)

		_, err := svc.CancelRecurringOccurrence(context.Background(), id, ownerID)
		assert.ErrorIs(t, err, ErrNotRecurring)
	})
}

func TestMarkNoShow(t *testing.T) {
	t.Run("started confirmed slot", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		id := putSlot(repo, domain.SlotConfirmed, testNow.Add(-30*time.Minute), nil)

		slot, err := svc.MarkNoShow(context.Background(), id, staffID)
		require.NoError(t, err)
		assert.Equal(t, domain.SlotNoShow, slot.Status)
	})

	t.Run("future slot", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		id := putSlot(repo, domain.SlotConfirmed, testNow.Add(time.Hour), nil)

		_, err := svc.MarkNoShow(context.Background(), id, staffID)
		assert.ErrorIs(t, err, ErrNoShowTooEarly)
	})

	t.Run("only staff", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		id := putSlot(repo, domain.SlotConfirmed, testNow.Add(-30*time.Minute), nil)

		_, err := svc.MarkNoShow(context.Background(), id, ownerID)
		assert.ErrorIs(t, err, ErrAccessDenied)
	})

	t.Run("reserved slot is not confirmed", func(t *testing.T) {
		svc, repo, _ := newTestService(t)
		id := putSlot(repo, domain.SlotReserved, testNow.Add(-30*time.Minute), nil)

		_, err := svc.MarkNoShow(context.Background(), id, staffID)
		assert.ErrorIs(t, err, ErrInvalidTransition)
	})
}

func TestBlockAndReopen(t *testing.T) {
	svc, repo, _ := newTestService(t)
	id := putSlot(repo, domain.SlotAvailable, testNow.Add(time.Hour), nil)

	_, err := svc.Block(context.Background(), id, ownerID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	blocked, err := svc.Block(context.Background(), id, staffID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotBlocked, blocked.Status)

	_, err = svc.Block(context.Background(), id, staffID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	reopened, err := svc.Reopen(context.Background(), id, staffID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotAvailable, reopened.Status)
}

func TestCheckAvailability(t *testing.T) {
	svc, repo, _ := newTestService(t)
	putSlot(repo, domain.SlotAvailable, testNow.Add(time.Hour), nil)
	putSlot(repo, domain.SlotAvailable, testNow.Add(2*time.Hour), nil)
	putSlot(repo, domain.SlotReserved, testNow.Add(3*time.Hour), nil)
	putSlot(repo, domain.SlotBlocked, testNow.Add(4*time.Hour), nil)
	putSlot(repo, domain.SlotAvailable, testNow.Add(72*time.Hour), nil)

	slots, err := svc.CheckAvailability(context.Background(), 1, testNow, testNow.Add(24*time.Hour))
	require.NoError(t, err)
	require.Len(t, slots, 2)
	for _, s := range slots {
		assert.Equal(t, domain.SlotAvailable, s.Status)
	}

	_, err = svc.CheckAvailability(context.Background(), 1, testNow, testNow)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.CheckAvailability(context.Background(), 1, testNow, testNow.AddDate(0, 0, 120))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCheckAvailabilityByDays_FacilityTimezone(t *testing.T) {
	repo := testutil.NewSlotRepo()
	facilities := testutil.NewFacilities()
	facilities.AddFacility(&domain.Facility{ID: 2, Timezone: "America/Argentina/Buenos_Aires"})
	facilities.AddCourt(&domain.Court{ID: 7, FacilityID: 2, SportID: 1, State: domain.CourtEnabled})
	svc := NewService(repo, testutil.NewPaymentRepo(), facilities, &testutil.Publisher{},
		&testutil.TxManager{}, time.UTC, testutil.Logger())

	put := func(startAt time.Time) int64 {
		return repo.Put(&domain.Slot{
			CourtID: 7, FacilityID: 2, StartAt: startAt, DurationMinutes: 60,
			TotalPrice: decimal.NewFromInt(3000), Status: domain.SlotAvailable,
		})
	}
	// 4 марта 22:00 по Буэнос-Айресу
	put(time.Date(2026, 3, 5, 1, 0, 0, 0, time.UTC))
	morning := put(time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC))
	// 5 марта 23:00 по Буэнос-Айресу
	lateNight := put(time.Date(2026, 3, 6, 2, 0, 0, 0, time.UTC))
	put(time.Date(2026, 3, 6, 3, 0, 0, 0, time.UTC))

	day := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	slots, err := svc.CheckAvailabilityByDays(context.Background(), 7, day, day)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, morning, slots[0].ID)
	assert.Equal(t, lateNight, slots[1].ID)

	_, err = svc.CheckAvailabilityByDays(context.Background(), 99, day, day)
	assert.ErrorIs(t, err, ErrCourtNotFound)
}

func TestGetByID(t *testing.T) {
	svc, repo, _ := newTestService(t)
	free := putSlot(repo, domain.SlotAvailable, testNow.Add(time.Hour), nil)
	held := putSlot(repo, domain.SlotReserved, testNow.Add(2*time.Hour), nil)

	_, err := svc.GetByID(context.Background(), free, otherID)
	assert.NoError(t, err)

	_, err = svc.GetByID(context.Background(), held, otherID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	slot, err := svc.GetByID(context.Background(), held, ownerID)
	require.NoError(t, err)
	assert.Equal(t, "111", slot.Client.Phone)

	_, err = svc.GetByID(context.Background(), 999, ownerID)
	assert.ErrorIs(t, err, ErrSlotNotFound)
}
