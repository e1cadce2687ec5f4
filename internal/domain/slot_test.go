package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextSlotStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    SlotStatus
		event   SlotEvent
		want    SlotStatus
		wantErr error
	}{
		{"reserve with deposit", SlotAvailable, EventReserve, SlotReserved, nil},
		{"reserve without deposit", SlotAvailable, EventReserveConfirmed, SlotConfirmed, nil},
		{"submit deposit", SlotReserved, EventSubmitDeposit, SlotDepositSent, nil},
		{"approve", SlotDepositSent, EventApproveDeposit, SlotConfirmed, nil},
		{"reject", SlotDepositSent, EventRejectDeposit, SlotAvailable, nil},
		{"expire", SlotReserved, EventExpire, SlotExpired, nil},
		{"cancel confirmed", SlotConfirmed, EventCancel, SlotCancelled, nil},
		{"cancel deposit sent", SlotDepositSent, EventCancel, SlotCancelled, nil},
		{"release occurrence", SlotConfirmed, EventReleaseOccurrence, SlotAvailable, nil},
		{"no show", SlotConfirmed, EventMarkNoShow, SlotNoShow, nil},
		{"block", SlotAvailable, EventBlock, SlotBlocked, nil},
		{"reopen", SlotBlocked, EventReopen, SlotAvailable, nil},

		{"reserve taken slot", SlotReserved, EventReserve, "", ErrInvalidTransition},
		{"expire deposit sent", SlotDepositSent, EventExpire, "", ErrInvalidTransition},
		{"cancel available", SlotAvailable, EventCancel, "", ErrInvalidTransition},
		{"cancel cancelled", SlotCancelled, EventCancel, "", ErrInvalidTransition},
		{"approve reserved", SlotReserved, EventApproveDeposit, "", ErrInvalidTransition},
		{"block reserved", SlotReserved, EventBlock, "", ErrInvalidTransition},
		{"reopen available", SlotAvailable, EventReopen, "", ErrInvalidTransition},
		{"no show reserved", SlotReserved, EventMarkNoShow, "", ErrInvalidTransition},
		{"unknown event", SlotAvailable, SlotEvent("teleport"), "", ErrUnknownEvent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextSlotStatus(tt.from, tt.event)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNextSlotStatus_ErrorCategories(t *testing.T) {
	_, err := NextSlotStatus(SlotExpired, EventReserve)
	assert.ErrorIs(t, err, ErrConflict)

	_, err = NextSlotStatus(SlotAvailable, SlotEvent("teleport"))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSlotEvent_Table(t *testing.T) {
	assert.ElementsMatch(t,
		[]SlotStatus{SlotReserved, SlotDepositSent, SlotConfirmed},
		EventCancel.Sources())
	assert.Equal(t, SlotCancelled, EventCancel.Target())

	assert.True(t, EventRejectDeposit.ClearsClient())
	assert.True(t, EventReleaseOccurrence.ClearsClient())
	assert.False(t, EventCancel.ClearsClient())
	assert.False(t, EventExpire.ClearsClient())

	// Sources возвращает копию
	src := EventReserve.Sources()
	src[0] = SlotBlocked
	assert.Equal(t, []SlotStatus{SlotAvailable}, EventReserve.Sources())

	assert.Nil(t, SlotEvent("teleport").Sources())
	assert.False(t, SlotEvent("teleport").IsValid())
}

func TestBookingEvent(t *testing.T) {
	assert.Equal(t, EventReserve, BookingEvent(true))
	assert.Equal(t, EventReserveConfirmed, BookingEvent(false))
}

func TestTerminalStatesHaveNoExits(t *testing.T) {
	terminal := []SlotStatus{SlotCancelled, SlotExpired, SlotNoShow}
	for ev := range slotTransitions {
		for _, s := range terminal {
			_, err := NextSlotStatus(s, ev)
			assert.ErrorIs(t, err, ErrInvalidTransition, "event %s from %s", ev, s)
		}
	}
}

func TestSlotStatus_IsActive(t *testing.T) {
	assert.True(t, SlotReserved.IsActive())
	assert.True(t, SlotDepositSent.IsActive())
	assert.True(t, SlotConfirmed.IsActive())
	assert.False(t, SlotAvailable.IsActive())
	assert.False(t, SlotCancelled.IsActive())
	assert.False(t, SlotBlocked.IsActive())
}

func TestClientInfo_Normalize(t *testing.T) {
	t.Run("trims fields and drops blank national id", func(t *testing.T) {
		blank := "   "
		c := ClientInfo{Name: " Juan ", Surname: "Perez ", Phone: " 1155550000 ", NationalID: &blank}
		require.NoError(t, c.Normalize())
		assert.Equal(t, "Juan", c.Name)
		assert.Equal(t, "Perez", c.Surname)
		assert.Equal(t, "1155550000", c.Phone)
		assert.Nil(t, c.NationalID)
	})

	t.Run("limits follow the columns", func(t *testing.T) {
		phone := ClientInfo{Name: "Juan", Surname: "Perez", Phone: strings.Repeat("1", MaxPhoneLength)}
		assert.NoError(t, phone.Normalize())

		phone.Phone = strings.Repeat("1", MaxPhoneLength+1)
		assert.Error(t, phone.Normalize())

		id := strings.Repeat("9", MaxNationalIDLength+1)
		natID := ClientInfo{Name: "Juan", Surname: "Perez", Phone: "111", NationalID: &id}
		assert.Error(t, natID.Normalize())

		name := ClientInfo{Name: strings.Repeat("ñ", MaxClientNameLength), Surname: "Perez", Phone: "111"}
		assert.NoError(t, name.Normalize())
	})
}
