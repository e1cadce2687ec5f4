package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Routing keys of published domain events
const (
	TopicSlotReserved          = "slot.reserved"
	TopicSlotConfirmed         = "slot.confirmed"
	TopicSlotCancelled         = "slot.cancelled"
	TopicPaymentSubmitted      = "payment.submitted"
	TopicPaymentRejected       = "payment.rejected"
	TopicRecurringReassigned   = "recurring.reassigned"
	TopicRecurringDeactivated  = "recurring.deactivated"
	TopicRecurringAutoCanceled = "recurring.auto_cancelled"
)

// SlotChanged is published after a client-visible slot transition
type SlotChanged struct {
	SlotID             int64      `json:"slot_id"`
	CourtID            int64      `json:"court_id"`
	FacilityID         int64      `json:"facility_id"`
	Status             SlotStatus `json:"status"`
	StartAt            time.Time  `json:"start_at"`
	ClientPhone        string     `json:"client_phone,omitempty"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	RecurringBookingID *int64     `json:"recurring_booking_id,omitempty"`
}

// NewSlotChanged builds the event payload from a slot
func NewSlotChanged(s *Slot) SlotChanged {
	ev := SlotChanged{
		SlotID:             s.ID,
		CourtID:            s.CourtID,
		FacilityID:         s.FacilityID,
		Status:             s.Status,
		StartAt:            s.StartAt,
		ExpiresAt:          s.ExpiresAt,
		RecurringBookingID: s.RecurringBookingID,
	}
	if s.Client != nil {
		ev.ClientPhone = s.Client.Phone
	}
	return ev
}

// PaymentChanged is published after a payment record changes state
type PaymentChanged struct {
	PaymentID int64           `json:"payment_id"`
	SlotID    int64           `json:"slot_id"`
	Status    PaymentStatus   `json:"status"`
	Method    PaymentMethod   `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Reason    *string         `json:"reason,omitempty"`
}

// RecurringChanged is published when the materializer or staff alter a recurring booking
type RecurringChanged struct {
	RecurringBookingID int64         `json:"recurring_booking_id"`
	Action             HistoryAction `json:"action"`
	CourtID            int64         `json:"court_id"`
	PreviousCourtID    *int64        `json:"previous_court_id,omitempty"`
	Detail             string        `json:"detail,omitempty"`
}
