package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how the client paid the deposit
type PaymentMethod string

const (
	PaymentTransfer    PaymentMethod = "TRANSFERENCIA"
	PaymentMercadoPago PaymentMethod = "MERCADO_PAGO"
	PaymentCard        PaymentMethod = "TARJETA"
	PaymentCash        PaymentMethod = "EFECTIVO"
)

// IsValid reports whether the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentTransfer, PaymentMercadoPago, PaymentCard, PaymentCash:
		return true
	}
	return false
}

// PaymentStatus is the state of a payment record
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentSubmitted PaymentStatus = "SUBMITTED"
	PaymentApproved  PaymentStatus = "APPROVED"
	PaymentRejected  PaymentStatus = "REJECTED"
	PaymentVoided    PaymentStatus = "VOIDED" // slot cancelled or released by the client or the system
)

// ClosedPaymentStatuses no longer hold the slot's single payment place
var ClosedPaymentStatuses = []PaymentStatus{PaymentRejected, PaymentVoided}

// Reasons stored on voided payments
const (
	VoidReasonSlotCancelled      = "slot cancelled"
	VoidReasonOccurrenceReleased = "recurring occurrence released"
	VoidReasonRecurringCancelled = "recurring booking cancelled"
	VoidReasonCourtReassigned    = "recurring booking moved to another court"
)

// IsLive returns true if a payment in this state blocks a new submission for the slot
func (s PaymentStatus) IsLive() bool {
	for _, closed := range ClosedPaymentStatuses {
		if s == closed {
			return false
		}
	}
	return true
}

// PaymentRecord tracks the deposit of a single slot.
// At most one live (not rejected, not voided) record exists per slot.
type PaymentRecord struct {
	ID              int64
	SlotID          int64
	Amount          decimal.Decimal
	Method          PaymentMethod
	Status          PaymentStatus
	ProofURL        *string
	SubmittedAt     *time.Time
	ValidatedAt     *time.Time
	ValidatedBy     *int64
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsLive returns true if the record blocks a new submission for the slot
func (p *PaymentRecord) IsLive() bool {
	return p.Status.IsLive()
}
