package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

// SlotStatus represents the life-cycle state of a slot
type SlotStatus string

const (
	SlotAvailable   SlotStatus = "DISPONIBLE"
	SlotReserved    SlotStatus = "RESERVADO"
	SlotDepositSent SlotStatus = "SENA_ENVIADA"
	SlotConfirmed   SlotStatus = "CONFIRMADO"
	SlotCancelled   SlotStatus = "CANCELADO"
	SlotExpired     SlotStatus = "EXPIRADO"
	SlotNoShow      SlotStatus = "AUSENTE"
	SlotBlocked     SlotStatus = "BLOQUEADO"
)

// IsValid reports whether the status is one of the known states
func (s SlotStatus) IsValid() bool {
	switch s {
	case SlotAvailable, SlotReserved, SlotDepositSent, SlotConfirmed,
		SlotCancelled, SlotExpired, SlotNoShow, SlotBlocked:
		return true
	}
	return false
}

// IsActive returns true while the slot is held by a client
func (s SlotStatus) IsActive() bool {
	for _, active := range ActiveSlotStatuses {
		if s == active {
			return true
		}
	}
	return false
}

// SlotEvent is an input to the slot state machine
type SlotEvent string

const (
	EventReserve           SlotEvent = "reserve"
	EventReserveConfirmed  SlotEvent = "reserve_confirmed"
	EventSubmitDeposit     SlotEvent = "submit_deposit"
	EventApproveDeposit    SlotEvent = "approve_deposit"
	EventRejectDeposit     SlotEvent = "reject_deposit"
	EventExpire            SlotEvent = "expire"
	EventCancel            SlotEvent = "cancel"
	EventReleaseOccurrence SlotEvent = "release_occurrence"
	EventMarkNoShow        SlotEvent = "mark_no_show"
	EventBlock             SlotEvent = "block"
	EventReopen            SlotEvent = "reopen"
)

type transition struct {
	from         []SlotStatus
	to           SlotStatus
	clearsClient bool
}

// slotTransitions is the single source of truth for allowed slot moves.
// Storage turns every entry into a conditional write on the from-states.
var slotTransitions = map[SlotEvent]transition{
	EventReserve:           {from: []SlotStatus{SlotAvailable}, to: SlotReserved},
	EventReserveConfirmed:  {from: []SlotStatus{SlotAvailable}, to: SlotConfirmed},
	EventSubmitDeposit:     {from: []SlotStatus{SlotReserved}, to: SlotDepositSent},
	EventApproveDeposit:    {from: []SlotStatus{SlotDepositSent}, to: SlotConfirmed},
	EventRejectDeposit:     {from: []SlotStatus{SlotDepositSent}, to: SlotAvailable, clearsClient: true},
	EventExpire:            {from: []SlotStatus{SlotReserved}, to: SlotExpired},
	EventCancel:            {from: []SlotStatus{SlotReserved, SlotDepositSent, SlotConfirmed}, to: SlotCancelled},
	EventReleaseOccurrence: {from: []SlotStatus{SlotReserved, SlotDepositSent, SlotConfirmed}, to: SlotAvailable, clearsClient: true},
	EventMarkNoShow:        {from: []SlotStatus{SlotConfirmed}, to: SlotNoShow},
	EventBlock:             {from: []SlotStatus{SlotAvailable}, to: SlotBlocked},
	EventReopen:            {from: []SlotStatus{SlotBlocked}, to: SlotAvailable},
}

// ErrInvalidTransition is returned when an event is not allowed from the current state
var ErrInvalidTransition = fmt.Errorf("%w: slot transition not allowed", ErrConflict)

// ErrUnknownEvent is returned for events missing from the transition table
var ErrUnknownEvent = fmt.Errorf("%w: unknown slot event", ErrValidation)

// IsValid reports whether the event is present in the transition table
func (e SlotEvent) IsValid() bool {
	_, ok := slotTransitions[e]
	return ok
}

// Sources returns the states the event may be applied to
func (e SlotEvent) Sources() []SlotStatus {
	t, ok := slotTransitions[e]
	if !ok {
		return nil
	}
	out := make([]SlotStatus, len(t.from))
	copy(out, t.from)
	return out
}

// Target returns the state the event leads to
func (e SlotEvent) Target() SlotStatus {
	return slotTransitions[e].to
}

// ClearsClient reports whether the event wipes client data and deposit from the slot.
// The recurring link is never cleared.
func (e SlotEvent) ClearsClient() bool {
	return slotTransitions[e].clearsClient
}

// VoidsPayment reports whether the event ends the slot's current booking,
// so its live deposit payment must be voided in the same transaction.
func (e SlotEvent) VoidsPayment() bool {
	return e == EventCancel || e == EventReleaseOccurrence
}

// NextSlotStatus returns the state reached by applying ev in state from
func NextSlotStatus(from SlotStatus, ev SlotEvent) (SlotStatus, error) {
	t, ok := slotTransitions[ev]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownEvent, ev)
	}
	for _, s := range t.from {
		if s == from {
			return t.to, nil
		}
	}
	return "", fmt.Errorf("%w: %s from %s", ErrInvalidTransition, ev, from)
}

// BookingEvent picks the reservation event for a facility deposit policy
func BookingEvent(requiresDeposit bool) SlotEvent {
	if requiresDeposit {
		return EventReserve
	}
	return EventReserveConfirmed
}

// ClientInfo holds the contact data of the person holding a slot
type ClientInfo struct {
	Name       string
	Surname    string
	Phone      string
	NationalID *string
}

// Normalize trims the contact fields and checks them against the column limits.
// An empty national id becomes nil.
func (c *ClientInfo) Normalize() error {
	c.Name = strings.TrimSpace(c.Name)
	c.Surname = strings.TrimSpace(c.Surname)
	c.Phone = strings.TrimSpace(c.Phone)

	if c.Name == "" || c.Surname == "" {
		return errors.New("client name and surname are required")
	}
	if utf8.RuneCountInString(c.Name) > MaxClientNameLength || utf8.RuneCountInString(c.Surname) > MaxClientNameLength {
		return errors.New("client name is too long")
	}
	if c.Phone == "" {
		return errors.New("client phone is required")
	}
	if utf8.RuneCountInString(c.Phone) > MaxPhoneLength {
		return errors.New("client phone is too long")
	}

	if c.NationalID != nil {
		id := strings.TrimSpace(*c.NationalID)
		if id == "" {
			c.NationalID = nil
			return nil
		}
		if utf8.RuneCountInString(id) > MaxNationalIDLength {
			return errors.New("client national id is too long")
		}
		c.NationalID = &id
	}
	return nil
}

// Slot represents a concrete bookable time slot on a court
type Slot struct {
	ID              int64
	CourtID         int64
	FacilityID      int64
	StartAt         time.Time
	DurationMinutes int
	TotalPrice      decimal.Decimal // фиксируется при создании
	DepositAmount   *decimal.Decimal
	Status          SlotStatus

	Client      *ClientInfo // nil пока слот не забронирован
	OwnerUserID *int64

	ReservedAt  *time.Time
	ExpiresAt   *time.Time
	ConfirmedAt *time.Time

	RecurringBookingID *int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// EndAt returns the end of the slot
func (s *Slot) EndAt() time.Time {
	return s.StartAt.Add(time.Duration(s.DurationMinutes) * time.Minute)
}

// Can reports whether ev is allowed in the current state
func (s *Slot) Can(ev SlotEvent) bool {
	_, err := NextSlotStatus(s.Status, ev)
	return err == nil
}

// IsRecurring returns true if the slot was materialized from a recurring booking
func (s *Slot) IsRecurring() bool {
	return s.RecurringBookingID != nil
}

// IsOwnedBy returns true if userID booked the slot
func (s *Slot) IsOwnedBy(userID int64) bool {
	return s.OwnerUserID != nil && *s.OwnerUserID == userID
}

// IsExpired returns true if the reservation deadline has passed
func (s *Slot) IsExpired(now time.Time) bool {
	return s.Status == SlotReserved && s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}

// SlotUpdate describes the columns and guards of a conditional slot write.
// Zero guards are not applied.
type SlotUpdate struct {
	Client             *ClientInfo
	OwnerUserID        *int64
	DepositAmount      *decimal.Decimal
	ReservedAt         *time.Time
	ExpiresAt          *time.Time
	ConfirmedAt        *time.Time
	RecurringBookingID *int64

	// StartsAfter слот должен начинаться строго позже
	StartsAfter *time.Time
	// StartsBefore слот должен начинаться строго раньше
	StartsBefore *time.Time
	// MaxActivePerPhone лимит активных слотов на телефон клиента
	MaxActivePerPhone int
	// RequireUnlinked слот не должен принадлежать постоянной брони
	RequireUnlinked bool
}
