// Package testutil содержит in-memory реализации репозиториев и клиентов для тестов use case и сервисов.
// Семантика условных записей повторяет SQL-репозитории.
package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	slotRepo "github.com/m04kA/SMC-CourtSlotService/internal/infra/storage/slot"
)

// ── Slot repository ──

// SlotRepo in-memory аналог slot.Repository
type SlotRepo struct {
	mu     sync.Mutex
	slots  map[int64]*domain.Slot
	nextID int64

	// ApplyErr возвращается из ApplyTransition вместо записи, если задан
	ApplyErr error
}

// NewSlotRepo создает пустой репозиторий слотов
func NewSlotRepo() *SlotRepo {
	return &SlotRepo{slots: make(map[int64]*domain.Slot), nextID: 1}
}

// Put сохраняет слот как есть (для подготовки тестов) и возвращает его ID
func (r *SlotRepo) Put(s *domain.Slot) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := copySlot(s)
	if cp.ID == 0 {
		cp.ID = r.nextID
		r.nextID++
	} else if cp.ID >= r.nextID {
		r.nextID = cp.ID + 1
	}
	r.slots[cp.ID] = cp
	return cp.ID
}

// All возвращает копии всех слотов, отсортированные по (court_id, start_at)
func (r *SlotRepo) All() []*domain.Slot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Slot, 0, len(r.slots))
	for _, s := range r.slots {
		out = append(out, copySlot(s))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CourtID != out[j].CourtID {
			return out[i].CourtID < out[j].CourtID
		}
		return out[i].StartAt.Before(out[j].StartAt)
	})
	return out
}

func (r *SlotRepo) findByCourtAndStart(courtID int64, startAt time.Time) *domain.Slot {
	for _, s := range r.slots {
		if s.CourtID == courtID && s.StartAt.Equal(startAt) {
			return s
		}
	}
	return nil
}

func (r *SlotRepo) insert(s *domain.Slot) *domain.Slot {
	cp := copySlot(s)
	cp.ID = r.nextID
	r.nextID++
	r.slots[cp.ID] = cp
	return copySlot(cp)
}

func (r *SlotRepo) InsertBatch(_ context.Context, slots []*domain.Slot) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var created int64
	for _, s := range slots {
		if r.findByCourtAndStart(s.CourtID, s.StartAt) != nil {
			continue
		}
		r.insert(s)
		created++
	}
	return created, nil
}

func (r *SlotRepo) InsertIfAbsent(_ context.Context, s *domain.Slot) (*domain.Slot, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findByCourtAndStart(s.CourtID, s.StartAt) != nil {
		return nil, false, nil
	}
	return r.insert(s), true, nil
}

func (r *SlotRepo) GetByID(_ context.Context, id int64) (*domain.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[id]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	return copySlot(s), nil
}

func (r *SlotRepo) GetByCourtAndStart(_ context.Context, courtID int64, startAt time.Time) (*domain.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.findByCourtAndStart(courtID, startAt)
	if s == nil {
		return nil, slotRepo.ErrSlotNotFound
	}
	return copySlot(s), nil
}

func (r *SlotRepo) ListAvailable(_ context.Context, courtID int64, from, to time.Time) ([]*domain.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Slot
	for _, s := range r.slots {
		if s.CourtID != courtID || s.Status != domain.SlotAvailable {
			continue
		}
		if s.StartAt.Before(from) || !s.StartAt.Before(to) {
			continue
		}
		out = append(out, copySlot(s))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.Before(out[j].StartAt) })
	return out, nil
}

func (r *SlotRepo) CountActiveByPhone(_ context.Context, phone string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countActive(phone), nil
}

func (r *SlotRepo) countActive(phone string) int {
	count := 0
	for _, s := range r.slots {
		if s.Client != nil && s.Client.Phone == phone && s.Status.IsActive() {
			count++
		}
	}
	return count
}

func (r *SlotRepo) ApplyTransition(
	_ context.Context,
	id int64,
	event domain.SlotEvent,
	upd domain.SlotUpdate,
	now time.Time,
) (*domain.Slot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ApplyErr != nil {
		return nil, r.ApplyErr
	}
	if !event.IsValid() {
		return nil, slotRepo.ErrUnknownEvent
	}
	s, ok := r.slots[id]
	if !ok {
		return nil, slotRepo.ErrStateConflict
	}
	if _, err := domain.NextSlotStatus(s.Status, event); err != nil {
		return nil, slotRepo.ErrStateConflict
	}
	if upd.StartsAfter != nil && !s.StartAt.After(*upd.StartsAfter) {
		return nil, slotRepo.ErrStateConflict
	}
	if upd.StartsBefore != nil && !s.StartAt.Before(*upd.StartsBefore) {
		return nil, slotRepo.ErrStateConflict
	}
	if upd.RequireUnlinked && s.RecurringBookingID != nil {
		return nil, slotRepo.ErrStateConflict
	}
	if upd.MaxActivePerPhone > 0 && upd.Client != nil && r.countActive(upd.Client.Phone) >= upd.MaxActivePerPhone {
		return nil, slotRepo.ErrStateConflict
	}

	s.Status = event.Target()
	s.UpdatedAt = now
	if event.ClearsClient() {
		s.Client = nil
		s.OwnerUserID = nil
		s.DepositAmount = nil
		s.ReservedAt = nil
		s.ExpiresAt = nil
		s.ConfirmedAt = nil
		return copySlot(s), nil
	}

	if upd.Client != nil {
		c := *upd.Client
		s.Client = &c
	}
	if upd.OwnerUserID != nil {
		s.OwnerUserID = copyPtr(upd.OwnerUserID)
	}
	if upd.DepositAmount != nil {
		s.DepositAmount = copyPtr(upd.DepositAmount)
	}
	if upd.ReservedAt != nil {
		s.ReservedAt = copyPtr(upd.ReservedAt)
	}
	if upd.ExpiresAt != nil {
		s.ExpiresAt = copyPtr(upd.ExpiresAt)
	}
	if upd.ConfirmedAt != nil {
		s.ConfirmedAt = copyPtr(upd.ConfirmedAt)
	}
	if upd.RecurringBookingID != nil {
		s.RecurringBookingID = copyPtr(upd.RecurringBookingID)
	}
	return copySlot(s), nil
}

func (r *SlotRepo) ExpireOverdue(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.slots {
		if s.IsExpired(now) {
			s.Status = domain.SlotExpired
			s.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (r *SlotRepo) CancelFutureByRecurring(_ context.Context, recurringID int64, now time.Time) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []int64
	for _, s := range r.slots {
		if s.RecurringBookingID == nil || *s.RecurringBookingID != recurringID {
			continue
		}
		if !s.StartAt.After(now) || !s.Can(domain.EventCancel) {
			continue
		}
		s.Status = domain.SlotCancelled
		s.UpdatedAt = now
		ids = append(ids, s.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func copySlot(s *domain.Slot) *domain.Slot {
	cp := *s
	if s.Client != nil {
		c := *s.Client
		cp.Client = &c
	}
	cp.OwnerUserID = copyPtr(s.OwnerUserID)
	cp.DepositAmount = copyPtr(s.DepositAmount)
	cp.ReservedAt = copyPtr(s.ReservedAt)
	cp.ExpiresAt = copyPtr(s.ExpiresAt)
	cp.ConfirmedAt = copyPtr(s.ConfirmedAt)
	cp.RecurringBookingID = copyPtr(s.RecurringBookingID)
	return &cp
}

func copyPtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
