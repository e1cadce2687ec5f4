package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	recurringRepo "github.com/m04kA/SMC-CourtSlotService/internal/infra/storage/recurring"
	"github.com/m04kA/SMC-CourtSlotService/pkg/types"
)

// ── Recurring booking repository ──

// RecurringRepo in-memory аналог recurring.Repository
type RecurringRepo struct {
	mu       sync.Mutex
	bookings map[int64]*domain.RecurringBooking
	history  []*domain.HistoryEntry
	nextID   int64
}

// NewRecurringRepo создает пустой репозиторий постоянных броней
func NewRecurringRepo() *RecurringRepo {
	return &RecurringRepo{bookings: make(map[int64]*domain.RecurringBooking), nextID: 1}
}

func (r *RecurringRepo) Create(_ context.Context, b *domain.RecurringBooking) (*domain.RecurringBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.bookings {
		if existing.CourtID == b.CourtID && existing.Weekday == b.Weekday && existing.StartTime == b.StartTime {
			return nil, recurringRepo.ErrDuplicate
		}
	}
	cp := copyBooking(b)
	cp.ID = r.nextID
	r.nextID++
	r.bookings[cp.ID] = cp
	return copyBooking(cp), nil
}

func (r *RecurringRepo) GetByID(_ context.Context, id int64) (*domain.RecurringBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, recurringRepo.ErrRecurringNotFound
	}
	return copyBooking(b), nil
}

func (r *RecurringRepo) ListActiveForDate(_ context.Context, date time.Time) ([]*domain.RecurringBooking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.RecurringBooking
	for _, b := range r.bookings {
		if b.IsActive && b.CoversDate(date, date.Location()) {
			out = append(out, copyBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *RecurringRepo) SetActive(_ context.Context, id int64, active bool, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return recurringRepo.ErrRecurringNotFound
	}
	b.IsActive = active
	b.UpdatedAt = now
	return nil
}

func (r *RecurringRepo) UpdateCourt(_ context.Context, id, courtID int64, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return recurringRepo.ErrRecurringNotFound
	}
	for _, other := range r.bookings {
		if other.ID != id && other.CourtID == courtID && other.Weekday == b.Weekday && other.StartTime == b.StartTime {
			return recurringRepo.ErrDuplicate
		}
	}
	b.CourtID = courtID
	b.UpdatedAt = now
	return nil
}

func (r *RecurringRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[id]; !ok {
		return recurringRepo.ErrRecurringNotFound
	}
	delete(r.bookings, id)
	return nil
}

func (r *RecurringRepo) IsClaimed(_ context.Context, courtID int64, weekday time.Weekday, startTime types.TimeString) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.CourtID == courtID && b.Weekday == weekday && b.StartTime == startTime {
			return true, nil
		}
	}
	return false, nil
}

func (r *RecurringRepo) AppendHistory(_ context.Context, e *domain.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	cp.ID = int64(len(r.history) + 1)
	r.history = append(r.history, &cp)
	return nil
}

func (r *RecurringRepo) ListHistory(_ context.Context, recurringID int64) ([]*domain.HistoryEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.HistoryEntry
	for _, e := range r.history {
		if e.RecurringBookingID == recurringID {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Actions возвращает действия истории брони в порядке добавления
func (r *RecurringRepo) Actions(recurringID int64) []domain.HistoryAction {
	entries, _ := r.ListHistory(context.Background(), recurringID)
	out := make([]domain.HistoryAction, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Action)
	}
	return out
}

func copyBooking(b *domain.RecurringBooking) *domain.RecurringBooking {
	cp := *b
	cp.EndDate = copyPtr(b.EndDate)
	cp.OwnerUserID = copyPtr(b.OwnerUserID)
	cp.Client.NationalID = copyPtr(b.Client.NationalID)
	return &cp
}
