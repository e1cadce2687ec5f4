package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	paymentRepo "github.com/m04kA/SMC-CourtSlotService/internal/infra/storage/payment"
)

// ── Payment repository ──

// PaymentRepo in-memory аналог payment.Repository
type PaymentRepo struct {
	mu       sync.Mutex
	payments map[int64]*domain.PaymentRecord
	nextID   int64
}

// NewPaymentRepo создает пустой репозиторий платежей
func NewPaymentRepo() *PaymentRepo {
	return &PaymentRepo{payments: make(map[int64]*domain.PaymentRecord), nextID: 1}
}

func (r *PaymentRepo) Create(_ context.Context, p *domain.PaymentRecord) (*domain.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.payments {
		if existing.SlotID == p.SlotID && existing.IsLive() {
			return nil, paymentRepo.ErrPaymentExists
		}
	}
	cp := *p
	cp.ID = r.nextID
	r.nextID++
	r.payments[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *PaymentRepo) GetByID(_ context.Context, id int64) (*domain.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, paymentRepo.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *PaymentRepo) GetLiveBySlotID(_ context.Context, slotID int64) (*domain.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.payments {
		if p.SlotID == slotID && p.IsLive() {
			cp := *p
			return &cp, nil
		}
	}
	return nil, paymentRepo.ErrPaymentNotFound
}

func (r *PaymentRepo) Transition(
	_ context.Context,
	id int64,
	from, to domain.PaymentStatus,
	reason *string,
	validatedBy *int64,
	at time.Time,
) (*domain.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok || p.Status != from {
		return nil, paymentRepo.ErrStatusConflict
	}
	p.Status = to
	p.RejectionReason = copyPtr(reason)
	p.ValidatedBy = copyPtr(validatedBy)
	p.ValidatedAt = copyPtr(&at)
	p.UpdatedAt = at
	cp := *p
	return &cp, nil
}

func (r *PaymentRepo) VoidLive(_ context.Context, slotIDs []int64, reason string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range slotIDs {
		for _, p := range r.payments {
			if p.SlotID != id || !p.IsLive() {
				continue
			}
			p.Status = domain.PaymentVoided
			p.RejectionReason = copyPtr(&reason)
			p.UpdatedAt = at
			n++
		}
	}
	return n, nil
}

// BySlot возвращает все платежи слота
func (r *PaymentRepo) BySlot(slotID int64) []*domain.PaymentRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.PaymentRecord
	for _, p := range r.payments {
		if p.SlotID == slotID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out
}
