package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	"github.com/m04kA/SMC-CourtSlotService/internal/integrations/facilityservice"
	"github.com/m04kA/SMC-CourtSlotService/pkg/logger"
)

// ── Facility service ──

// Facilities in-memory каталог площадок и кортов
type Facilities struct {
	mu         sync.Mutex
	facilities map[int64]*domain.Facility
	courts     map[int64]*domain.Court

	// Err возвращается из всех методов, если задан
	Err error
}

// NewFacilities создает пустой каталог
func NewFacilities() *Facilities {
	return &Facilities{
		facilities: make(map[int64]*domain.Facility),
		courts:     make(map[int64]*domain.Court),
	}
}

// AddFacility добавляет площадку
func (f *Facilities) AddFacility(facility *domain.Facility) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *facility
	f.facilities[cp.ID] = &cp
}

// AddCourt добавляет корт
func (f *Facilities) AddCourt(court *domain.Court) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *court
	f.courts[cp.ID] = &cp
}

// SetCourtState меняет состояние корта
func (f *Facilities) SetCourtState(courtID int64, state domain.CourtState) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.courts[courtID]; ok {
		c.State = state
	}
}

func (f *Facilities) GetFacility(_ context.Context, id int64) (*domain.Facility, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	facility, ok := f.facilities[id]
	if !ok {
		return nil, facilityservice.ErrFacilityNotFound
	}
	cp := *facility
	return &cp, nil
}

func (f *Facilities) GetCourt(_ context.Context, id int64) (*domain.Court, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	court, ok := f.courts[id]
	if !ok {
		return nil, facilityservice.ErrCourtNotFound
	}
	cp := *court
	return &cp, nil
}

func (f *Facilities) ListCourts(_ context.Context, facilityID, sportID int64) ([]*domain.Court, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return nil, f.Err
	}
	var out []*domain.Court
	for _, c := range f.courts {
		if c.FacilityID != facilityID || c.SportID != sportID {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ── Transaction manager ──

// TxManager выполняет функцию без транзакции, считая вызовы
type TxManager struct {
	mu    sync.Mutex
	Calls int
}

func (m *TxManager) run(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	m.Calls++
	m.mu.Unlock()
	return fn(ctx)
}

func (m *TxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

func (m *TxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.run(ctx, fn)
}

// ── Clock ──

// Clock управляемые часы
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock создает часы, показывающие now
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance переводит часы вперед
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// ── Events ──

// PublishedEvent событие, переданное в Publisher
type PublishedEvent struct {
	Type    string
	Payload any
}

// Publisher запоминает опубликованные события
type Publisher struct {
	mu     sync.Mutex
	events []PublishedEvent

	// Err возвращается из Publish, если задан
	Err error
}

func (p *Publisher) Publish(_ context.Context, eventType string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, PublishedEvent{Type: eventType, Payload: payload})
	return nil
}

// Types возвращает типы опубликованных событий
func (p *Publisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// Events возвращает опубликованные события
func (p *Publisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]PublishedEvent, len(p.events))
	copy(out, p.events)
	return out
}

// ── Metrics ──

// Metrics запоминает доменные метрики
type Metrics struct {
	mu           sync.Mutex
	SlotsCreated map[string]int
	Reservations map[string]int
}

// NewMetrics создает пустой сборщик метрик
func NewMetrics() *Metrics {
	return &Metrics{SlotsCreated: make(map[string]int), Reservations: make(map[string]int)}
}

func (m *Metrics) AddSlotsCreated(source string, n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlotsCreated[source] += n
}

func (m *Metrics) ObserveReservation(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Reservations[result]++
}

// Logger логгер, ничего не пишущий
func Logger() *logger.Logger {
	return logger.NewNop()
}
