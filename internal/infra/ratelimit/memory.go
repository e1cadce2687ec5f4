package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore скользящее окно в памяти процесса.
// Подходит для одного экземпляра сервиса; счетчики теряются при рестарте.
type MemoryStore struct {
	mu        sync.Mutex
	hits      map[string][]time.Time
	lastSweep time.Time
}

// NewMemoryStore создает хранилище в памяти
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{hits: make(map[string][]time.Time)}
}

// Hit отсекает попытки старше окна и, если лимит не достигнут, регистрирует новую.
// count количество попыток в окне с учетом текущей, если она принята.
func (s *MemoryStore) Hit(_ context.Context, key string, now time.Time, window time.Duration, limit int) (bool, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-window)
	if now.Sub(s.lastSweep) >= window {
		s.sweep(cutoff)
		s.lastSweep = now
	}

	kept := s.hits[key][:0]
	for _, at := range s.hits[key] {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}

	if len(kept) >= limit {
		s.hits[key] = kept
		return false, len(kept), nil
	}

	kept = append(kept, now)
	s.hits[key] = kept
	return true, len(kept), nil
}

// sweep удаляет ключи без попыток в окне, иначе карта растет с каждым новым телефоном
func (s *MemoryStore) sweep(cutoff time.Time) {
	for key, hits := range s.hits {
		if len(hits) == 0 || !hits[len(hits)-1].After(cutoff) {
			delete(s.hits, key)
		}
	}
}
