package abuseguard

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Service ограничивает частоту попыток бронирования по телефону клиента
type Service struct {
	store        Store
	window       time.Duration
	limit        int
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса
func NewService(store Store, window time.Duration, limit int, logger Logger) *Service {
	return &Service{
		store:        store,
		window:       window,
		limit:        limit,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// Check регистрирует попытку и возвращает ErrTooManyAttempts, если лимит окна исчерпан.
// При недоступности хранилища попытка пропускается.
func (s *Service) Check(ctx context.Context, phone string) error {
	key := normalizePhone(phone)
	if key == "" {
		return ErrEmptyPhone
	}

	allowed, count, err := s.store.Hit(ctx, key, s.timeProvider.Now(), s.window, s.limit)
	if err != nil {
		s.logger.Error("AbuseGuard: store unavailable, letting attempt through phone=%s: %v", key, err)
		return nil
	}

	if !allowed {
		s.logger.Warn("AbuseGuard: rate limited phone=%s attempts=%d window=%s", key, count, s.window)
		return fmt.Errorf("%w: %d attempts in %s", ErrTooManyAttempts, count, s.window)
	}

	return nil
}

// normalizePhone убирает пробелы, дефисы и скобки, чтобы "+54 9 11-0000" и "+549110000" совпадали
func normalizePhone(phone string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
}
