package abuseguard

import (
	"context"
	"time"
)

// Store хранилище попыток в скользящем окне (память процесса или Redis)
type Store interface {
	// Hit отсекает попытки старше окна; если их меньше limit, регистрирует новую.
	// Операция атомарна для одного ключа.
	Hit(ctx context.Context, key string, now time.Time, window time.Duration, limit int) (allowed bool, count int, err error)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
