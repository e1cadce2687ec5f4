package jobs

import (
	"context"
	"time"
)

// Func тело периодической задачи. Возвращает число обработанных элементов.
type Func func(ctx context.Context) (int, error)

// Metrics интерфейс метрик запусков задач
type Metrics interface {
	ObserveJob(job string, d time.Duration, items int, err error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
