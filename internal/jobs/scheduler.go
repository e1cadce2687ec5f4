package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Имена задач
const (
	JobExpireReservations   = "expire_reservations"
	JobMaterializeRecurring = "materialize_recurring"
	JobGenerateSlots        = "generate_slots"
)

type job struct {
	fn Func
	mu sync.Mutex // один запуск задачи в момент времени
}

// Scheduler запускает независимые идемпотентные задачи по cron-расписанию.
// Задачи можно запускать и вручную через RunNow; пересекающиеся запуски одной задачи пропускаются.
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]*job
	timeout time.Duration
	metrics Metrics
	logger  Logger
}

// NewScheduler создает планировщик. timeout ограничивает один запуск задачи.
func NewScheduler(loc *time.Location, timeout time.Duration, metrics Metrics, logger Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithChain(cron.Recover(cronLogger{logger})),
		),
		jobs:    make(map[string]*job),
		timeout: timeout,
		metrics: metrics,
		logger:  logger,
	}
}

// Register регистрирует задачу. Пустой spec регистрирует задачу только для ручного запуска.
func (s *Scheduler) Register(name, spec string, fn Func) error {
	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateJob, name)
	}

	j := &job{fn: fn}
	if spec != "" {
		if _, err := s.cron.AddFunc(spec, func() { s.scheduled(name, j) }); err != nil {
			return fmt.Errorf("%w: %s %q: %v", ErrInvalidSpec, name, spec, err)
		}
	}
	s.jobs[name] = j

	s.logger.Info("Register: job %s scheduled with spec %q", name, spec)
	return nil
}

// Start запускает планировщик в фоне
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Start: scheduler started with %d jobs", len(s.jobs))
}

// Stop останавливает планировщик и ждет завершения выполняющихся задач или отмены ctx
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		s.logger.Info("Stop: scheduler stopped")
	case <-ctx.Done():
		s.logger.Warn("Stop: scheduler stop timed out: %v", ctx.Err())
	}
}

// Names возвращает имена зарегистрированных задач
func (s *Scheduler) Names() []string {
	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RunNow синхронно выполняет задачу. Возвращает ErrJobRunning, если задача уже выполняется.
func (s *Scheduler) RunNow(ctx context.Context, name string) (int, error) {
	j, ok := s.jobs[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	if !j.mu.TryLock() {
		s.logger.Warn("RunNow: job %s is already running", name)
		return 0, ErrJobRunning
	}
	defer j.mu.Unlock()

	return s.run(ctx, name, j)
}

func (s *Scheduler) scheduled(name string, j *job) {
	if !j.mu.TryLock() {
		s.logger.Warn("scheduled: previous run of %s still in progress, skipping", name)
		return
	}
	defer j.mu.Unlock()

	_, _ = s.run(context.Background(), name, j)
}

func (s *Scheduler) run(ctx context.Context, name string, j *job) (int, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	s.logger.Info("run: job %s started", name)
	start := time.Now()
	items, err := j.fn(ctx)
	elapsed := time.Since(start)
	s.metrics.ObserveJob(name, elapsed, items, err)

	if err != nil {
		s.logger.Error("run: job %s failed after %s: %v", name, elapsed, err)
		return items, err
	}
	s.logger.Info("run: job %s finished in %s, items=%d", name, elapsed, items)
	return items, nil
}

// cronLogger адаптер Logger к cron.Logger
type cronLogger struct {
	logger Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info("cron: %s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error("cron: %s: %v %v", msg, err, keysAndValues)
}
