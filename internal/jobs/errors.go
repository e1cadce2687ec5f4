package jobs

import (
	"errors"
	"fmt"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

var (
	// ErrUnknownJob возвращается при запуске незарегистрированной задачи
	ErrUnknownJob = fmt.Errorf("%w: unknown job", domain.ErrNotFound)

	// ErrJobRunning возвращается, когда задача уже выполняется
	ErrJobRunning = fmt.Errorf("%w: job is already running", domain.ErrConflict)

	// ErrInvalidSpec возвращается при некорректном cron-выражении
	ErrInvalidSpec = errors.New("jobs: invalid cron spec")

	// ErrDuplicateJob возвращается при повторной регистрации задачи с тем же именем
	ErrDuplicateJob = errors.New("jobs: job already registered")
)
