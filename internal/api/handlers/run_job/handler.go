package run_job

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-CourtSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtSlotService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtSlotService/internal/jobs"
)

const (
	msgMissingUserID = "отсутствует ID пользователя"
	msgForbidden     = "доступ запрещен"
	msgUnknownJob    = "задача не найдена"
	msgJobRunning    = "задача уже выполняется"
)

// Handler ручной запуск периодической задачи, доступен только администраторам из конфигурации
type Handler struct {
	runner JobRunner
	admins map[int64]struct{}
	logger Logger
}

func NewHandler(runner JobRunner, adminUserIDs []int64, logger Logger) *Handler {
	admins := make(map[int64]struct{}, len(adminUserIDs))
	for _, id := range adminUserIDs {
		admins[id] = struct{}{}
	}
	return &Handler{
		runner: runner,
		admins: admins,
		logger: logger,
	}
}

// Handle POST /api/v1/jobs/{name}/run
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /jobs/{name}/run - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}
	if _, ok := h.admins[userID]; !ok {
		h.logger.Warn("POST /jobs/{name}/run - Access denied: job=%s, user_id=%d", name, userID)
		handlers.RespondForbidden(w, msgForbidden)
		return
	}

	start := time.Now()
	items, err := h.runner.RunNow(r.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, jobs.ErrUnknownJob):
			h.logger.Warn("POST /jobs/{name}/run - Unknown job: job=%s", name)
			handlers.RespondNotFound(w, msgUnknownJob)

		case errors.Is(err, jobs.ErrJobRunning):
			h.logger.Warn("POST /jobs/{name}/run - Job already running: job=%s", name)
			handlers.RespondConflict(w, msgJobRunning)

		default:
			h.logger.Error("POST /jobs/{name}/run - Job failed: job=%s, error=%v", name, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	elapsed := time.Since(start)
	h.logger.Info("POST /jobs/{name}/run - Job finished: job=%s, items=%d, user_id=%d", name, items, userID)
	handlers.RespondJSON(w, http.StatusOK, &RunJobResponse{
		Job:        name,
		Items:      items,
		DurationMs: elapsed.Milliseconds(),
	})
}
