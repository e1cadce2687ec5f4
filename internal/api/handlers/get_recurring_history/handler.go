package get_recurring_history

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtSlotService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtSlotService/internal/service/recurring"
)

const (
	msgInvalidID     = "некорректный ID постоянной брони"
	msgMissingUserID = "отсутствует ID пользователя"
	msgNotFound      = "постоянная бронь не найдена"
	msgForbidden     = "доступ запрещен"
)

type Handler struct {
	service RecurringService
	logger  Logger
}

func NewHandler(service RecurringService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/recurring-bookings/{id}/history
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	id, err := handlers.PathInt64(r, "id")
	if err != nil {
		h.logger.Warn("GET /recurring-bookings/{id}/history - Invalid recurring booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /recurring-bookings/{id}/history - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	entries, err := h.service.History(r.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, recurring.ErrRecurringNotFound):
			h.logger.Warn("GET /recurring-bookings/{id}/history - Not found: id=%d", id)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, recurring.ErrAccessDenied):
			h.logger.Warn("GET /recurring-bookings/{id}/history - Access denied: id=%d, user_id=%d", id, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("GET /recurring-bookings/{id}/history - Failed to get history: id=%d, error=%v", id, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /recurring-bookings/{id}/history - History retrieved: id=%d, entries=%d", id, len(entries))
	handlers.RespondJSON(w, http.StatusOK, FromDomain(id, entries))
}
