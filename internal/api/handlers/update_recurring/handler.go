package update_recurring

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtSlotService/internal/api/handlers/create_recurring"
	"github.com/m04kA/SMC-CourtSlotService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtSlotService/internal/service/recurring"
)

const (
	msgInvalidID     = "некорректный ID постоянной брони"
	msgMissingUserID = "отсутствует ID пользователя"
	msgNotFound      = "постоянная бронь не найдена"
	msgForbidden     = "доступ запрещен"
	msgInvalidState  = "состояние брони не допускает операцию"
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

// HandlePause PATCH /api/v1/recurring-bookings/{id}/pause
func (h *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	const route = "PATCH /recurring-bookings/{id}/pause"

	id, userID, ok := h.parse(w, r, route)
	if !ok {
		return
	}

	booking, err := h.service.Pause(r.Context(), id, userID)
	if err != nil {
		h.respondError(w, route, id, userID, err)
		return
	}

	h.logger.Info("%s - Recurring booking paused: id=%d, user_id=%d", route, id, userID)
	handlers.RespondJSON(w, http.StatusOK, create_recurring.FromDomain(booking))
}

// HandleReactivate PATCH /api/v1/recurring-bookings/{id}/reactivate
func (h *Handler) HandleReactivate(w http.ResponseWriter, r *http.Request) {
	const route = "PATCH /recurring-bookings/{id}/reactivate"

	id, userID, ok := h.parse(w, r, route)
	if !ok {
		return
	}

	booking, err := h.service.Reactivate(r.Context(), id, userID)
	if err != nil {
		h.respondError(w, route, id, userID, err)
		return
	}

	h.logger.Info("%s - Recurring booking reactivated: id=%d, user_id=%d", route, id, userID)
	handlers.RespondJSON(w, http.StatusOK, create_recurring.FromDomain(booking))
}

// HandleCancel DELETE /api/v1/recurring-bookings/{id}
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	const route = "DELETE /recurring-bookings/{id}"

	id, userID, ok := h.parse(w, r, route)
	if !ok {
		return
	}

	result, err := h.service.Cancel(r.Context(), id, userID)
	if err != nil {
		h.respondError(w, route, id, userID, err)
		return
	}

	h.logger.Info("%s - Recurring booking cancelled: id=%d, user_id=%d, cancelled_slots=%d",
		route, id, userID, result.CancelledSlots)
	handlers.RespondJSON(w, http.StatusOK, FromCancelResponse(result))
}

func (h *Handler) parse(w http.ResponseWriter, r *http.Request, route string) (int64, int64, bool) {
	id, err := handlers.PathInt64(r, "id")
	if err != nil {
		h.logger.Warn("%s - Invalid recurring booking ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidID)
		return 0, 0, false
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return 0, 0, false
	}

	return id, userID, true
}

func (h *Handler) respondError(w http.ResponseWriter, route string, id, userID int64, err error) {
	switch {
	case errors.Is(err, recurring.ErrRecurringNotFound):
		h.logger.Warn("%s - Recurring booking not found: id=%d", route, id)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, recurring.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: id=%d, user_id=%d", route, id, userID)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, recurring.ErrInvalidState):
		h.logger.Warn("%s - Invalid state: id=%d", route, id)
		handlers.RespondConflict(w, msgInvalidState)

	default:
		if handlers.RespondDomainError(w, err) {
			h.logger.Warn("%s - Rejected: id=%d, error=%v", route, id, err)
		} else {
			h.logger.Error("%s - Failed: id=%d, error=%v", route, id, err)
		}
	}
}
