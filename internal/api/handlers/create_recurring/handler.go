package create_recurring

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtSlotService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtSlotService/internal/service/recurring"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDate        = "некорректная дата, ожидается формат YYYY-MM-DD"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgCourtNotFound      = "корт не найден"
	msgCourtNotEnabled    = "корт выключен или на обслуживании"
	msgNotAllowed         = "площадка не принимает постоянные брони"
	msgAlreadyExists      = "постоянная бронь на это время уже существует"
	msgForbidden          = "доступ запрещен"
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

// Handle POST /api/v1/recurring-bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /recurring-bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateRecurringRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /recurring-bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	serviceReq, err := req.ToServiceRequest(userID)
	if err != nil {
		h.logger.Warn("POST /recurring-bookings - Invalid date: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.Create(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, recurring.ErrCourtNotFound):
			h.logger.Warn("POST /recurring-bookings - Court not found: court_id=%d", req.CourtID)
			handlers.RespondNotFound(w, msgCourtNotFound)

		case errors.Is(err, recurring.ErrCourtNotEnabled):
			h.logger.Warn("POST /recurring-bookings - Court not enabled: court_id=%d", req.CourtID)
			handlers.RespondBadRequest(w, msgCourtNotEnabled)

		case errors.Is(err, recurring.ErrRecurringNotAllowed):
			h.logger.Warn("POST /recurring-bookings - Recurring not allowed: court_id=%d", req.CourtID)
			handlers.RespondBadRequest(w, msgNotAllowed)

		case errors.Is(err, recurring.ErrAlreadyExists):
			h.logger.Warn("POST /recurring-bookings - Already exists: court_id=%d, weekday=%d, start=%s",
				req.CourtID, req.Weekday, req.StartTime)
			handlers.RespondConflict(w, msgAlreadyExists)

		case errors.Is(err, recurring.ErrAccessDenied):
			h.logger.Warn("POST /recurring-bookings - Access denied: court_id=%d, user_id=%d", req.CourtID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			if handlers.RespondDomainError(w, err) {
				h.logger.Warn("POST /recurring-bookings - Rejected: court_id=%d, error=%v", req.CourtID, err)
			} else {
				h.logger.Error("POST /recurring-bookings - Failed to create recurring booking: court_id=%d, error=%v",
					req.CourtID, err)
			}
		}
		return
	}

	h.logger.Info("POST /recurring-bookings - Recurring booking created: id=%d, court_id=%d, materialized=%d",
		result.Booking.ID, result.Booking.CourtID, result.Materialized)
	handlers.RespondJSON(w, http.StatusCreated, &CreateRecurringResponse{
		Booking:      FromDomain(result.Booking),
		Materialized: result.Materialized,
	})
}
