package update_court_schedule

import (
	"errors"
	"net/http"
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtSlotService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtSlotService/internal/service/schedule"
	"github.com/m04kA/SMC-CourtSlotService/internal/service/schedule/models"
)

const (
	msgInvalidCourtID     = "некорректный ID корта"
	msgInvalidWeekday     = "некорректный день недели, ожидается 0..6"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgCourtNotFound      = "корт не найден"
	msgTemplateNotFound   = "шаблон расписания не найден"
	msgPriceRuleNotFound  = "правило цены не найдено"
	msgForbidden          = "доступ запрещен"
	msgInvalidData        = "некорректные данные расписания"
)

// Handler управление шаблонами расписания и правилами цены корта (только персонал площадки)
type Handler struct {
	service ScheduleService
	logger  Logger
}

func NewHandler(service ScheduleService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// HandleUpsertTemplate PUT /api/v1/courts/{courtId}/schedule/{weekday}
func (h *Handler) HandleUpsertTemplate(w http.ResponseWriter, r *http.Request) {
	const route = "PUT /courts/{id}/schedule/{weekday}"

	courtID, weekday, userID, ok := h.parse(w, r, route)
	if !ok {
		return
	}

	var req models.UpsertTemplateRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID, req.CourtID, req.Weekday = userID, courtID, weekday

	result, err := h.service.UpsertTemplate(r.Context(), &req)
	if err != nil {
		h.respondError(w, route, courtID, userID, err)
		return
	}

	h.logger.Info("%s - Template saved: court_id=%d, weekday=%d", route, courtID, weekday)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleDeleteTemplate DELETE /api/v1/courts/{courtId}/schedule/{weekday}
func (h *Handler) HandleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	const route = "DELETE /courts/{id}/schedule/{weekday}"

	courtID, weekday, userID, ok := h.parse(w, r, route)
	if !ok {
		return
	}

	if err := h.service.DeleteTemplate(r.Context(), courtID, weekday, userID); err != nil {
		h.respondError(w, route, courtID, userID, err)
		return
	}

	h.logger.Info("%s - Template deleted: court_id=%d, weekday=%d", route, courtID, weekday)
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpsertPriceRule PUT /api/v1/courts/{courtId}/price-rules/{weekday}
func (h *Handler) HandleUpsertPriceRule(w http.ResponseWriter, r *http.Request) {
	const route = "PUT /courts/{id}/price-rules/{weekday}"

	courtID, weekday, userID, ok := h.parse(w, r, route)
	if !ok {
		return
	}

	var req models.UpsertPriceRuleRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID, req.CourtID, req.Weekday = userID, courtID, weekday

	result, err := h.service.UpsertPriceRule(r.Context(), &req)
	if err != nil {
		h.respondError(w, route, courtID, userID, err)
		return
	}

	h.logger.Info("%s - Price rule saved: court_id=%d, weekday=%d, percentage=%d",
		route, courtID, weekday, result.Percentage)
	handlers.RespondJSON(w, http.StatusOK, result)
}

// HandleDeletePriceRule DELETE /api/v1/courts/{courtId}/price-rules/{weekday}
func (h *Handler) HandleDeletePriceRule(w http.ResponseWriter, r *http.Request) {
	const route = "DELETE /courts/{id}/price-rules/{weekday}"

	courtID, weekday, userID, ok := h.parse(w, r, route)
	if !ok {
		return
	}

	if err := h.service.DeletePriceRule(r.Context(), courtID, weekday, userID); err != nil {
		h.respondError(w, route, courtID, userID, err)
		return
	}

	h.logger.Info("%s - Price rule deleted: court_id=%d, weekday=%d", route, courtID, weekday)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) parse(w http.ResponseWriter, r *http.Request, route string) (int64, time.Weekday, int64, bool) {
	courtID, err := handlers.PathInt64(r, "courtId")
	if err != nil {
		h.logger.Warn("%s - Invalid court ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidCourtID)
		return 0, 0, 0, false
	}

	weekday, err := handlers.PathWeekday(r, "weekday")
	if err != nil {
		h.logger.Warn("%s - Invalid weekday: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidWeekday)
		return 0, 0, 0, false
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return 0, 0, 0, false
	}

	return courtID, weekday, userID, true
}

func (h *Handler) respondError(w http.ResponseWriter, route string, courtID, userID int64, err error) {
	switch {
	case errors.Is(err, schedule.ErrCourtNotFound):
		h.logger.Warn("%s - Court not found: court_id=%d", route, courtID)
		handlers.RespondNotFound(w, msgCourtNotFound)

	case errors.Is(err, schedule.ErrTemplateNotFound):
		h.logger.Warn("%s - Template not found: court_id=%d", route, courtID)
		handlers.RespondNotFound(w, msgTemplateNotFound)

	case errors.Is(err, schedule.ErrPriceRuleNotFound):
		h.logger.Warn("%s - Price rule not found: court_id=%d", route, courtID)
		handlers.RespondNotFound(w, msgPriceRuleNotFound)

	case errors.Is(err, schedule.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: court_id=%d, user_id=%d", route, courtID, userID)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, schedule.ErrInvalidInput):
		h.logger.Warn("%s - Invalid data: court_id=%d, error=%v", route, courtID, err)
		handlers.RespondBadRequest(w, msgInvalidData)

	default:
		if handlers.RespondDomainError(w, err) {
			h.logger.Warn("%s - Rejected: court_id=%d, error=%v", route, courtID, err)
		} else {
			h.logger.Error("%s - Failed: court_id=%d, error=%v", route, courtID, err)
		}
	}
}
