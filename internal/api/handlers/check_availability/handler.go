package check_availability

import (
	"net/http"

	"github.com/m04kA/SMC-CourtSlotService/internal/api/handlers"
)

const (
	msgInvalidCourtID = "некорректный ID корта"
	msgInvalidRange   = "некорректный диапазон дат, ожидается from и to в формате YYYY-MM-DD"
)

type Handler struct {
	service SlotService
	logger  Logger
}

func NewHandler(service SlotService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/courts/{courtId}/slots?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	courtID, err := handlers.PathInt64(r, "courtId")
	if err != nil {
		h.logger.Warn("GET /courts/{id}/slots - Invalid court ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCourtID)
		return
	}

	fromDay, toDay, err := parseRange(r.URL.Query())
	if err != nil {
		h.logger.Warn("GET /courts/{id}/slots - Invalid range: court_id=%d, error=%v", courtID, err)
		handlers.RespondBadRequest(w, msgInvalidRange)
		return
	}

	slots, err := h.service.CheckAvailabilityByDays(r.Context(), courtID, fromDay, toDay)
	if err != nil {
		if handlers.RespondDomainError(w, err) {
			h.logger.Warn("GET /courts/{id}/slots - Rejected: court_id=%d, error=%v", courtID, err)
		} else {
			h.logger.Error("GET /courts/{id}/slots - Failed to check availability: court_id=%d, error=%v", courtID, err)
		}
		return
	}

	h.logger.Info("GET /courts/{id}/slots - Availability retrieved: court_id=%d, slots=%d", courtID, len(slots))
	handlers.RespondJSON(w, http.StatusOK, FromDomain(courtID, fromDay, toDay, slots))
}
