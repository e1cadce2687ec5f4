package generate_slots

import (
	"errors"
	"io"
	"net/http"

	"github.com/m04kA/SMC-CourtSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtSlotService/internal/api/middleware"
	generateSlots "github.com/m04kA/SMC-CourtSlotService/internal/usecase/generate_slots"
)

const (
	msgInvalidCourtID     = "некорректный ID корта"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgCourtNotFound      = "корт не найден"
	msgCourtNotEnabled    = "корт выключен или на обслуживании"
	msgForbidden          = "доступ запрещен"
)

type Handler struct {
	useCase UseCase
	logger  Logger
}

func NewHandler(useCase UseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/courts/{courtId}/slots/generate
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	courtID, err := handlers.PathInt64(r, "courtId")
	if err != nil {
		h.logger.Warn("POST /courts/{id}/slots/generate - Invalid court ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidCourtID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /courts/{id}/slots/generate - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req GenerateSlotsRequest
	if err := handlers.DecodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.logger.Warn("POST /courts/{id}/slots/generate - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(courtID, userID))
	if err != nil {
		switch {
		case errors.Is(err, generateSlots.ErrCourtNotFound):
			h.logger.Warn("POST /courts/{id}/slots/generate - Court not found: court_id=%d", courtID)
			handlers.RespondNotFound(w, msgCourtNotFound)

		case errors.Is(err, generateSlots.ErrCourtNotEnabled):
			h.logger.Warn("POST /courts/{id}/slots/generate - Court not enabled: court_id=%d", courtID)
			handlers.RespondBadRequest(w, msgCourtNotEnabled)

		case errors.Is(err, generateSlots.ErrAccessDenied):
			h.logger.Warn("POST /courts/{id}/slots/generate - Access denied: court_id=%d, user_id=%d", courtID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			if handlers.RespondDomainError(w, err) {
				h.logger.Warn("POST /courts/{id}/slots/generate - Rejected: court_id=%d, error=%v", courtID, err)
			} else {
				h.logger.Error("POST /courts/{id}/slots/generate - Failed to generate slots: court_id=%d, error=%v",
					courtID, err)
			}
		}
		return
	}

	h.logger.Info("POST /courts/{id}/slots/generate - Slots generated: court_id=%d, created=%d", courtID, result.Created)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
