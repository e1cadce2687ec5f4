package reserve_slot

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtSlotService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	reserveSlot "github.com/m04kA/SMC-CourtSlotService/internal/usecase/reserve_slot"
)

const (
	msgInvalidSlotID      = "некорректный ID слота"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgSlotNotFound       = "слот не найден"
	msgSlotNotAvailable   = "слот уже недоступен для бронирования"
	msgSlotInPast         = "слот уже начался"
	msgTooManyActiveSlots = "достигнут лимит активных бронирований"
	msgRateLimited        = "слишком много попыток бронирования, попробуйте позже"
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

// Handle POST /api/v1/slots/{slotId}/reserve
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := handlers.PathInt64(r, "slotId")
	if err != nil {
		h.logger.Warn("POST /slots/{id}/reserve - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	var req ReserveSlotRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /slots/{id}/reserve - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Бронь без аккаунта допустима, владельцем становится пользователь из заголовка, если он есть
	var ownerUserID *int64
	if userID, ok := middleware.GetUserID(r.Context()); ok {
		ownerUserID = &userID
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(slotID, ownerUserID))
	if err != nil {
		switch {
		case errors.Is(err, reserveSlot.ErrSlotNotFound):
			h.logger.Warn("POST /slots/{id}/reserve - Slot not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, reserveSlot.ErrSlotNotAvailable):
			h.logger.Warn("POST /slots/{id}/reserve - Slot not available: slot_id=%d", slotID)
			handlers.RespondConflict(w, msgSlotNotAvailable)

		case errors.Is(err, reserveSlot.ErrTooManyActiveSlots):
			h.logger.Warn("POST /slots/{id}/reserve - Too many active slots: slot_id=%d", slotID)
			handlers.RespondConflict(w, msgTooManyActiveSlots)

		case errors.Is(err, reserveSlot.ErrSlotInPast):
			h.logger.Warn("POST /slots/{id}/reserve - Slot in past: slot_id=%d", slotID)
			handlers.RespondBadRequest(w, msgSlotInPast)

		case errors.Is(err, domain.ErrRateLimited):
			h.logger.Warn("POST /slots/{id}/reserve - Rate limited: slot_id=%d", slotID)
			handlers.RespondError(w, http.StatusTooManyRequests, msgRateLimited)

		default:
			if handlers.RespondDomainError(w, err) {
				h.logger.Warn("POST /slots/{id}/reserve - Rejected: slot_id=%d, error=%v", slotID, err)
			} else {
				h.logger.Error("POST /slots/{id}/reserve - Failed to reserve slot: slot_id=%d, error=%v", slotID, err)
			}
		}
		return
	}

	h.logger.Info("POST /slots/{id}/reserve - Slot reserved: slot_id=%d, status=%s", slotID, result.Slot.Status)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
