package slot_action

import (
	"context"
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtSlotService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	"github.com/m04kA/SMC-CourtSlotService/internal/service/slots"
)

// Action операция над слотом, последний сегмент пути
type Action string

const (
	ActionCancel           Action = "cancel"
	ActionCancelOccurrence Action = "cancel-occurrence"
	ActionNoShow           Action = "no-show"
	ActionBlock            Action = "block"
	ActionReopen           Action = "reopen"
)

const (
	msgInvalidSlotID     = "некорректный ID слота"
	msgMissingUserID     = "отсутствует ID пользователя"
	msgNotFound          = "слот не найден"
	msgForbidden         = "доступ запрещен"
	msgInvalidTransition = "текущий статус слота не допускает операцию"
	msgNotRecurring      = "слот не относится к постоянной брони"
	msgNoShowTooEarly    = "слот еще не начался"
)

type Handler struct {
	action  Action
	service SlotService
	logger  Logger
}

func NewHandler(action Action, service SlotService, logger Logger) *Handler {
	return &Handler{
		action:  action,
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/slots/{slotId}/{action}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := handlers.PathInt64(r, "slotId")
	if err != nil {
		h.logger.Warn("PATCH /slots/{id}/%s - Invalid slot ID: %v", h.action, err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /slots/{id}/%s - Missing user ID", h.action)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	slot, err := h.apply(r.Context(), slotID, userID)
	if err != nil {
		switch {
		case errors.Is(err, slots.ErrSlotNotFound):
			h.logger.Warn("PATCH /slots/{id}/%s - Slot not found: slot_id=%d", h.action, slotID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, domain.ErrForbidden):
			h.logger.Warn("PATCH /slots/{id}/%s - Access denied: slot_id=%d, user_id=%d", h.action, slotID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, domain.ErrConflict):
			h.logger.Warn("PATCH /slots/{id}/%s - Invalid transition: slot_id=%d, error=%v", h.action, slotID, err)
			handlers.RespondConflict(w, msgInvalidTransition)

		case errors.Is(err, slots.ErrNotRecurring):
			h.logger.Warn("PATCH /slots/{id}/%s - Slot is not recurring: slot_id=%d", h.action, slotID)
			handlers.RespondBadRequest(w, msgNotRecurring)

		case errors.Is(err, slots.ErrNoShowTooEarly):
			h.logger.Warn("PATCH /slots/{id}/%s - Slot has not started: slot_id=%d", h.action, slotID)
			handlers.RespondBadRequest(w, msgNoShowTooEarly)

		default:
			if handlers.RespondDomainError(w, err) {
				h.logger.Warn("PATCH /slots/{id}/%s - Rejected: slot_id=%d, error=%v", h.action, slotID, err)
			} else {
				h.logger.Error("PATCH /slots/{id}/%s - Failed: slot_id=%d, error=%v", h.action, slotID, err)
			}
		}
		return
	}

	h.logger.Info("PATCH /slots/{id}/%s - Done: slot_id=%d, user_id=%d, status=%s",
		h.action, slotID, userID, slot.Status)
	handlers.RespondJSON(w, http.StatusOK, handlers.FromDomainSlot(slot))
}

func (h *Handler) apply(ctx context.Context, slotID, userID int64) (*domain.Slot, error) {
	switch h.action {
	case ActionCancel:
		return h.service.Cancel(ctx, slotID, userID)
	case ActionCancelOccurrence:
		return h.service.CancelRecurringOccurrence(ctx, slotID, userID)
	case ActionNoShow:
		return h.service.MarkNoShow(ctx, slotID, userID)
	case ActionBlock:
		return h.service.Block(ctx, slotID, userID)
	case ActionReopen:
		return h.service.Reopen(ctx, slotID, userID)
	default:
		return nil, errors.New("unknown slot action " + string(h.action))
	}
}
