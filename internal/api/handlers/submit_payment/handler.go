package submit_payment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtSlotService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtSlotService/internal/service/payments"
)

const (
	msgInvalidSlotID      = "некорректный ID слота"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgSlotNotFound       = "слот не найден"
	msgForbidden          = "доступ запрещен"
	msgAlreadySubmitted   = "оплата по слоту уже отправлена"
	msgSlotNotReserved    = "слот не ожидает оплату депозита"
	msgCashNotAllowed     = "наличные не принимаются как подтверждение депозита"
	msgAmountMismatch     = "сумма не совпадает с депозитом"
)

type Handler struct {
	service PaymentService
	logger  Logger
}

func NewHandler(service PaymentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/slots/{slotId}/payment
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := handlers.PathInt64(r, "slotId")
	if err != nil {
		h.logger.Warn("POST /slots/{id}/payment - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /slots/{id}/payment - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req SubmitPaymentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /slots/{id}/payment - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.SubmitProof(r.Context(), req.ToServiceRequest(slotID, userID))
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrSlotNotFound):
			h.logger.Warn("POST /slots/{id}/payment - Slot not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, payments.ErrAccessDenied):
			h.logger.Warn("POST /slots/{id}/payment - Access denied: slot_id=%d, user_id=%d", slotID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, payments.ErrAlreadySubmitted):
			h.logger.Warn("POST /slots/{id}/payment - Already submitted: slot_id=%d", slotID)
			handlers.RespondConflict(w, msgAlreadySubmitted)

		case errors.Is(err, payments.ErrSlotNotReserved):
			h.logger.Warn("POST /slots/{id}/payment - Slot not reserved: slot_id=%d", slotID)
			handlers.RespondConflict(w, msgSlotNotReserved)

		case errors.Is(err, payments.ErrCashNotAllowed):
			h.logger.Warn("POST /slots/{id}/payment - Cash not allowed: slot_id=%d", slotID)
			handlers.RespondBadRequest(w, msgCashNotAllowed)

		case errors.Is(err, payments.ErrAmountMismatch):
			h.logger.Warn("POST /slots/{id}/payment - Amount mismatch: slot_id=%d, amount=%s", slotID, req.Amount)
			handlers.RespondBadRequest(w, msgAmountMismatch)

		default:
			if handlers.RespondDomainError(w, err) {
				h.logger.Warn("POST /slots/{id}/payment - Rejected: slot_id=%d, error=%v", slotID, err)
			} else {
				h.logger.Error("POST /slots/{id}/payment - Failed to submit payment: slot_id=%d, error=%v", slotID, err)
			}
		}
		return
	}

	h.logger.Info("POST /slots/{id}/payment - Payment submitted: slot_id=%d, payment_id=%d", slotID, result.Payment.ID)
	handlers.RespondJSON(w, http.StatusCreated, FromServiceResult(result))
}
