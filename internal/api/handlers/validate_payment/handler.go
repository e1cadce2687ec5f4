package validate_payment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-CourtSlotService/internal/api/handlers"
	"github.com/m04kA/SMC-CourtSlotService/internal/api/handlers/submit_payment"
	"github.com/m04kA/SMC-CourtSlotService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtSlotService/internal/service/payments"
)

const (
	msgInvalidPaymentID   = "некорректный ID платежа"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgNotFound           = "платеж не найден"
	msgForbidden          = "доступ запрещен"
	msgNotSubmitted       = "платеж не ожидает проверки"
	msgSlotNotReserved    = "слот больше не ожидает оплату депозита"
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

// HandleApprove POST /api/v1/payments/{paymentId}/approve
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	const route = "POST /payments/{id}/approve"

	paymentID, userID, ok := h.parse(w, r, route)
	if !ok {
		return
	}

	result, err := h.service.Approve(r.Context(), paymentID, userID)
	if err != nil {
		h.respondError(w, route, paymentID, userID, err)
		return
	}

	h.logger.Info("%s - Payment approved: payment_id=%d, slot_id=%d, user_id=%d",
		route, paymentID, result.Slot.ID, userID)
	handlers.RespondJSON(w, http.StatusOK, submit_payment.FromServiceResult(result))
}

// HandleReject POST /api/v1/payments/{paymentId}/reject
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	const route = "POST /payments/{id}/reject"

	paymentID, userID, ok := h.parse(w, r, route)
	if !ok {
		return
	}

	var req RejectPaymentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("%s - Invalid request body: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Reject(r.Context(), paymentID, userID, req.Reason)
	if err != nil {
		h.respondError(w, route, paymentID, userID, err)
		return
	}

	h.logger.Info("%s - Payment rejected: payment_id=%d, slot_id=%d, user_id=%d",
		route, paymentID, result.Slot.ID, userID)
	handlers.RespondJSON(w, http.StatusOK, submit_payment.FromServiceResult(result))
}

func (h *Handler) parse(w http.ResponseWriter, r *http.Request, route string) (int64, int64, bool) {
	paymentID, err := handlers.PathInt64(r, "paymentId")
	if err != nil {
		h.logger.Warn("%s - Invalid payment ID: %v", route, err)
		handlers.RespondBadRequest(w, msgInvalidPaymentID)
		return 0, 0, false
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("%s - Missing user ID", route)
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return 0, 0, false
	}

	return paymentID, userID, true
}

func (h *Handler) respondError(w http.ResponseWriter, route string, paymentID, userID int64, err error) {
	switch {
	case errors.Is(err, payments.ErrPaymentNotFound):
		h.logger.Warn("%s - Payment not found: payment_id=%d", route, paymentID)
		handlers.RespondNotFound(w, msgNotFound)

	case errors.Is(err, payments.ErrAccessDenied):
		h.logger.Warn("%s - Access denied: payment_id=%d, user_id=%d", route, paymentID, userID)
		handlers.RespondForbidden(w, msgForbidden)

	case errors.Is(err, payments.ErrPaymentNotSubmitted):
		h.logger.Warn("%s - Payment not submitted: payment_id=%d", route, paymentID)
		handlers.RespondConflict(w, msgNotSubmitted)

	case errors.Is(err, payments.ErrSlotNotReserved):
		h.logger.Warn("%s - Slot not awaiting deposit: payment_id=%d", route, paymentID)
		handlers.RespondConflict(w, msgSlotNotReserved)

	default:
		if handlers.RespondDomainError(w, err) {
			h.logger.Warn("%s - Rejected: payment_id=%d, error=%v", route, paymentID, err)
		} else {
			h.logger.Error("%s - Failed: payment_id=%d, error=%v", route, paymentID, err)
		}
	}
}
