package update_recurring

import (
	"github.com/m04kA/SMC-CourtSlotService/internal/service/recurring"
)

// CancelRecurringResponse HTTP response model
type CancelRecurringResponse struct {
	RecurringBookingID int64 `json:"recurringBookingId"`
	CancelledSlots     int64 `json:"cancelledSlots"`
}

// FromCancelResponse конвертирует ответ сервиса в HTTP response
func FromCancelResponse(resp *recurring.CancelResponse) *CancelRecurringResponse {
	return &CancelRecurringResponse{
		RecurringBookingID: resp.RecurringBookingID,
		CancelledSlots:     resp.CancelledSlots,
	}
}
