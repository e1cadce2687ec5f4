package get_recurring_history

import (
	"time"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

// HistoryEntryResponse HTTP модель записи истории
type HistoryEntryResponse struct {
	ID        int64  `json:"id"`
	Action    string `json:"action"`
	Detail    string `json:"detail,omitempty"`
	ActorID   *int64 `json:"actorId,omitempty"`
	CreatedAt string `json:"createdAt"`
}

// HistoryResponse HTTP response model
type HistoryResponse struct {
	RecurringBookingID int64                  `json:"recurringBookingId"`
	Entries            []HistoryEntryResponse `json:"entries"`
}

// FromDomain конвертирует историю брони в HTTP ответ
func FromDomain(id int64, entries []*domain.HistoryEntry) *HistoryResponse {
	resp := &HistoryResponse{
		RecurringBookingID: id,
		Entries:            make([]HistoryEntryResponse, 0, len(entries)),
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, HistoryEntryResponse{
			ID:        e.ID,
			Action:    string(e.Action),
			Detail:    e.Detail,
			ActorID:   e.ActorID,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		})
	}
	return resp
}
