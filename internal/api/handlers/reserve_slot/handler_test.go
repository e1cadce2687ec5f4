package reserve_slot

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtSlotService/internal/api/middleware"
	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
	"github.com/m04kA/SMC-CourtSlotService/internal/testutil"
	reserveSlot "github.com/m04kA/SMC-CourtSlotService/internal/usecase/reserve_slot"
	"github.com/m04kA/SMC-CourtSlotService/pkg/ptr"
)

type stubUseCase struct {
	got  *reserveSlot.Request
	resp *reserveSlot.Response
	err  error
}

func (s *stubUseCase) Execute(_ context.Context, req *reserveSlot.Request) (*reserveSlot.Response, error) {
	s.got = req
	return s.resp, s.err
}

func newRouter(uc UseCase) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.OptionalAuth)
	r.HandleFunc("/slots/{slotId}/reserve", NewHandler(uc, testutil.Logger()).Handle).Methods(http.MethodPost)
	return r
}

func TestHandle(t *testing.T) {
	start := time.Date(2026, 3, 3, 18, 0, 0, 0, time.UTC)
	deadline := start.Add(-time.Hour)
	uc := &stubUseCase{resp: &reserveSlot.Response{
		Slot: &domain.Slot{
			ID: 7, CourtID: 1, FacilityID: 1, StartAt: start, DurationMinutes: 60,
			TotalPrice: decimal.NewFromInt(3000), Status: domain.SlotReserved,
			Client: &domain.ClientInfo{Name: "Juan", Surname: "Perez", Phone: "1155550000"},
		},
		RequiresDeposit:    true,
		DepositAmount:      ptr.Ptr(decimal.NewFromInt(1500)),
		ExpirationDeadline: &deadline,
	}}

	body := `{"name":"Juan","surname":"Perez","phone":"1155550000"}`
	req := httptest.NewRequest(http.MethodPost, "/slots/7/reserve", strings.NewReader(body))
	req.Header.Set(middleware.UserIDHeader, "10")
	rec := httptest.NewRecorder()

	newRouter(uc).ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NotNil(t, uc.got)
	assert.Equal(t, int64(7), uc.got.SlotID)
	assert.Equal(t, "1155550000", uc.got.Client.Phone)
	require.NotNil(t, uc.got.OwnerUserID)
	assert.Equal(t, int64(10), *uc.got.OwnerUserID)

	var resp ReserveSlotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.RequiresDeposit)
	require.NotNil(t, resp.DepositAmount)
	assert.Equal(t, "1500.00", *resp.DepositAmount)
	assert.Equal(t, string(domain.SlotReserved), resp.Slot.Status)
	require.NotNil(t, resp.ExpirationDeadline)
	assert.Equal(t, deadline.Format(time.RFC3339), *resp.ExpirationDeadline)
}

func TestHandle_Anonymous(t *testing.T) {
	uc := &stubUseCase{resp: &reserveSlot.Response{Slot: &domain.Slot{ID: 7, Status: domain.SlotConfirmed}}}

	req := httptest.NewRequest(http.MethodPost, "/slots/7/reserve",
		strings.NewReader(`{"name":"Juan","surname":"Perez","phone":"111"}`))
	rec := httptest.NewRecorder()

	newRouter(uc).ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Nil(t, uc.got.OwnerUserID)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		body   string
		err    error
		status int
	}{
		{name: "invalid slot id", path: "/slots/abc/reserve", body: `{}`, status: http.StatusBadRequest},
		{name: "unknown field", path: "/slots/7/reserve", body: `{"foo":1}`, status: http.StatusBadRequest},
		{name: "not found", path: "/slots/7/reserve", body: `{}`, err: reserveSlot.ErrSlotNotFound, status: http.StatusNotFound},
		{name: "taken", path: "/slots/7/reserve", body: `{}`, err: reserveSlot.ErrSlotNotAvailable, status: http.StatusConflict},
		{name: "limit", path: "/slots/7/reserve", body: `{}`, err: reserveSlot.ErrTooManyActiveSlots, status: http.StatusConflict},
		{name: "in past", path: "/slots/7/reserve", body: `{}`, err: reserveSlot.ErrSlotInPast, status: http.StatusBadRequest},
		{name: "invalid input", path: "/slots/7/reserve", body: `{}`,
			err: fmt.Errorf("%w: phone is required", reserveSlot.ErrInvalidInput), status: http.StatusBadRequest},
		{name: "rate limited", path: "/slots/7/reserve", body: `{}`,
			err: fmt.Errorf("%w: too many attempts", domain.ErrRateLimited), status: http.StatusTooManyRequests},
		{name: "internal", path: "/slots/7/reserve", body: `{}`,
			err: fmt.Errorf("%w: db down", reserveSlot.ErrInternal), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &stubUseCase{err: tt.err}
			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			rec := httptest.NewRecorder()

			newRouter(uc).ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code)
		})
	}
}
