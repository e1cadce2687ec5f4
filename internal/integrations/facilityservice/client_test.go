package facilityservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-CourtSlotService/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/internal/facilities/100", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":100,"name":"Club Norte","requires_deposit":true,"deposit_percentage":50,
			"expiration_minutes":30,"allows_recurring":true,"staff_user_ids":[10,11],"timezone":"America/Argentina/Buenos_Aires"}`))
	})
	mux.HandleFunc("/internal/courts/1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":1,"facility_id":100,"sport_id":3,"name":"Cancha 1","base_price":"3000.00","state":"ENABLED"}`))
	})
	mux.HandleFunc("/internal/facilities/100/courts", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("sport_id"))
		_, _ = w.Write([]byte(`[{"id":1,"facility_id":100,"sport_id":3,"base_price":3000,"state":"ENABLED"},
			{"id":2,"facility_id":100,"sport_id":3,"base_price":2800,"state":"MAINTENANCE"}]`))
	})
	mux.HandleFunc("/internal/courts/500", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GetFacility(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL, time.Second, nopLogger{})

	f, err := client.GetFacility(context.Background(), 100)
	require.NoError(t, err)
	assert.True(t, f.RequiresDeposit)
	assert.Equal(t, 50, f.DepositPercentage)
	assert.True(t, f.IsStaff(11))
}

func TestClient_GetCourt(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL, time.Second, nopLogger{})

	c, err := client.GetCourt(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.CourtEnabled, c.State)
	assert.True(t, c.BasePrice.Equal(decimal.NewFromInt(3000)))

	_, err = client.GetCourt(context.Background(), 2)
	assert.ErrorIs(t, err, ErrCourtNotFound)

	_, err = client.GetCourt(context.Background(), 500)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestClient_ListCourts(t *testing.T) {
	srv := newTestServer(t)
	client := NewClient(srv.URL, time.Second, nopLogger{})

	courts, err := client.ListCourts(context.Background(), 100, 3)
	require.NoError(t, err)
	require.Len(t, courts, 2)
	assert.False(t, courts[1].IsEnabled())
}
