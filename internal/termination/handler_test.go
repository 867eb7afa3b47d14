package termination

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/hanapbahay/hanapbahay/internal/bookings"
)

func newTestRouter(f *fixture) http.Handler {
	r := chi.NewRouter()
	NewHandler(slog.Default(), f.svc).MountRoutes(r)
	return r
}

func TestEndStayRequiresTenantHeader(t *testing.T) {
	f := newFixture(t, date(2024, time.June, 10))
	router := newTestRouter(f)

	req := httptest.NewRequest(http.MethodPost, "/bookings/b1/end-stay", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Contains(t, rec.Body.String(), TenantHeader)
}

func TestEndStayCountdownResponse(t *testing.T) {
	f := newFixture(t, date(2024, time.June, 10))
	f.bookingRepo.put(activeBooking("b1", 3))
	router := newTestRouter(f)

	req := httptest.NewRequest(http.MethodPost, "/bookings/b1/end-stay", strings.NewReader(`{"immediate_leave":false}`))
	req.Header.Set(TenantHeader, "tenant-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "countdown", body["mode"])
	require.Equal(t, float64(92), body["days_remaining"])
	require.Equal(t, float64(3), body["remaining_advance_months"])
	require.Contains(t, body, "termination_end_date")
}

func TestEndStayForeignTenantIsForbidden(t *testing.T) {
	f := newFixture(t, date(2024, time.June, 10))
	f.bookingRepo.put(activeBooking("b1", 3))
	router := newTestRouter(f)

	req := httptest.NewRequest(http.MethodPost, "/bookings/b1/end-stay", strings.NewReader(`{}`))
	req.Header.Set(TenantHeader, "intruder")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
}

func TestEndStayRunningCountdownConflicts(t *testing.T) {
	f := newFixture(t, date(2024, time.June, 10))
	b := activeBooking("b1", 2)
	b.Termination = &bookings.Termination{
		Mode:        bookings.ModeCountdown,
		InitiatedAt: date(2024, time.May, 10),
		EndDate:     date(2024, time.July, 10),
	}
	f.bookingRepo.put(b)
	router := newTestRouter(f)

	req := httptest.NewRequest(http.MethodPost, "/bookings/b1/end-stay", strings.NewReader(`{"immediate_leave":false}`))
	req.Header.Set(TenantHeader, "tenant-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestCountdownInfoEndpoint(t *testing.T) {
	f := newFixture(t, date(2024, time.June, 10))
	b := activeBooking("b1", 2)
	b.Termination = &bookings.Termination{
		Mode:        bookings.ModeCountdown,
		InitiatedAt: date(2024, time.May, 10),
		EndDate:     date(2024, time.July, 10),
	}
	f.bookingRepo.put(b)
	router := newTestRouter(f)

	req := httptest.NewRequest(http.MethodGet, "/bookings/b1/termination", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, true, body["active"])
	require.Equal(t, float64(30), body["days_remaining"])

	req = httptest.NewRequest(http.MethodGet, "/bookings/missing/termination", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
