package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hanapbahay/hanapbahay/internal/shared"
)

func TestJSONSetsContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, map[string]string{"k": "v"})

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestProblemUsesProblemJSONMediaType(t *testing.T) {
	rec := httptest.NewRecorder()
	Problem(rec, http.StatusConflict, "Conflict", "countdown already active")

	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Conflict", body.Title)
	require.Equal(t, http.StatusConflict, body.Status)
	require.Equal(t, "countdown already active", body.Detail)
}

func TestRespondErrorMapsDomainErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{shared.ErrNotFound, http.StatusNotFound},
		{shared.ErrNotTenant, http.StatusForbidden},
		{shared.ErrTerminationActive, http.StatusConflict},
		{shared.ErrDuplicateMonth, http.StatusConflict},
		{shared.ErrBookingNotActive, http.StatusUnprocessableEntity},
		{shared.ErrNoAdvanceDeposit, http.StatusUnprocessableEntity},
		{shared.ErrAdvanceExhausted, http.StatusUnprocessableEntity},
		{shared.InsufficientMonthsError(1, 3), http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		RespondError(rec, fmt.Errorf("booking b1: %w", tc.err))

		require.Equal(t, tc.status, rec.Code, tc.err.Error())
		require.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

		var body ProblemDetail
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Contains(t, body.Detail, tc.err.Error())
	}
}

func TestRespondErrorMasksUnknownErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("pq: connection refused at 10.0.0.3"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "internal error", body.Detail)
	require.NotContains(t, body.Detail, "10.0.0.3")
}
