package handler

import (
	"dryclean-pos/internal/service"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToHTTPError(t *testing.T) {
	tests := []struct {
		kind   service.ErrorKind
		status int
	}{
		{service.KindNotFound, http.StatusNotFound},
		{service.KindForbidden, http.StatusForbidden},
		{service.KindUnauthorized, http.StatusUnauthorized},
		{service.KindValidation, http.StatusBadRequest},
		{service.KindConflict, http.StatusConflict},
		{service.KindInvalidTransition, http.StatusConflict},
		{service.KindAlreadyPaid, http.StatusConflict},
		{service.KindInsufficientPoints, http.StatusBadRequest},
		{service.KindProgramDisabled, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			err := toHTTPError(fmt.Errorf("wrapped: %w", &service.Error{Kind: tt.kind, Message: "boom"}))
			var httpErr *echo.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, tt.status, httpErr.Code)
			assert.Equal(t, "boom", httpErr.Message)
		})
	}

	plain := errors.New("db down")
	assert.Same(t, plain, toHTTPError(plain))
}

func queryContext(query string) echo.Context {
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestParseTimeParam(t *testing.T) {
	got, err := parseTimeParam(queryContext(""), "date_from", false)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = parseTimeParam(queryContext("date_from=2024-03-05"), "date_from", false)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *got)

	got, err = parseTimeParam(queryContext("date_to=2024-03-05"), "date_to", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 23, 59, 59, 999999999, time.UTC), *got)

	got, err = parseTimeParam(queryContext("date_to=2024-03-05T10:00:00%2B02:00"), "date_to", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC), *got)

	_, err = parseTimeParam(queryContext("date_from=yesterday"), "date_from", false)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestParseLimit(t *testing.T) {
	limit, err := parseLimit(queryContext("limit=25"))
	require.NoError(t, err)
	assert.Equal(t, 25, limit)

	limit, err = parseLimit(queryContext(""))
	require.NoError(t, err)
	assert.Equal(t, 0, limit)

	_, err = parseLimit(queryContext("limit=-3"))
	assert.Error(t, err)
}
