package handler

import (
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/middleware"
	"dryclean-pos/internal/service"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

var errorStatus = map[service.ErrorKind]int{
	service.KindNotFound:               http.StatusNotFound,
	service.KindForbidden:              http.StatusForbidden,
	service.KindUnauthorized:           http.StatusUnauthorized,
	service.KindValidation:             http.StatusBadRequest,
	service.KindConflict:               http.StatusConflict,
	service.KindInvalidTransition:      http.StatusConflict,
	service.KindInvalidPaymentMethod:   http.StatusBadRequest,
	service.KindAlreadyPaid:            http.StatusConflict,
	service.KindInsufficientPoints:     http.StatusBadRequest,
	service.KindBelowMinimumRedemption: http.StatusBadRequest,
	service.KindProgramDisabled:        http.StatusBadRequest,
	service.KindCustomerExcluded:       http.StatusBadRequest,
}

// toHTTPError maps business errors onto their status code. Anything else is
// returned untouched and ends up as a 500 from echo.
func toHTTPError(err error) error {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		status, ok := errorStatus[svcErr.Kind]
		if !ok {
			status = http.StatusBadRequest
		}
		return echo.NewHTTPError(status, svcErr.Message)
	}
	return err
}

func actorOf(c echo.Context) *dto.Actor {
	actor := middleware.ActorFromContext(c)
	if actor == nil {
		return &dto.Actor{}
	}
	return actor
}

// parseTimeParam accepts a date (2006-01-02) or an RFC3339 timestamp. endOfDay
// moves a bare date to its last instant so date ranges are inclusive.
func parseTimeParam(c echo.Context, name string, endOfDay bool) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func parseLimit(c echo.Context) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	return limit, nil
}
