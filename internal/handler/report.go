package handler

import (
	"dryclean-pos/internal/service"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

func (h *ReportHandler) Sales(c echo.Context) error {
	ctx := c.Request().Context()

	from, err := parseTimeParam(c, "date_from", false)
	if err != nil {
		return err
	}
	to, err := parseTimeParam(c, "date_to", true)
	if err != nil {
		return err
	}

	report, err := h.reportService.Sales(ctx, from, to)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()

	dashboard, err := h.reportService.Dashboard(ctx, time.Now())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dashboard)
}
