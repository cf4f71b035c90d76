package handler

import (
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/model"
	"dryclean-pos/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type SettingsHandler struct {
	settingsService service.BusinessSettingsService
}

func NewSettingsHandler(settingsService service.BusinessSettingsService) *SettingsHandler {
	return &SettingsHandler{
		settingsService: settingsService,
	}
}

func (h *SettingsHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	settings, err := h.settingsService.Get(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.BusinessSettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	settings, err := h.settingsService.Update(ctx, actorOf(c).ID, &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) UpdateCountry(c echo.Context) error {
	ctx := c.Request().Context()

	var req model.CountrySettings
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	settings, err := h.settingsService.UpdateCountry(ctx, actorOf(c).ID, &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, settings)
}

func (h *SettingsHandler) UpdateTax(c echo.Context) error {
	ctx := c.Request().Context()

	var req model.TaxSettings
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	settings, err := h.settingsService.UpdateTax(ctx, actorOf(c).ID, &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, settings)
}
