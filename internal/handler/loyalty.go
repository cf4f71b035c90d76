package handler

import (
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type LoyaltyHandler struct {
	loyaltyService  service.LoyaltyService
	settingsService service.LoyaltySettingsService
}

func NewLoyaltyHandler(loyaltyService service.LoyaltyService, settingsService service.LoyaltySettingsService) *LoyaltyHandler {
	return &LoyaltyHandler{
		loyaltyService:  loyaltyService,
		settingsService: settingsService,
	}
}

func (h *LoyaltyHandler) GetSettings(c echo.Context) error {
	ctx := c.Request().Context()

	settings, err := h.settingsService.Get(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, settings)
}

func (h *LoyaltyHandler) UpdateSettings(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.LoyaltySettingsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	settings, err := h.settingsService.Update(ctx, actorOf(c).ID, &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, settings)
}

func (h *LoyaltyHandler) CalculateRedemption(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RedemptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.loyaltyService.CalculateRedemption(ctx, &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *LoyaltyHandler) CustomerLoyalty(c echo.Context) error {
	ctx := c.Request().Context()

	result, err := h.loyaltyService.CustomerLoyalty(ctx, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *LoyaltyHandler) Adjust(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.LoyaltyAdjustRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	entry, err := h.loyaltyService.Adjust(ctx, c.Param("id"), actorOf(c).ID, &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, entry)
}
