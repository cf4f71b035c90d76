package handler

import (
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/model"
	"dryclean-pos/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type CustomerHandler struct {
	customerService service.CustomerService
}

func NewCustomerHandler(customerService service.CustomerService) *CustomerHandler {
	return &CustomerHandler{
		customerService: customerService,
	}
}

func (h *CustomerHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CustomerCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	customer, err := h.customerService.Create(ctx, &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, customer)
}

func (h *CustomerHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	limit, err := parseLimit(c)
	if err != nil {
		return err
	}

	customers, err := h.customerService.List(ctx, dto.CustomerFilter{
		CustomerType: model.CustomerType(c.QueryParam("customer_type")),
		Search:       c.QueryParam("search"),
		Limit:        limit,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, customers)
}

func (h *CustomerHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	customer, err := h.customerService.Get(ctx, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) Update(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CustomerUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	customer, err := h.customerService.Update(ctx, c.Param("id"), &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, customer)
}

func (h *CustomerHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.customerService.Delete(ctx, c.Param("id")); err != nil {
		return toHTTPError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *CustomerHandler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	stats, err := h.customerService.Stats(ctx, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, stats)
}

func (h *CustomerHandler) Orders(c echo.Context) error {
	ctx := c.Request().Context()

	limit, err := parseLimit(c)
	if err != nil {
		return err
	}

	orders, err := h.customerService.Orders(ctx, c.Param("id"), limit)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, orders)
}
