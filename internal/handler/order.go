package handler

import (
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/model"
	"dryclean-pos/internal/service"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

func (h *OrderHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	order, err := h.orderService.Create(ctx, actorOf(c).ID, &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) Quote(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.OrderCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	quote, err := h.orderService.Quote(ctx, &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, quote)
}

func (h *OrderHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	filter := dto.OrderFilter{
		Status:        model.OrderStatus(c.QueryParam("status")),
		PaymentStatus: model.PaymentStatus(c.QueryParam("payment_status")),
		CustomerID:    c.QueryParam("customer_id"),
	}

	var err error
	if raw := c.QueryParam("has_delivery"); raw != "" {
		hasDelivery, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid has_delivery")
		}
		filter.HasDelivery = &hasDelivery
	}
	if filter.DateFrom, err = parseTimeParam(c, "date_from", false); err != nil {
		return err
	}
	if filter.DateTo, err = parseTimeParam(c, "date_to", true); err != nil {
		return err
	}
	if filter.Limit, err = parseLimit(c); err != nil {
		return err
	}

	orders, err := h.orderService.List(ctx, filter)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	order, err := h.orderService.Get(ctx, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ByStatus(c echo.Context) error {
	ctx := c.Request().Context()

	board, err := h.orderService.ByStatus(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, board)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	order, err := h.orderService.UpdateStatus(ctx, c.Param("id"), &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateDelivery(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.DeliveryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	order, err := h.orderService.UpdateDelivery(ctx, c.Param("id"), req.DeliveryInfo)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) Deliveries(c echo.Context) error {
	ctx := c.Request().Context()

	deliveries, err := h.orderService.Deliveries(ctx, dto.DeliveryFilter{
		Date:     c.QueryParam("date"),
		Type:     model.DeliveryType(c.QueryParam("type")),
		DriverID: c.QueryParam("driver_id"),
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, deliveries)
}
