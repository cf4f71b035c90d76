package handler

import (
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/service"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	paymentService service.PaymentService
}

func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

func (h *PaymentHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PaymentCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	result, err := h.paymentService.Create(ctx, actorOf(c).ID, &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, result)
}

func (h *PaymentHandler) ListByOrder(c echo.Context) error {
	ctx := c.Request().Context()

	payments, err := h.paymentService.ListByOrder(ctx, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, payments)
}

func (h *PaymentHandler) Status(c echo.Context) error {
	ctx := c.Request().Context()

	status, err := h.paymentService.CheckStatus(ctx, c.Param("session_id"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, status)
}

// Webhook always acknowledges so the gateway does not redeliver; failures are only logged.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		c.Logger().Errorf("read webhook body: %v", err)
		return c.JSON(http.StatusOK, dto.WebhookAck{Received: true})
	}

	if err := h.paymentService.HandleWebhook(ctx, c.Request().Header, body); err != nil {
		c.Logger().Errorf("handle webhook: %v", err)
	}

	return c.JSON(http.StatusOK, dto.WebhookAck{Received: true})
}
