package handler

import (
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/middleware"
	"dryclean-pos/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

func (h *UserHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	user, err := h.userService.Register(ctx, middleware.ActorFromContext(c), &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, user)
}

func (h *UserHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	token, err := h.userService.Login(ctx, &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, token)
}

func (h *UserHandler) Me(c echo.Context) error {
	ctx := c.Request().Context()

	user, err := h.userService.Get(ctx, actorOf(c).ID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, user)
}

func (h *UserHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	users, err := h.userService.List(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, users)
}

func (h *UserHandler) Drivers(c echo.Context) error {
	ctx := c.Request().Context()

	drivers, err := h.userService.Drivers(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, drivers)
}
