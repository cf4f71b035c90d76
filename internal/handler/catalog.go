package handler

import (
	"dryclean-pos/internal/dto"
	"dryclean-pos/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
	}
}

// -------- categories --------

func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	category, err := h.catalogService.CreateCategory(ctx, &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, category)
}

func (h *CatalogHandler) ListCategories(c echo.Context) error {
	ctx := c.Request().Context()

	categories, err := h.catalogService.ListCategories(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) UpdateCategory(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	category, err := h.catalogService.UpdateCategory(ctx, c.Param("id"), &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, category)
}

func (h *CatalogHandler) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.catalogService.DeleteCategory(ctx, c.Param("id")); err != nil {
		return toHTTPError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

// -------- items --------

func (h *CatalogHandler) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ItemCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	item, err := h.catalogService.CreateItem(ctx, &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, item)
}

func (h *CatalogHandler) ListItems(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.catalogService.ListItems(ctx, dto.ItemFilter{
		CategoryID:  c.QueryParam("category_id"),
		ParentsOnly: c.QueryParam("parents_only") == "true",
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHandler) ListChildren(c echo.Context) error {
	ctx := c.Request().Context()

	parentID := c.Param("id")
	if _, err := h.catalogService.GetItem(ctx, parentID); err != nil {
		return toHTTPError(err)
	}

	items, err := h.catalogService.ListItems(ctx, dto.ItemFilter{ParentID: parentID})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHandler) GetItem(c echo.Context) error {
	ctx := c.Request().Context()

	item, err := h.catalogService.GetItem(ctx, c.Param("id"))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, item)
}

func (h *CatalogHandler) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ItemUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	item, err := h.catalogService.UpdateItem(ctx, c.Param("id"), &req)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, item)
}

func (h *CatalogHandler) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.catalogService.DeleteItem(ctx, c.Param("id")); err != nil {
		return toHTTPError(err)
	}

	return c.NoContent(http.StatusNoContent)
}
