package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reviewhub/review-api/internal/api/middleware"
	"github.com/reviewhub/review-api/internal/core/ports"
)

// CatalogHandler handles category and genre routes. Reads are public; writes
// are admin-gated at the route level.
type CatalogHandler struct {
	catalogService ports.CatalogService
}

func NewCatalogHandler(catalogService ports.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

type slugEntryRequest struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50"`
}

type slugEntryResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type listSlugEntriesResponse struct {
	Data       []slugEntryResponse `json:"data"`
	Pagination paginationResponse  `json:"pagination"`
}

// ListCategories returns a page of categories, optionally filtered by name.
//
// @Summary      List categories
// @Tags         catalog
// @Produce      json
// @Param        search  query     string  false  "Filter by name substring"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  listSlugEntriesResponse
// @Router       /categories [get]
func (h *CatalogHandler) ListCategories(c echo.Context) error {
	page, limit := pagination(c)
	items, total, err := h.catalogService.ListCategories(c.Request().Context(), c.QueryParam("search"), page, limit)
	if err != nil {
		return err
	}
	data := make([]slugEntryResponse, len(items))
	for i, item := range items {
		data[i] = slugEntryResponse{Name: item.Name, Slug: item.Slug}
	}
	return c.JSON(http.StatusOK, listSlugEntriesResponse{
		Data:       data,
		Pagination: newPagination(total, orDefaultPage(page), orDefaultLimit(limit)),
	})
}

// CreateCategory adds a category; admin only.
//
// @Summary      Create a category
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      slugEntryRequest  true  "Category"
// @Success      201   {object}  slugEntryResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /categories [post]
func (h *CatalogHandler) CreateCategory(c echo.Context) error {
	var req slugEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.catalogService.CreateCategory(c.Request().Context(), middleware.PrincipalFrom(c), req.Name, req.Slug)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, slugEntryResponse{Name: created.Name, Slug: created.Slug})
}

// DeleteCategory removes a category and detaches it from titles; admin only.
//
// @Summary      Delete a category
// @Tags         catalog
// @Security     BearerAuth
// @Param        slug  path  string  true  "Category slug"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /categories/{slug} [delete]
func (h *CatalogHandler) DeleteCategory(c echo.Context) error {
	if err := h.catalogService.DeleteCategory(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("slug")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// ListGenres returns a page of genres, optionally filtered by name.
//
// @Summary      List genres
// @Tags         catalog
// @Produce      json
// @Param        search  query     string  false  "Filter by name substring"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  listSlugEntriesResponse
// @Router       /genres [get]
func (h *CatalogHandler) ListGenres(c echo.Context) error {
	page, limit := pagination(c)
	items, total, err := h.catalogService.ListGenres(c.Request().Context(), c.QueryParam("search"), page, limit)
	if err != nil {
		return err
	}
	data := make([]slugEntryResponse, len(items))
	for i, item := range items {
		data[i] = slugEntryResponse{Name: item.Name, Slug: item.Slug}
	}
	return c.JSON(http.StatusOK, listSlugEntriesResponse{
		Data:       data,
		Pagination: newPagination(total, orDefaultPage(page), orDefaultLimit(limit)),
	})
}

// CreateGenre adds a genre; admin only.
//
// @Summary      Create a genre
// @Tags         catalog
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      slugEntryRequest  true  "Genre"
// @Success      201   {object}  slugEntryResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /genres [post]
func (h *CatalogHandler) CreateGenre(c echo.Context) error {
	var req slugEntryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.catalogService.CreateGenre(c.Request().Context(), middleware.PrincipalFrom(c), req.Name, req.Slug)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, slugEntryResponse{Name: created.Name, Slug: created.Slug})
}

// DeleteGenre removes a genre and detaches it from titles; admin only.
//
// @Summary      Delete a genre
// @Tags         catalog
// @Security     BearerAuth
// @Param        slug  path  string  true  "Genre slug"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /genres/{slug} [delete]
func (h *CatalogHandler) DeleteGenre(c echo.Context) error {
	if err := h.catalogService.DeleteGenre(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("slug")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func orDefaultPage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func orDefaultLimit(limit int) int {
	if limit < 1 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}
