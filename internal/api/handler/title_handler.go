package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/reviewhub/review-api/internal/api/middleware"
	"github.com/reviewhub/review-api/internal/core/domain"
	"github.com/reviewhub/review-api/internal/core/ports"
)

// TitleHandler handles title routes. Reads are public and carry the computed
// rating; writes are admin-gated at the route level.
type TitleHandler struct {
	catalogService ports.CatalogService
}

func NewTitleHandler(catalogService ports.CatalogService) *TitleHandler {
	return &TitleHandler{catalogService: catalogService}
}

type createTitleRequest struct {
	Name         string   `json:"name" validate:"required,max=256"`
	Year         int      `json:"year" validate:"required"`
	Description  string   `json:"description"`
	CategorySlug string   `json:"category"`
	GenreSlugs   []string `json:"genres"`
}

type patchTitleRequest struct {
	Name         *string   `json:"name" validate:"omitempty,max=256"`
	Year         *int      `json:"year"`
	Description  *string   `json:"description"`
	CategorySlug *string   `json:"category"`
	GenreSlugs   *[]string `json:"genres"`
}

type listTitlesResponse struct {
	Data       []domain.Title     `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

// ListTitles returns a page of titles with ratings attached. The category,
// genre, name and year query parameters narrow the listing.
//
// @Summary      List titles
// @Tags         titles
// @Produce      json
// @Param        category  query     string  false  "Filter by category slug"
// @Param        genre     query     string  false  "Filter by genre slug"
// @Param        name      query     string  false  "Filter by name substring"
// @Param        year      query     int     false  "Filter by release year"
// @Param        page      query     int     false  "Page number"
// @Param        limit     query     int     false  "Page size"
// @Success      200       {object}  listTitlesResponse
// @Router       /titles [get]
func (h *TitleHandler) ListTitles(c echo.Context) error {
	page, limit := pagination(c)
	year, _ := strconv.Atoi(c.QueryParam("year"))
	filter := ports.TitleFilter{
		CategorySlug: c.QueryParam("category"),
		GenreSlug:    c.QueryParam("genre"),
		Name:         c.QueryParam("name"),
		Year:         year,
	}
	result, err := h.catalogService.ListTitles(c.Request().Context(), filter, page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listTitlesResponse{
		Data:       result.Items,
		Pagination: newPagination(result.Total, result.Page, result.Limit),
	})
}

// GetTitle returns one title with its rating.
//
// @Summary      Get a title
// @Tags         titles
// @Produce      json
// @Param        id   path      string  true  "Title ID"
// @Success      200  {object}  domain.Title
// @Failure      404  {object}  map[string]string
// @Router       /titles/{id} [get]
func (h *TitleHandler) GetTitle(c echo.Context) error {
	title, err := h.catalogService.GetTitle(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, title)
}

// CreateTitle adds a title; admin only.
//
// @Summary      Create a title
// @Tags         titles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTitleRequest  true  "Title"
// @Success      201   {object}  domain.Title
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /titles [post]
func (h *TitleHandler) CreateTitle(c echo.Context) error {
	var req createTitleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.catalogService.CreateTitle(c.Request().Context(), middleware.PrincipalFrom(c), ports.TitleInput{
		Name:         req.Name,
		Year:         req.Year,
		Description:  req.Description,
		CategorySlug: req.CategorySlug,
		GenreSlugs:   req.GenreSlugs,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateTitle patches a title; admin only. Absent fields are left unchanged.
//
// @Summary      Update a title
// @Tags         titles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Title ID"
// @Param        body  body      patchTitleRequest  true  "Fields to change"
// @Success      200   {object}  domain.Title
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /titles/{id} [patch]
func (h *TitleHandler) UpdateTitle(c echo.Context) error {
	var req patchTitleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	updated, err := h.catalogService.UpdateTitle(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("id"), ports.TitlePatch{
		Name:         req.Name,
		Year:         req.Year,
		Description:  req.Description,
		CategorySlug: req.CategorySlug,
		GenreSlugs:   req.GenreSlugs,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteTitle removes a title and everything written under it; admin only.
//
// @Summary      Delete a title
// @Tags         titles
// @Security     BearerAuth
// @Param        id   path  string  true  "Title ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /titles/{id} [delete]
func (h *TitleHandler) DeleteTitle(c echo.Context) error {
	if err := h.catalogService.DeleteTitle(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
