package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reviewhub/review-api/internal/api/middleware"
	"github.com/reviewhub/review-api/internal/core/domain"
	"github.com/reviewhub/review-api/internal/core/ports"
)

// ReviewHandler handles review routes nested under a title. Reads are
// public; writes require an authenticated caller and editing someone else's
// review requires at least moderator standing.
type ReviewHandler struct {
	reviewService ports.ReviewService
}

func NewReviewHandler(reviewService ports.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

type createReviewRequest struct {
	Text  string `json:"text" validate:"required"`
	Score int    `json:"score" validate:"required,gte=1,lte=10"`
}

type patchReviewRequest struct {
	Text  *string `json:"text"`
	Score *int    `json:"score" validate:"omitempty,gte=1,lte=10"`
}

type listReviewsResponse struct {
	Data       []domain.Review    `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

// ListReviews returns a page of reviews for one title, newest first.
//
// @Summary      List reviews for a title
// @Tags         reviews
// @Produce      json
// @Param        title_id  path      string  true   "Title ID"
// @Param        page      query     int     false  "Page number"
// @Param        limit     query     int     false  "Page size"
// @Success      200       {object}  listReviewsResponse
// @Failure      404       {object}  map[string]string
// @Router       /titles/{title_id}/reviews [get]
func (h *ReviewHandler) ListReviews(c echo.Context) error {
	page, limit := pagination(c)
	result, err := h.reviewService.ListReviews(c.Request().Context(), c.Param("title_id"), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listReviewsResponse{
		Data:       result.Items,
		Pagination: newPagination(result.Total, result.Page, result.Limit),
	})
}

// GetReview returns one review of one title.
//
// @Summary      Get a review
// @Tags         reviews
// @Produce      json
// @Param        title_id  path      string  true  "Title ID"
// @Param        id        path      string  true  "Review ID"
// @Success      200       {object}  domain.Review
// @Failure      404       {object}  map[string]string
// @Router       /titles/{title_id}/reviews/{id} [get]
func (h *ReviewHandler) GetReview(c echo.Context) error {
	review, err := h.reviewService.GetReview(c.Request().Context(), c.Param("title_id"), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, review)
}

// CreateReview adds the caller's review for a title. A caller gets one
// review per title; a second attempt is a conflict.
//
// @Summary      Create a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id  path      string               true  "Title ID"
// @Param        body      body      createReviewRequest  true  "Review"
// @Success      201       {object}  domain.Review
// @Failure      400       {object}  map[string]string
// @Failure      401       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Failure      409       {object}  map[string]string
// @Router       /titles/{title_id}/reviews [post]
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	var req createReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.reviewService.CreateReview(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("title_id"), req.Text, req.Score)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateReview patches a review. Authors edit their own; moderators and
// admins edit anyone's.
//
// @Summary      Update a review
// @Tags         reviews
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        title_id  path      string              true  "Title ID"
// @Param        id        path      string              true  "Review ID"
// @Param        body      body      patchReviewRequest  true  "Fields to change"
// @Success      200       {object}  domain.Review
// @Failure      400       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /titles/{title_id}/reviews/{id} [patch]
func (h *ReviewHandler) UpdateReview(c echo.Context) error {
	var req patchReviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	updated, err := h.reviewService.UpdateReview(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("title_id"), c.Param("id"), req.Text, req.Score)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteReview removes a review and its comments. Authors delete their own;
// moderators and admins delete anyone's.
//
// @Summary      Delete a review
// @Tags         reviews
// @Security     BearerAuth
// @Param        title_id  path  string  true  "Title ID"
// @Param        id        path  string  true  "Review ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /titles/{title_id}/reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	if err := h.reviewService.DeleteReview(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("title_id"), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
