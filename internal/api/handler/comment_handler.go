package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/reviewhub/review-api/internal/api/middleware"
	"github.com/reviewhub/review-api/internal/core/domain"
	"github.com/reviewhub/review-api/internal/core/ports"
)

// CommentHandler handles comment routes nested under a review. The same
// ownership rules as reviews apply.
type CommentHandler struct {
	reviewService ports.ReviewService
}

func NewCommentHandler(reviewService ports.ReviewService) *CommentHandler {
	return &CommentHandler{reviewService: reviewService}
}

type commentRequest struct {
	Text string `json:"text" validate:"required"`
}

type listCommentsResponse struct {
	Data       []domain.Comment   `json:"data"`
	Pagination paginationResponse `json:"pagination"`
}

// ListComments returns a page of comments on one review, oldest first.
//
// @Summary      List comments on a review
// @Tags         comments
// @Produce      json
// @Param        review_id  path      string  true   "Review ID"
// @Param        page       query     int     false  "Page number"
// @Param        limit      query     int     false  "Page size"
// @Success      200        {object}  listCommentsResponse
// @Failure      404        {object}  map[string]string
// @Router       /reviews/{review_id}/comments [get]
func (h *CommentHandler) ListComments(c echo.Context) error {
	page, limit := pagination(c)
	result, err := h.reviewService.ListComments(c.Request().Context(), c.Param("review_id"), page, limit)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, listCommentsResponse{
		Data:       result.Items,
		Pagination: newPagination(result.Total, result.Page, result.Limit),
	})
}

// GetComment returns one comment on one review.
//
// @Summary      Get a comment
// @Tags         comments
// @Produce      json
// @Param        review_id  path      string  true  "Review ID"
// @Param        id         path      string  true  "Comment ID"
// @Success      200        {object}  domain.Comment
// @Failure      404        {object}  map[string]string
// @Router       /reviews/{review_id}/comments/{id} [get]
func (h *CommentHandler) GetComment(c echo.Context) error {
	comment, err := h.reviewService.GetComment(c.Request().Context(), c.Param("review_id"), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comment)
}

// CreateComment adds the caller's comment on a review.
//
// @Summary      Create a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        review_id  path      string          true  "Review ID"
// @Param        body       body      commentRequest  true  "Comment"
// @Success      201        {object}  domain.Comment
// @Failure      400        {object}  map[string]string
// @Failure      401        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Router       /reviews/{review_id}/comments [post]
func (h *CommentHandler) CreateComment(c echo.Context) error {
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	created, err := h.reviewService.CreateComment(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("review_id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateComment replaces a comment's text. Authors edit their own;
// moderators and admins edit anyone's.
//
// @Summary      Update a comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        review_id  path      string          true  "Review ID"
// @Param        id         path      string          true  "Comment ID"
// @Param        body       body      commentRequest  true  "New text"
// @Success      200        {object}  domain.Comment
// @Failure      400        {object}  map[string]string
// @Failure      403        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Router       /reviews/{review_id}/comments/{id} [patch]
func (h *CommentHandler) UpdateComment(c echo.Context) error {
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	updated, err := h.reviewService.UpdateComment(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("review_id"), c.Param("id"), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteComment removes a comment. Authors delete their own; moderators and
// admins delete anyone's.
//
// @Summary      Delete a comment
// @Tags         comments
// @Security     BearerAuth
// @Param        review_id  path  string  true  "Review ID"
// @Param        id         path  string  true  "Comment ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /reviews/{review_id}/comments/{id} [delete]
func (h *CommentHandler) DeleteComment(c echo.Context) error {
	if err := h.reviewService.DeleteComment(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("review_id"), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
