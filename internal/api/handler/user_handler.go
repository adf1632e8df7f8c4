package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/reviewhub/review-api/internal/api/middleware"
	"github.com/reviewhub/review-api/internal/core/domain"
	"github.com/reviewhub/review-api/internal/core/ports"
)

// UserHandler handles admin account management and the /users/me
// self-service path.
type UserHandler struct {
	userService ports.UserService
}

func NewUserHandler(userService ports.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type createUserRequest struct {
	Username  string `json:"username"   validate:"required,max=150"`
	Email     string `json:"email"      validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name"  validate:"max=150"`
	Bio       string `json:"bio"`
	Role      string `json:"role"       validate:"omitempty,oneof=user moderator admin"`
}

type patchUserRequest struct {
	Email     *string `json:"email"      validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name"  validate:"omitempty,max=150"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"       validate:"omitempty,oneof=user moderator admin"`
}

// ownerAccountResponse is the projection an account sees of itself.
type ownerAccountResponse struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Role      string `json:"role"`
}

// adminAccountResponse is the fuller projection admin callers see.
type adminAccountResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// accountView selects the projection by an explicit switch on the caller's
// tier; no dynamic serializer substitution.
func accountView(tier domain.Tier, a *domain.Account) any {
	if tier >= domain.TierAdmin {
		return adminAccountResponse{
			ID:        a.ID,
			Username:  a.Username,
			Email:     a.Email,
			FirstName: a.FirstName,
			LastName:  a.LastName,
			Bio:       a.Bio,
			Role:      string(a.Role),
			CreatedAt: a.CreatedAt,
			UpdatedAt: a.UpdatedAt,
		}
	}
	return ownerAccountResponse{
		Username:  a.Username,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		Bio:       a.Bio,
		Role:      string(a.Role),
	}
}

type listUsersResponse struct {
	Data       []adminAccountResponse `json:"data"`
	Pagination paginationResponse     `json:"pagination"`
}

func (r patchUserRequest) toPatch() ports.AccountPatch {
	patch := ports.AccountPatch{
		Email:     r.Email,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Bio:       r.Bio,
	}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		patch.Role = &role
	}
	return patch
}

// List returns a page of accounts; admin only.
//
// @Summary      List accounts
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        search  query     string  false  "Filter by username substring"
// @Param        page    query     int     false  "Page number"
// @Param        limit   query     int     false  "Page size"
// @Success      200     {object}  listUsersResponse
// @Failure      401     {object}  map[string]string
// @Failure      403     {object}  map[string]string
// @Router       /users [get]
func (h *UserHandler) List(c echo.Context) error {
	page, limit := pagination(c)
	result, err := h.userService.List(c.Request().Context(), middleware.PrincipalFrom(c), c.QueryParam("search"), page, limit)
	if err != nil {
		return err
	}

	data := make([]adminAccountResponse, len(result.Items))
	for i := range result.Items {
		data[i] = accountView(domain.TierAdmin, &result.Items[i]).(adminAccountResponse)
	}
	return c.JSON(http.StatusOK, listUsersResponse{
		Data:       data,
		Pagination: newPagination(result.Total, result.Page, result.Limit),
	})
}

// Create registers an account directly; admin only.
//
// @Summary      Create an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createUserRequest  true  "Account details"
// @Success      201   {object}  adminAccountResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.userService.Create(c.Request().Context(), middleware.PrincipalFrom(c), ports.CreateAccountInput{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
		Role:      domain.Role(req.Role),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, accountView(domain.TierAdmin, account))
}

// Get returns one account by username; admin only.
//
// @Summary      Get an account
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string  true  "Username"
// @Success      200       {object}  adminAccountResponse
// @Failure      403       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /users/{username} [get]
func (h *UserHandler) Get(c echo.Context) error {
	account, err := h.userService.Get(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("username"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountView(domain.TierAdmin, account))
}

// Update patches an account; admin only.
//
// @Summary      Update an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        username  path      string            true  "Username"
// @Param        body      body      patchUserRequest  true  "Fields to change"
// @Success      200       {object}  adminAccountResponse
// @Failure      400       {object}  map[string]string
// @Failure      403       {object}  map[string]string
// @Failure      404       {object}  map[string]string
// @Router       /users/{username} [patch]
func (h *UserHandler) Update(c echo.Context) error {
	var req patchUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	account, err := h.userService.Update(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("username"), req.toPatch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountView(domain.TierAdmin, account))
}

// Delete removes an account and cascades to its content; admin only.
//
// @Summary      Delete an account
// @Tags         users
// @Security     BearerAuth
// @Param        username  path  string  true  "Username"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /users/{username} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	if err := h.userService.Delete(c.Request().Context(), middleware.PrincipalFrom(c), c.Param("username")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// Me returns the caller's own profile.
//
// @Summary      Get own profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ownerAccountResponse
// @Failure      401  {object}  map[string]string
// @Router       /users/me [get]
func (h *UserHandler) Me(c echo.Context) error {
	p := middleware.PrincipalFrom(c)
	account, err := h.userService.GetSelf(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountView(p.Tier(), account))
}

// UpdateMe patches the caller's own profile. A role field from a non-admin
// caller is silently dropped, not rejected.
//
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      patchUserRequest  true  "Fields to change"
// @Success      200   {object}  ownerAccountResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /users/me [patch]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req patchUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p := middleware.PrincipalFrom(c)
	account, err := h.userService.UpdateSelf(c.Request().Context(), p, req.toPatch())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, accountView(p.Tier(), account))
}
