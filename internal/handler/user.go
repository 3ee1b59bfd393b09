package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/okulov/home-library/internal/model"
	"github.com/okulov/home-library/internal/policy"
)

// UserHandler serves profile self-service and admin user management.
type UserHandler struct {
	Profiles ProfileStore
}

func NewUserHandler(p ProfileStore) *UserHandler {
	return &UserHandler{Profiles: p}
}

type meUpdateReq struct {
	Name string `json:"name"`
}

type roleUpdateReq struct {
	Role string `json:"role"`
}

// Me is GET /v1/me: the caller's own profile.
func (h *UserHandler) Me(c echo.Context) error {
	p, err := h.Profiles.GetByID(c.Request().Context(), profileID(c))
	if err != nil {
		return jsonStoreError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// UpdateMe is PUT /v1/me. Only the display name is self-serviceable; email
// is the login identifier and role changes go through the admin endpoint.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req meUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	p, err := h.Profiles.UpdateName(c.Request().Context(), profileID(c), req.Name)
	if err != nil {
		return jsonStoreError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// List is GET /v1/users, admin only. Filterable by role and a name/email
// substring.
func (h *UserHandler) List(c echo.Context) error {
	if !policy.Can(roleOf(c), policy.ActionListUsers) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	role := c.QueryParam("role")
	if role != "" && !model.ValidRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}
	limit, offset := pageParams(c)
	users, err := h.Profiles.List(c.Request().Context(), role, strings.TrimSpace(c.QueryParam("q")), limit, offset)
	if err != nil {
		return jsonStoreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"users": users, "count": len(users)})
}

// Get is GET /v1/users/:id, admin only.
func (h *UserHandler) Get(c echo.Context) error {
	if !policy.Can(roleOf(c), policy.ActionListUsers) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	p, err := h.Profiles.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return jsonStoreError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// UpdateRole is PUT /v1/users/:id/role, admin only. This is the only way a
// profile's role changes; registration always yields a borrower. An admin
// demoting themselves is allowed and takes effect on their next token.
func (h *UserHandler) UpdateRole(c echo.Context) error {
	if !policy.Can(roleOf(c), policy.ActionManageRoles) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	var req roleUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.ValidRole(req.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
	}
	p, err := h.Profiles.UpdateRole(c.Request().Context(), c.Param("id"), req.Role)
	if err != nil {
		return jsonStoreError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
