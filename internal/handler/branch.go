package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/okulov/home-library/internal/policy"
	"github.com/okulov/home-library/internal/repository"
)

// BranchHandler serves the branch endpoints.
type BranchHandler struct {
	Branches BranchStore
	Profiles ProfileStore
}

func NewBranchHandler(b BranchStore, p ProfileStore) *BranchHandler {
	return &BranchHandler{Branches: b, Profiles: p}
}

type branchCreateReq struct {
	Name    string  `json:"name"`
	OwnerID string  `json:"owner_id"`
	Address *string `json:"address"`
}

type branchUpdateReq struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

// List is GET /v1/branches: public, with owner names and copy counts.
func (h *BranchHandler) List(c echo.Context) error {
	branches, err := h.Branches.List(c.Request().Context())
	if err != nil {
		return jsonStoreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"branches": branches, "count": len(branches)})
}

// Get is GET /v1/branches/:id: public branch detail with availability stats.
func (h *BranchHandler) Get(c echo.Context) error {
	det, err := h.Branches.GetDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return jsonStoreError(c, err)
	}
	return c.JSON(http.StatusOK, det)
}

// Create is POST /v1/branches, admin only. The designated owner must already
// hold the branch_owner or admin role; promoting a borrower is a separate,
// explicit role change.
func (h *BranchHandler) Create(c echo.Context) error {
	if !policy.Can(roleOf(c), policy.ActionCreateBranch) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	var req branchCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.OwnerID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/owner_id required"})
	}

	ctx := c.Request().Context()
	owner, err := h.Profiles.GetByID(ctx, req.OwnerID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "owner profile not found"})
		}
		return jsonStoreError(c, err)
	}
	if !policy.Can(owner.Role, policy.ActionUpdateBranch) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "owner must hold the branch_owner role"})
	}

	b, err := h.Branches.Create(ctx, req.Name, owner.ID, req.Address)
	if err != nil {
		return jsonStoreError(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// Update is PUT /v1/branches/:id, the owning profile or an admin. Ownership
// transfer is not offered here; it is an admin-level reorganization done
// directly in the database if ever needed.
func (h *BranchHandler) Update(c echo.Context) error {
	var req branchUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name must not be empty"})
	}

	ctx := c.Request().Context()
	b, err := h.Branches.GetByID(ctx, c.Param("id"))
	if err != nil {
		return jsonStoreError(c, err)
	}
	if !policy.CanOnBranch(roleOf(c), policy.ActionUpdateBranch, profileID(c), b.OwnerID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	updated, err := h.Branches.Update(ctx, b.ID, req.Name, req.Address)
	if err != nil {
		return jsonStoreError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}
