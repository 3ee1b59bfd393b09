package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/okulov/home-library/internal/lookup"
	"github.com/okulov/home-library/internal/model"
	"github.com/okulov/home-library/internal/policy"
	"github.com/okulov/home-library/internal/repository"
)

// CopyHandler serves the physical-copy endpoints. Creating a copy is where
// the find-or-create book reconciliation happens: a caller may reference an
// existing book by id or just hand over an ISBN and let the catalog resolve
// or mint the record.
type CopyHandler struct {
	Copies   CopyStore
	Books    BookStore
	Branches BranchStore
	Meta     MetadataLookup
}

func NewCopyHandler(cp CopyStore, b BookStore, br BranchStore, m MetadataLookup) *CopyHandler {
	return &CopyHandler{Copies: cp, Books: b, Branches: br, Meta: m}
}

type copyCreateReq struct {
	BookID   string  `json:"book_id"`
	BranchID string  `json:"branch_id"`
	ISBN     string  `json:"isbn"`
	Title    string  `json:"title"`
	Author   *string `json:"author"`

	Condition *string `json:"condition"`
	Notes     *string `json:"notes"`
}

type copyUpdateReq struct {
	Condition *string `json:"condition"`
	Notes     *string `json:"notes"`
}

// List is GET /v1/copies: public listing filterable by book, branch and
// availability.
func (h *CopyHandler) List(c echo.Context) error {
	avail, err := boolParam(c, "available")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "available must be a boolean"})
	}
	limit, offset := pageParams(c)
	f := repository.CopyFilter{
		BookID:    c.QueryParam("book_id"),
		BranchID:  c.QueryParam("branch_id"),
		Available: avail,
		Limit:     limit,
		Offset:    offset,
	}
	copies, err := h.Copies.List(c.Request().Context(), f)
	if err != nil {
		return jsonStoreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"copies": copies, "count": len(copies)})
}

// Get is GET /v1/copies/:id.
func (h *CopyHandler) Get(c echo.Context) error {
	det, err := h.Copies.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return jsonStoreError(c, err)
	}
	return c.JSON(http.StatusOK, det)
}

// Create is POST /v1/copies, branch owner (own branch) or admin. The book is
// referenced by book_id, or resolved from an ISBN (external metadata first,
// manual title as fallback), or minted from a bare title.
func (h *CopyHandler) Create(c echo.Context) error {
	var req copyCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.BranchID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "branch_id required"})
	}
	if req.Condition != nil && !model.ValidCondition(*req.Condition) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown condition"})
	}

	ctx := c.Request().Context()

	branch, err := h.Branches.GetByID(ctx, req.BranchID)
	if err != nil {
		return jsonStoreError(c, err)
	}
	if !policy.CanOnBranch(roleOf(c), policy.ActionManageCopies, profileID(c), branch.OwnerID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	book, bookCreated, err := h.resolveBook(c, &req)
	if err != nil {
		return err // already a JSON response
	}

	det, err := h.Copies.Create(ctx, &model.Copy{
		BookID:    book.ID,
		BranchID:  branch.ID,
		Condition: req.Condition,
		Notes:     req.Notes,
		AddedBy:   profileID(c),
	})
	if err != nil {
		return jsonStoreError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"copy":         det,
		"book":         book,
		"book_created": bookCreated,
	})
}

// resolveBook turns the create request into a book record. On failure it
// writes the error response itself and returns it.
func (h *CopyHandler) resolveBook(c echo.Context, req *copyCreateReq) (*model.Book, bool, error) {
	ctx := c.Request().Context()

	if req.BookID != "" {
		b, err := h.Books.GetByID(ctx, req.BookID)
		if err != nil {
			return nil, false, jsonStoreError(c, err)
		}
		return b, false, nil
	}

	if strings.TrimSpace(req.ISBN) != "" {
		norm, err := lookup.NormalizeISBN(req.ISBN)
		if err != nil {
			return nil, false, c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid isbn"})
		}
		cand := &model.Book{ISBN: &norm, Title: strings.TrimSpace(req.Title), Author: req.Author}
		if cand.Title == "" {
			if md, lerr := h.Meta.Lookup(ctx, norm); lerr == nil {
				cand.Title = md.Title
				cand.Author = md.Author
				cand.CoverURL = md.CoverURL
				cand.Publisher = md.Publisher
				cand.PublishYear = md.PublishYear
				cand.PageCount = md.PageCount
				cand.Description = md.Description
			}
		}
		if cand.Title == "" {
			// Both providers missed and the caller gave no title.
			return nil, false, c.JSON(http.StatusBadRequest, echo.Map{"error": "metadata lookup failed, title required"})
		}
		b, created, err := h.Books.FindOrCreateByISBN(ctx, cand)
		if err != nil {
			return nil, false, jsonStoreError(c, err)
		}
		return b, created, nil
	}

	if strings.TrimSpace(req.Title) != "" {
		b, err := h.Books.Create(ctx, &model.Book{Title: strings.TrimSpace(req.Title), Author: req.Author})
		if err != nil {
			return nil, false, jsonStoreError(c, err)
		}
		return b, true, nil
	}

	return nil, false, c.JSON(http.StatusBadRequest, echo.Map{"error": "book_id, isbn or title required"})
}

// Update is PUT /v1/copies/:id, branch owner (own branch) or admin. Only
// condition and notes are mutable; moving a copy between branches is a
// delete-and-recreate.
func (h *CopyHandler) Update(c echo.Context) error {
	var req copyUpdateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Condition != nil && !model.ValidCondition(*req.Condition) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown condition"})
	}

	ctx := c.Request().Context()
	det, err := h.Copies.GetByID(ctx, c.Param("id"))
	if err != nil {
		return jsonStoreError(c, err)
	}
	if !policy.CanOnBranch(roleOf(c), policy.ActionManageCopies, profileID(c), det.BranchOwnerID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	updated, err := h.Copies.Update(ctx, det.ID, req.Condition, req.Notes)
	if err != nil {
		return jsonStoreError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete is DELETE /v1/copies/:id, branch owner (own branch) or admin. A
// copy with an active loan is not deletable; the loan must be returned
// first.
func (h *CopyHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	det, err := h.Copies.GetByID(ctx, c.Param("id"))
	if err != nil {
		return jsonStoreError(c, err)
	}
	if !policy.CanOnBranch(roleOf(c), policy.ActionManageCopies, profileID(c), det.BranchOwnerID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Copies.Delete(ctx, det.ID); err != nil {
		return jsonStoreError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
