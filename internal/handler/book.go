package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/okulov/home-library/internal/lookup"
	"github.com/okulov/home-library/internal/model"
	"github.com/okulov/home-library/internal/policy"
	"github.com/okulov/home-library/internal/repository"
)

// BookHandler serves the bibliographic catalog endpoints.
type BookHandler struct {
	Books  BookStore
	Copies CopyStore
	Meta   MetadataLookup
}

func NewBookHandler(b BookStore, cp CopyStore, m MetadataLookup) *BookHandler {
	return &BookHandler{Books: b, Copies: cp, Meta: m}
}

type bookReq struct {
	ISBN        string  `json:"isbn"`
	Title       string  `json:"title"`
	Author      *string `json:"author"`
	CoverURL    *string `json:"cover_url"`
	Publisher   *string `json:"publisher"`
	PublishYear *int    `json:"publish_year"`
	PageCount   *int    `json:"page_count"`
	Description *string `json:"description"`
}

// toBook maps the request body onto a model.Book. The normalized ISBN is
// passed in separately because the raw body value may carry hyphens.
func (r bookReq) toBook(isbn *string) *model.Book {
	return &model.Book{
		ISBN:        isbn,
		Title:       strings.TrimSpace(r.Title),
		Author:      r.Author,
		CoverURL:    r.CoverURL,
		Publisher:   r.Publisher,
		PublishYear: r.PublishYear,
		PageCount:   r.PageCount,
		Description: r.Description,
	}
}

// List is GET /v1/books: public search over the catalog with copy counts.
// Supports q (title/author substring), branch_id, available and pagination.
func (h *BookHandler) List(c echo.Context) error {
	avail, err := boolParam(c, "available")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "available must be a boolean"})
	}
	limit, offset := pageParams(c)
	f := repository.ListFilter{
		Query:     strings.TrimSpace(c.QueryParam("q")),
		BranchID:  c.QueryParam("branch_id"),
		Available: avail,
		Limit:     limit,
		Offset:    offset,
	}
	books, err := h.Books.List(c.Request().Context(), f)
	if err != nil {
		return jsonStoreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"books": books, "count": len(books)})
}

// Get is GET /v1/books/:id: one book plus all of its copies across branches.
func (h *BookHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	b, err := h.Books.GetByID(ctx, c.Param("id"))
	if err != nil {
		return jsonStoreError(c, err)
	}
	copies, err := h.Copies.ListByBook(ctx, b.ID)
	if err != nil {
		return jsonStoreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"book": b, "copies": copies})
}

// LookupISBN is GET /v1/books/lookup?isbn=: a read-only metadata preview.
// It queries the external providers and never touches the catalog, so a
// client can show a prefilled form before committing.
func (h *BookHandler) LookupISBN(c echo.Context) error {
	isbn := c.QueryParam("isbn")
	if isbn == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "isbn required"})
	}
	md, err := h.Meta.Lookup(c.Request().Context(), isbn)
	if err != nil {
		if errors.Is(err, lookup.ErrInvalidISBN) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid isbn"})
		}
		return c.JSON(http.StatusNotFound, echo.Map{"error": "no metadata found"})
	}
	return c.JSON(http.StatusOK, md)
}

// Create is POST /v1/books: any authenticated profile may add a book record.
// With an ISBN the operation is find-or-create; when the record already
// exists the response is 409 with the existing record and an
// X-Existing-Book-Id header so clients can recover without a second request.
func (h *BookHandler) Create(c echo.Context) error {
	if !policy.Can(roleOf(c), policy.ActionCreateBook) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx := c.Request().Context()

	var norm *string
	if strings.TrimSpace(req.ISBN) != "" {
		n, err := lookup.NormalizeISBN(req.ISBN)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid isbn"})
		}
		norm = &n
	}

	// Fill gaps from the providers when an ISBN is given and the client
	// did not supply a title. A lookup miss is not an error here; the
	// client-supplied fields stand on their own.
	if norm != nil && strings.TrimSpace(req.Title) == "" {
		if md, err := h.Meta.Lookup(ctx, *norm); err == nil {
			applyMetadata(&req, md)
		}
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title required"})
	}

	if norm == nil {
		b, err := h.Books.Create(ctx, req.toBook(nil))
		if err != nil {
			return jsonStoreError(c, err)
		}
		return c.JSON(http.StatusCreated, b)
	}

	b, created, err := h.Books.FindOrCreateByISBN(ctx, req.toBook(norm))
	if err != nil {
		return jsonStoreError(c, err)
	}
	if !created {
		c.Response().Header().Set("X-Existing-Book-Id", b.ID)
		return c.JSON(http.StatusConflict, echo.Map{
			"error": "book with this isbn already exists",
			"book":  b,
		})
	}
	return c.JSON(http.StatusCreated, b)
}

// Delete is DELETE /v1/books/:id, admin only. Copies and their loan history
// cascade with the book.
func (h *BookHandler) Delete(c echo.Context) error {
	if !policy.Can(roleOf(c), policy.ActionDeleteBook) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	if err := h.Books.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return jsonStoreError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// applyMetadata copies looked-up fields into the request, never overwriting
// anything the client supplied. Manual input wins over provider data.
func applyMetadata(req *bookReq, md *lookup.Metadata) {
	if strings.TrimSpace(req.Title) == "" {
		req.Title = md.Title
	}
	if req.Author == nil {
		req.Author = md.Author
	}
	if req.CoverURL == nil {
		req.CoverURL = md.CoverURL
	}
	if req.Publisher == nil {
		req.Publisher = md.Publisher
	}
	if req.PublishYear == nil {
		req.PublishYear = md.PublishYear
	}
	if req.PageCount == nil {
		req.PageCount = md.PageCount
	}
	if req.Description == nil {
		req.Description = md.Description
	}
}
