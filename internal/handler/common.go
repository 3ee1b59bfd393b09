// Package handler contains the HTTP endpoints. Handlers bind requests,
// consult the policy package for authorization, call into the stores and map
// store sentinels onto HTTP statuses. They depend on narrow store interfaces
// rather than concrete repositories so tests can substitute in-memory fakes.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/okulov/home-library/internal/lookup"
	"github.com/okulov/home-library/internal/model"
	"github.com/okulov/home-library/internal/repository"
)

// ProfileStore is the profile persistence surface handlers need.
type ProfileStore interface {
	Create(ctx context.Context, email, name, password string, cost int) (*model.Profile, error)
	GetByEmail(ctx context.Context, email string) (*model.Profile, error)
	GetByID(ctx context.Context, id string) (*model.Profile, error)
	List(ctx context.Context, role, q string, limit, offset int) ([]model.Profile, error)
	UpdateName(ctx context.Context, id, name string) (*model.Profile, error)
	UpdateRole(ctx context.Context, id, role string) (*model.Profile, error)
}

// TokenStore persists refresh token hashes.
type TokenStore interface {
	StoreRefresh(ctx context.Context, profileID, tokenHash string, exp time.Time) error
	ValidateRefresh(ctx context.Context, tokenHash string) (string, error)
	RevokeByHash(ctx context.Context, tokenHash string) error
	RevokeAllForProfile(ctx context.Context, profileID string) error
}

// BookStore is the catalog surface for bibliographic records.
type BookStore interface {
	List(ctx context.Context, f repository.ListFilter) ([]model.BookSummary, error)
	GetByID(ctx context.Context, id string) (*model.Book, error)
	GetByISBN(ctx context.Context, isbn string) (*model.Book, error)
	Create(ctx context.Context, b *model.Book) (*model.Book, error)
	FindOrCreateByISBN(ctx context.Context, b *model.Book) (*model.Book, bool, error)
	Delete(ctx context.Context, id string) error
}

// CopyStore is the physical-copy surface.
type CopyStore interface {
	List(ctx context.Context, f repository.CopyFilter) ([]model.CopyDetail, error)
	GetByID(ctx context.Context, id string) (*model.CopyDetail, error)
	ListByBook(ctx context.Context, bookID string) ([]model.CopyDetail, error)
	Create(ctx context.Context, c *model.Copy) (*model.CopyDetail, error)
	Update(ctx context.Context, id string, condition, notes *string) (*model.CopyDetail, error)
	Delete(ctx context.Context, id string) error
}

// BranchStore is the branch surface.
type BranchStore interface {
	List(ctx context.Context) ([]repository.BranchSummary, error)
	GetByID(ctx context.Context, id string) (*model.Branch, error)
	GetDetail(ctx context.Context, id string) (*repository.BranchDetail, error)
	Create(ctx context.Context, name, ownerID string, address *string) (*model.Branch, error)
	Update(ctx context.Context, id string, name, address *string) (*model.Branch, error)
}

// LoanStore is the lending surface.
type LoanStore interface {
	Checkout(ctx context.Context, copyID, borrowerID string, due time.Time, notes *string, actorID string, actorIsAdmin bool) (*model.Loan, error)
	Return(ctx context.Context, loanID string, notes *string, actorID string, actorIsAdmin bool) (*model.Loan, error)
	GetDetail(ctx context.Context, id string) (*model.LoanDetail, error)
	List(ctx context.Context, f repository.LoanFilter) ([]model.LoanDetail, error)
}

// MetadataLookup resolves bibliographic metadata for an ISBN.
type MetadataLookup interface {
	Lookup(ctx context.Context, isbn string) (*lookup.Metadata, error)
}

// profileID returns the authenticated profile id set by the JWT middleware,
// or "" for unauthenticated requests.
func profileID(c echo.Context) string {
	if s, ok := c.Get("profile_id").(string); ok {
		return s
	}
	return ""
}

// roleOf returns the authenticated caller's role, or "" for guests.
func roleOf(c echo.Context) string {
	if s, ok := c.Get("role").(string); ok {
		return s
	}
	return ""
}

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// pageParams reads limit/offset query parameters with sane bounds.
func pageParams(c echo.Context) (limit, offset int) {
	limit = defaultPageSize
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil && v > 0 {
		limit = v
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}

// boolParam parses an optional boolean query parameter, returning nil when
// absent and an error for unparseable values.
func boolParam(c echo.Context, name string) (*bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// jsonStoreError maps store sentinels onto HTTP responses. Unknown errors
// become an opaque 500; sentinels carry their own message.
func jsonStoreError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrProfileNotFound),
		errors.Is(err, repository.ErrBranchNotFound),
		errors.Is(err, repository.ErrBookNotFound),
		errors.Is(err, repository.ErrCopyNotFound),
		errors.Is(err, repository.ErrLoanNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrEmailExists),
		errors.Is(err, repository.ErrDuplicateISBN),
		errors.Is(err, repository.ErrCopyOnLoan),
		errors.Is(err, repository.ErrLoanReturned):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
