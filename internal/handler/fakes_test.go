package handler

// Function-field stubs for the store interfaces. Tests set only the methods
// a handler touches; anything else fails loudly.

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/okulov/home-library/internal/lookup"
	"github.com/okulov/home-library/internal/model"
	"github.com/okulov/home-library/internal/repository"
)

var errStubNotWired = errors.New("stub method not wired")

type profileStoreStub struct {
	create     func(ctx context.Context, email, name, password string, cost int) (*model.Profile, error)
	getByEmail func(ctx context.Context, email string) (*model.Profile, error)
	getByID    func(ctx context.Context, id string) (*model.Profile, error)
	list       func(ctx context.Context, role, q string, limit, offset int) ([]model.Profile, error)
	updateName func(ctx context.Context, id, name string) (*model.Profile, error)
	updateRole func(ctx context.Context, id, role string) (*model.Profile, error)
}

func (s *profileStoreStub) Create(ctx context.Context, email, name, password string, cost int) (*model.Profile, error) {
	if s.create == nil {
		return nil, errStubNotWired
	}
	return s.create(ctx, email, name, password, cost)
}
func (s *profileStoreStub) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	if s.getByEmail == nil {
		return nil, errStubNotWired
	}
	return s.getByEmail(ctx, email)
}
func (s *profileStoreStub) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	if s.getByID == nil {
		return nil, errStubNotWired
	}
	return s.getByID(ctx, id)
}
func (s *profileStoreStub) List(ctx context.Context, role, q string, limit, offset int) ([]model.Profile, error) {
	if s.list == nil {
		return nil, errStubNotWired
	}
	return s.list(ctx, role, q, limit, offset)
}
func (s *profileStoreStub) UpdateName(ctx context.Context, id, name string) (*model.Profile, error) {
	if s.updateName == nil {
		return nil, errStubNotWired
	}
	return s.updateName(ctx, id, name)
}
func (s *profileStoreStub) UpdateRole(ctx context.Context, id, role string) (*model.Profile, error) {
	if s.updateRole == nil {
		return nil, errStubNotWired
	}
	return s.updateRole(ctx, id, role)
}

type tokenStoreStub struct {
	store     func(ctx context.Context, profileID, tokenHash string, exp time.Time) error
	validate  func(ctx context.Context, tokenHash string) (string, error)
	revoke    func(ctx context.Context, tokenHash string) error
	revokeAll func(ctx context.Context, profileID string) error
}

func (s *tokenStoreStub) StoreRefresh(ctx context.Context, profileID, tokenHash string, exp time.Time) error {
	if s.store == nil {
		return nil
	}
	return s.store(ctx, profileID, tokenHash, exp)
}
func (s *tokenStoreStub) ValidateRefresh(ctx context.Context, tokenHash string) (string, error) {
	if s.validate == nil {
		return "", errStubNotWired
	}
	return s.validate(ctx, tokenHash)
}
func (s *tokenStoreStub) RevokeByHash(ctx context.Context, tokenHash string) error {
	if s.revoke == nil {
		return nil
	}
	return s.revoke(ctx, tokenHash)
}
func (s *tokenStoreStub) RevokeAllForProfile(ctx context.Context, profileID string) error {
	if s.revokeAll == nil {
		return nil
	}
	return s.revokeAll(ctx, profileID)
}

type bookStoreStub struct {
	list         func(ctx context.Context, f repository.ListFilter) ([]model.BookSummary, error)
	getByID      func(ctx context.Context, id string) (*model.Book, error)
	getByISBN    func(ctx context.Context, isbn string) (*model.Book, error)
	create       func(ctx context.Context, b *model.Book) (*model.Book, error)
	findOrCreate func(ctx context.Context, b *model.Book) (*model.Book, bool, error)
	delete       func(ctx context.Context, id string) error
}

func (s *bookStoreStub) List(ctx context.Context, f repository.ListFilter) ([]model.BookSummary, error) {
	if s.list == nil {
		return nil, errStubNotWired
	}
	return s.list(ctx, f)
}
func (s *bookStoreStub) GetByID(ctx context.Context, id string) (*model.Book, error) {
	if s.getByID == nil {
		return nil, errStubNotWired
	}
	return s.getByID(ctx, id)
}
func (s *bookStoreStub) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	if s.getByISBN == nil {
		return nil, errStubNotWired
	}
	return s.getByISBN(ctx, isbn)
}
func (s *bookStoreStub) Create(ctx context.Context, b *model.Book) (*model.Book, error) {
	if s.create == nil {
		return nil, errStubNotWired
	}
	return s.create(ctx, b)
}
func (s *bookStoreStub) FindOrCreateByISBN(ctx context.Context, b *model.Book) (*model.Book, bool, error) {
	if s.findOrCreate == nil {
		return nil, false, errStubNotWired
	}
	return s.findOrCreate(ctx, b)
}
func (s *bookStoreStub) Delete(ctx context.Context, id string) error {
	if s.delete == nil {
		return errStubNotWired
	}
	return s.delete(ctx, id)
}

type copyStoreStub struct {
	list       func(ctx context.Context, f repository.CopyFilter) ([]model.CopyDetail, error)
	getByID    func(ctx context.Context, id string) (*model.CopyDetail, error)
	listByBook func(ctx context.Context, bookID string) ([]model.CopyDetail, error)
	create     func(ctx context.Context, c *model.Copy) (*model.CopyDetail, error)
	update     func(ctx context.Context, id string, condition, notes *string) (*model.CopyDetail, error)
	delete     func(ctx context.Context, id string) error
}

func (s *copyStoreStub) List(ctx context.Context, f repository.CopyFilter) ([]model.CopyDetail, error) {
	if s.list == nil {
		return nil, errStubNotWired
	}
	return s.list(ctx, f)
}
func (s *copyStoreStub) GetByID(ctx context.Context, id string) (*model.CopyDetail, error) {
	if s.getByID == nil {
		return nil, errStubNotWired
	}
	return s.getByID(ctx, id)
}
func (s *copyStoreStub) ListByBook(ctx context.Context, bookID string) ([]model.CopyDetail, error) {
	if s.listByBook == nil {
		return nil, errStubNotWired
	}
	return s.listByBook(ctx, bookID)
}
func (s *copyStoreStub) Create(ctx context.Context, c *model.Copy) (*model.CopyDetail, error) {
	if s.create == nil {
		return nil, errStubNotWired
	}
	return s.create(ctx, c)
}
func (s *copyStoreStub) Update(ctx context.Context, id string, condition, notes *string) (*model.CopyDetail, error) {
	if s.update == nil {
		return nil, errStubNotWired
	}
	return s.update(ctx, id, condition, notes)
}
func (s *copyStoreStub) Delete(ctx context.Context, id string) error {
	if s.delete == nil {
		return errStubNotWired
	}
	return s.delete(ctx, id)
}

type branchStoreStub struct {
	list      func(ctx context.Context) ([]repository.BranchSummary, error)
	getByID   func(ctx context.Context, id string) (*model.Branch, error)
	getDetail func(ctx context.Context, id string) (*repository.BranchDetail, error)
	create    func(ctx context.Context, name, ownerID string, address *string) (*model.Branch, error)
	update    func(ctx context.Context, id string, name, address *string) (*model.Branch, error)
}

func (s *branchStoreStub) List(ctx context.Context) ([]repository.BranchSummary, error) {
	if s.list == nil {
		return nil, errStubNotWired
	}
	return s.list(ctx)
}
func (s *branchStoreStub) GetByID(ctx context.Context, id string) (*model.Branch, error) {
	if s.getByID == nil {
		return nil, errStubNotWired
	}
	return s.getByID(ctx, id)
}
func (s *branchStoreStub) GetDetail(ctx context.Context, id string) (*repository.BranchDetail, error) {
	if s.getDetail == nil {
		return nil, errStubNotWired
	}
	return s.getDetail(ctx, id)
}
func (s *branchStoreStub) Create(ctx context.Context, name, ownerID string, address *string) (*model.Branch, error) {
	if s.create == nil {
		return nil, errStubNotWired
	}
	return s.create(ctx, name, ownerID, address)
}
func (s *branchStoreStub) Update(ctx context.Context, id string, name, address *string) (*model.Branch, error) {
	if s.update == nil {
		return nil, errStubNotWired
	}
	return s.update(ctx, id, name, address)
}

type loanStoreStub struct {
	checkout  func(ctx context.Context, copyID, borrowerID string, due time.Time, notes *string, actorID string, actorIsAdmin bool) (*model.Loan, error)
	doReturn  func(ctx context.Context, loanID string, notes *string, actorID string, actorIsAdmin bool) (*model.Loan, error)
	getDetail func(ctx context.Context, id string) (*model.LoanDetail, error)
	list      func(ctx context.Context, f repository.LoanFilter) ([]model.LoanDetail, error)
}

func (s *loanStoreStub) Checkout(ctx context.Context, copyID, borrowerID string, due time.Time, notes *string, actorID string, actorIsAdmin bool) (*model.Loan, error) {
	if s.checkout == nil {
		return nil, errStubNotWired
	}
	return s.checkout(ctx, copyID, borrowerID, due, notes, actorID, actorIsAdmin)
}
func (s *loanStoreStub) Return(ctx context.Context, loanID string, notes *string, actorID string, actorIsAdmin bool) (*model.Loan, error) {
	if s.doReturn == nil {
		return nil, errStubNotWired
	}
	return s.doReturn(ctx, loanID, notes, actorID, actorIsAdmin)
}
func (s *loanStoreStub) GetDetail(ctx context.Context, id string) (*model.LoanDetail, error) {
	if s.getDetail == nil {
		return nil, errStubNotWired
	}
	return s.getDetail(ctx, id)
}
func (s *loanStoreStub) List(ctx context.Context, f repository.LoanFilter) ([]model.LoanDetail, error) {
	if s.list == nil {
		return nil, errStubNotWired
	}
	return s.list(ctx, f)
}

type lookupStub struct {
	lookup func(ctx context.Context, isbn string) (*lookup.Metadata, error)
}

func (s *lookupStub) Lookup(ctx context.Context, isbn string) (*lookup.Metadata, error) {
	if s.lookup == nil {
		return nil, lookup.ErrNotFound
	}
	return s.lookup(ctx, isbn)
}

// newTestContext builds an Echo context for a JSON request, optionally
// authenticated as the given profile/role.
func newTestContext(method, target, body, pid, role string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if pid != "" {
		c.Set("profile_id", pid)
		c.Set("role", role)
	}
	return c, rec
}

func strPtr(s string) *string { return &s }
