package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okulov/home-library/internal/lookup"
	"github.com/okulov/home-library/internal/model"
	"github.com/okulov/home-library/internal/repository"
)

const testISBN = "9780140449136"

func TestCreateBookFindOrCreateReturnsExisting(t *testing.T) {
	existing := &model.Book{ID: "bk-1", ISBN: strPtr(testISBN), Title: "The Odyssey"}
	books := &bookStoreStub{
		findOrCreate: func(ctx context.Context, b *model.Book) (*model.Book, bool, error) {
			require.NotNil(t, b.ISBN)
			assert.Equal(t, testISBN, *b.ISBN)
			return existing, false, nil
		},
	}
	h := NewBookHandler(books, &copyStoreStub{}, &lookupStub{})

	body := `{"isbn":"978-0-14-044913-6","title":"The Odyssey"}`
	c, rec := newTestContext(http.MethodPost, "/v1/books", body, "p1", model.RoleBorrower)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "bk-1", rec.Header().Get("X-Existing-Book-Id"))

	var resp struct {
		Book model.Book `json:"book"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "The Odyssey", resp.Book.Title)
}

func TestCreateBookFillsMetadataFromLookup(t *testing.T) {
	var created *model.Book
	books := &bookStoreStub{
		findOrCreate: func(ctx context.Context, b *model.Book) (*model.Book, bool, error) {
			created = b
			b.ID = "bk-2"
			return b, true, nil
		},
	}
	meta := &lookupStub{
		lookup: func(ctx context.Context, isbn string) (*lookup.Metadata, error) {
			return &lookup.Metadata{ISBN: isbn, Title: "The Odyssey", Author: strPtr("Homer")}, nil
		},
	}
	h := NewBookHandler(books, &copyStoreStub{}, meta)

	// No title in the body; the providers supply it.
	body := `{"isbn":"` + testISBN + `"}`
	c, rec := newTestContext(http.MethodPost, "/v1/books", body, "p1", model.RoleBorrower)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, created)
	assert.Equal(t, "The Odyssey", created.Title)
	require.NotNil(t, created.Author)
	assert.Equal(t, "Homer", *created.Author)
}

func TestCreateBookManualFieldsWinOverLookup(t *testing.T) {
	books := &bookStoreStub{
		findOrCreate: func(ctx context.Context, b *model.Book) (*model.Book, bool, error) {
			assert.Equal(t, "My Annotated Odyssey", b.Title)
			return b, true, nil
		},
	}
	meta := &lookupStub{
		lookup: func(ctx context.Context, isbn string) (*lookup.Metadata, error) {
			t.Fatal("lookup must not run when the client supplies a title")
			return nil, nil
		},
	}
	h := NewBookHandler(books, &copyStoreStub{}, meta)

	body := `{"isbn":"` + testISBN + `","title":"My Annotated Odyssey"}`
	c, rec := newTestContext(http.MethodPost, "/v1/books", body, "p1", model.RoleBorrower)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateBookRejectsBadISBN(t *testing.T) {
	h := NewBookHandler(&bookStoreStub{}, &copyStoreStub{}, &lookupStub{})

	body := `{"isbn":"9780140449137","title":"Wrong Check Digit"}`
	c, rec := newTestContext(http.MethodPost, "/v1/books", body, "p1", model.RoleBorrower)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateBookWithoutISBNNeedsTitle(t *testing.T) {
	h := NewBookHandler(&bookStoreStub{}, &copyStoreStub{}, &lookupStub{})

	c, rec := newTestContext(http.MethodPost, "/v1/books", `{}`, "p1", model.RoleBorrower)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteBookRequiresAdmin(t *testing.T) {
	deleted := false
	books := &bookStoreStub{
		delete: func(ctx context.Context, id string) error {
			deleted = true
			return nil
		},
	}
	h := NewBookHandler(books, &copyStoreStub{}, &lookupStub{})

	c, rec := newTestContext(http.MethodDelete, "/v1/books/bk-1", "", "owner-1", model.RoleBranchOwner)
	c.SetParamNames("id")
	c.SetParamValues("bk-1")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.False(t, deleted)

	c, rec = newTestContext(http.MethodDelete, "/v1/books/bk-1", "", "admin-1", model.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("bk-1")
	require.NoError(t, h.Delete(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, deleted)
}

func TestLookupEndpoint(t *testing.T) {
	meta := &lookupStub{
		lookup: func(ctx context.Context, isbn string) (*lookup.Metadata, error) {
			norm, err := lookup.NormalizeISBN(isbn)
			if err != nil {
				return nil, err
			}
			if norm == testISBN {
				return &lookup.Metadata{ISBN: norm, Title: "The Odyssey"}, nil
			}
			return nil, lookup.ErrNotFound
		},
	}
	h := NewBookHandler(&bookStoreStub{}, &copyStoreStub{}, meta)

	c, rec := newTestContext(http.MethodGet, "/v1/books/lookup?isbn="+testISBN, "", "", "")
	require.NoError(t, h.LookupISBN(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var md lookup.Metadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &md))
	assert.Equal(t, "The Odyssey", md.Title)

	c, rec = newTestContext(http.MethodGet, "/v1/books/lookup?isbn=not-an-isbn", "", "", "")
	require.NoError(t, h.LookupISBN(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/v1/books/lookup?isbn=9780306406157", "", "", "")
	require.NoError(t, h.LookupISBN(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = newTestContext(http.MethodGet, "/v1/books/lookup", "", "", "")
	require.NoError(t, h.LookupISBN(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBookListPassesFilters(t *testing.T) {
	var got repository.ListFilter
	books := &bookStoreStub{
		list: func(ctx context.Context, f repository.ListFilter) ([]model.BookSummary, error) {
			got = f
			return []model.BookSummary{}, nil
		},
	}
	h := NewBookHandler(books, &copyStoreStub{}, &lookupStub{})

	c, rec := newTestContext(http.MethodGet, "/v1/books?q=odyssey&branch_id=br1&available=true&limit=10&offset=20", "", "", "")
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "odyssey", got.Query)
	assert.Equal(t, "br1", got.BranchID)
	require.NotNil(t, got.Available)
	assert.True(t, *got.Available)
	assert.Equal(t, 10, got.Limit)
	assert.Equal(t, 20, got.Offset)
}
