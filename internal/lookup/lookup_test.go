package lookup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testISBN = "9780140449136"

// newTestClient points all provider bases at the given handlers.
func newTestClient(openLibrary, google http.Handler) (*Client, func()) {
	ol := httptest.NewServer(openLibrary)
	gb := httptest.NewServer(google)
	c := NewClient(2 * time.Second)
	c.openLibraryBase = ol.URL
	c.coversBase = "https://covers.example.org"
	c.googleBooksBase = gb.URL
	return c, func() { ol.Close(); gb.Close() }
}

func TestLookupOpenLibraryHit(t *testing.T) {
	ol := http.NewServeMux()
	ol.HandleFunc("/isbn/"+testISBN+".json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"title": "The Odyssey",
			"publishers": ["Penguin Classics"],
			"publish_date": "January 2003",
			"number_of_pages": 541,
			"description": {"type": "/type/text", "value": "Homer's epic."},
			"authors": [{"key": "/authors/OL12345A"}]
		}`))
	})
	ol.HandleFunc("/authors/OL12345A.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"name": "Homer"}`))
	})
	google := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("secondary provider must not be queried on a primary hit")
	})

	c, done := newTestClient(ol, google)
	defer done()

	md, err := c.Lookup(context.Background(), "978-0-14-044913-6")
	require.NoError(t, err)
	assert.Equal(t, testISBN, md.ISBN)
	assert.Equal(t, "The Odyssey", md.Title)
	require.NotNil(t, md.Author)
	assert.Equal(t, "Homer", *md.Author)
	require.NotNil(t, md.Publisher)
	assert.Equal(t, "Penguin Classics", *md.Publisher)
	require.NotNil(t, md.PublishYear)
	assert.Equal(t, 2003, *md.PublishYear)
	require.NotNil(t, md.PageCount)
	assert.Equal(t, 541, *md.PageCount)
	require.NotNil(t, md.Description)
	assert.Equal(t, "Homer's epic.", *md.Description)
	require.NotNil(t, md.CoverURL)
	assert.Equal(t, "https://covers.example.org/b/isbn/"+testISBN+"-M.jpg", *md.CoverURL)
}

func TestLookupFallsBackToGoogleBooks(t *testing.T) {
	ol := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	google := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "isbn:"+testISBN, r.URL.Query().Get("q"))
		w.Write([]byte(`{
			"totalItems": 1,
			"items": [{"volumeInfo": {
				"title": "The Odyssey",
				"authors": ["Homer", "Robert Fagles"],
				"publisher": "Penguin",
				"publishedDate": "1999-11-01",
				"pageCount": 560,
				"description": "A translation."
			}}]
		}`))
	})

	c, done := newTestClient(ol, google)
	defer done()

	md, err := c.Lookup(context.Background(), testISBN)
	require.NoError(t, err)
	assert.Equal(t, "The Odyssey", md.Title)
	require.NotNil(t, md.Author)
	assert.Equal(t, "Homer, Robert Fagles", *md.Author)
	require.NotNil(t, md.PublishYear)
	assert.Equal(t, 1999, *md.PublishYear)
}

func TestLookupBothProvidersMiss(t *testing.T) {
	ol := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	google := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"totalItems": 0}`))
	})

	c, done := newTestClient(ol, google)
	defer done()

	_, err := c.Lookup(context.Background(), testISBN)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLookupRejectsMalformedISBN(t *testing.T) {
	c := NewClient(time.Second)
	_, err := c.Lookup(context.Background(), "not-an-isbn")
	assert.ErrorIs(t, err, ErrInvalidISBN)
}

func TestLookupPlainStringDescription(t *testing.T) {
	ol := http.NewServeMux()
	ol.HandleFunc("/isbn/"+testISBN+".json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title": "The Odyssey", "description": "plain text"}`))
	})
	google := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	c, done := newTestClient(ol, google)
	defer done()

	md, err := c.Lookup(context.Background(), testISBN)
	require.NoError(t, err)
	require.NotNil(t, md.Description)
	assert.Equal(t, "plain text", *md.Description)
	assert.Nil(t, md.Author)
}
