// Package lookup resolves bibliographic metadata for an ISBN from external
// providers. Open Library is queried first; on a miss or error the client
// falls through to Google Books. Lookups have a bounded timeout and are
// never retried beyond that single fallback — a miss is reported as
// ErrNotFound and the caller falls back to manual entry.
package lookup

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrNotFound is returned when neither provider yields a title for the ISBN.
var ErrNotFound = errors.New("no metadata found for isbn")

// Metadata is the common shape both providers are mapped onto.
type Metadata struct {
	ISBN        string  `json:"isbn"`
	Title       string  `json:"title"`
	Author      *string `json:"author,omitempty"`
	CoverURL    *string `json:"cover_url,omitempty"`
	Publisher   *string `json:"publisher,omitempty"`
	PublishYear *int    `json:"publish_year,omitempty"`
	PageCount   *int    `json:"page_count,omitempty"`
	Description *string `json:"description,omitempty"`
}

// Client queries the metadata providers. Base URLs are fields so tests can
// point the client at local servers.
type Client struct {
	http            *http.Client
	openLibraryBase string
	coversBase      string
	googleBooksBase string
}

// NewClient returns a Client whose requests are bounded by timeout. A zero
// timeout falls back to ten seconds.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http:            &http.Client{Timeout: timeout},
		openLibraryBase: "https://openlibrary.org",
		coversBase:      "https://covers.openlibrary.org",
		googleBooksBase: "https://www.googleapis.com",
	}
}

// Lookup normalizes the ISBN and queries the providers in order, returning
// the first hit. It has no side effects on the catalog store. Returns
// ErrInvalidISBN for malformed input and ErrNotFound when both providers
// miss. Provider transport errors are treated as misses: manual entry is
// always available, so an outage must never be fatal to the add-book flow.
func (c *Client) Lookup(ctx context.Context, isbn string) (*Metadata, error) {
	norm, err := NormalizeISBN(isbn)
	if err != nil {
		return nil, err
	}
	if md := c.lookupOpenLibrary(ctx, norm); md != nil {
		return md, nil
	}
	if md := c.lookupGoogleBooks(ctx, norm); md != nil {
		return md, nil
	}
	return nil, ErrNotFound
}

// getJSON performs a GET and decodes a 200 JSON body into out. Any non-200
// status or transport/decode error is reported so the provider counts as a
// miss.
func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return errors.New("unexpected status " + resp.Status)
	}
	return decodeJSON(resp.Body, out)
}
