package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strings"
)

// yearRe extracts a plausible four-digit year from Open Library's
// free-form publish_date strings ("May 2003", "2003-05-01", ...).
var yearRe = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// openLibraryEdition mirrors the subset of the edition JSON we consume.
// The description field is either a plain string or {"value": "..."},
// so it is captured raw and unpacked separately.
type openLibraryEdition struct {
	Title         string          `json:"title"`
	Publishers    []string        `json:"publishers"`
	PublishDate   string          `json:"publish_date"`
	NumberOfPages int             `json:"number_of_pages"`
	Description   json.RawMessage `json:"description"`
	Authors       []struct {
		Key string `json:"key"`
	} `json:"authors"`
}

// lookupOpenLibrary fetches /isbn/{isbn}.json and, when present, resolves
// the first author key to a name with a second request. Any failure makes
// this provider count as a miss (nil).
func (c *Client) lookupOpenLibrary(ctx context.Context, isbn string) *Metadata {
	var ed openLibraryEdition
	if err := c.getJSON(ctx, fmt.Sprintf("%s/isbn/%s.json", c.openLibraryBase, isbn), &ed); err != nil {
		return nil
	}
	if strings.TrimSpace(ed.Title) == "" {
		return nil
	}

	md := &Metadata{ISBN: isbn, Title: ed.Title}

	// Resolve the author name via the referenced author record. A failed
	// author fetch leaves the field empty rather than failing the lookup.
	if len(ed.Authors) > 0 && ed.Authors[0].Key != "" {
		var author struct {
			Name string `json:"name"`
		}
		if err := c.getJSON(ctx, c.openLibraryBase+ed.Authors[0].Key+".json", &author); err == nil && author.Name != "" {
			md.Author = &author.Name
		}
	}

	cover := fmt.Sprintf("%s/b/isbn/%s-M.jpg", c.coversBase, isbn)
	md.CoverURL = &cover

	if len(ed.Publishers) > 0 && ed.Publishers[0] != "" {
		md.Publisher = &ed.Publishers[0]
	}
	if m := yearRe.FindString(ed.PublishDate); m != "" {
		y := atoiSafe(m)
		md.PublishYear = &y
	}
	if ed.NumberOfPages > 0 {
		pages := ed.NumberOfPages
		md.PageCount = &pages
	}
	if desc := extractDescription(ed.Description); desc != "" {
		md.Description = &desc
	}
	return md
}

// extractDescription handles Open Library descriptions that are either a
// bare string or a {"type": ..., "value": ...} object.
func extractDescription(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Value
	}
	return ""
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}

// decodeJSON decodes a JSON body, shared by both providers.
func decodeJSON(r io.Reader, out interface{}) error {
	return json.NewDecoder(r).Decode(out)
}
