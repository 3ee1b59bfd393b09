package lookup

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// googleVolumes mirrors the subset of the Google Books volumes response we
// consume.
type googleVolumes struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title         string   `json:"title"`
			Authors       []string `json:"authors"`
			Publisher     string   `json:"publisher"`
			PublishedDate string   `json:"publishedDate"`
			PageCount     int      `json:"pageCount"`
			Description   string   `json:"description"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// lookupGoogleBooks queries the volumes endpoint with an isbn: filter.
// The Open Library cover URL is used even here: their cover archive is more
// reliable than Google's thumbnails and usually has images for editions
// Google only knows textually.
func (c *Client) lookupGoogleBooks(ctx context.Context, isbn string) *Metadata {
	u := fmt.Sprintf("%s/books/v1/volumes?q=%s", c.googleBooksBase, url.QueryEscape("isbn:"+isbn))
	var vols googleVolumes
	if err := c.getJSON(ctx, u, &vols); err != nil {
		return nil
	}
	if vols.TotalItems == 0 || len(vols.Items) == 0 {
		return nil
	}
	info := vols.Items[0].VolumeInfo
	if strings.TrimSpace(info.Title) == "" {
		return nil
	}

	md := &Metadata{ISBN: isbn, Title: info.Title}
	if len(info.Authors) > 0 {
		author := strings.Join(info.Authors, ", ")
		md.Author = &author
	}
	cover := fmt.Sprintf("%s/b/isbn/%s-M.jpg", c.coversBase, isbn)
	md.CoverURL = &cover
	if info.Publisher != "" {
		md.Publisher = &info.Publisher
	}
	if y := parseYear(info.PublishedDate); y != 0 {
		md.PublishYear = &y
	}
	if info.PageCount > 0 {
		pages := info.PageCount
		md.PageCount = &pages
	}
	if info.Description != "" {
		md.Description = &info.Description
	}
	return md
}

// parseYear extracts the leading year from date strings like "2020-01-15"
// or "2020". Returns 0 when no year can be parsed.
func parseYear(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}
