package model

import "time"

// Book is a bibliographic record, one per distinct ISBN. ISBN-less works are
// allowed; several books with a null ISBN may coexist and are never merged.
// Bibliographic fields are first-write-wins: once a book exists for an ISBN
// later lookups return it unchanged so manual corrections survive.
//
// Fields:
//
//	ID          – UUID primary key.
//	ISBN        – normalized ISBN-10/13, unique when present.
//	Title       – required title.
//	Author      – optional author(s), comma separated.
//	CoverURL    – optional cover image URL.
//	Publisher   – optional publisher name.
//	PublishYear – optional four-digit year.
//	PageCount   – optional page count.
//	Description – optional free-form description.
type Book struct {
	ID          string    `json:"id"`
	ISBN        *string   `json:"isbn,omitempty"`
	Title       string    `json:"title"`
	Author      *string   `json:"author,omitempty"`
	CoverURL    *string   `json:"cover_url,omitempty"`
	Publisher   *string   `json:"publisher,omitempty"`
	PublishYear *int      `json:"publish_year,omitempty"`
	PageCount   *int      `json:"page_count,omitempty"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BookSummary is a book row annotated with copy counts for list views.
type BookSummary struct {
	Book
	TotalCopies     int `json:"total_copies"`
	AvailableCopies int `json:"available_copies"`
}
