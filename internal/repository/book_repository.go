package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/okulov/home-library/internal/model"
)

// BookRepo persists bibliographic records. The isbn column carries a unique
// index which is the authority for the one-book-per-ISBN invariant: when two
// concurrent creates race on the same ISBN the second insert fails with a
// duplicate-key error and FindOrCreateByISBN re-reads the winning row.
type BookRepo struct{ DB *sql.DB }

func NewBookRepo(db *sql.DB) *BookRepo { return &BookRepo{DB: db} }

const bookCols = `id, isbn, title, author, cover_url, publisher, publish_year, page_count, description, created_at, updated_at`

func scanBook(row interface{ Scan(...interface{}) error }) (model.Book, error) {
	var b model.Book
	var isbn, author, cover, publisher, description sql.NullString
	var year, pages sql.NullInt64
	err := row.Scan(&b.ID, &isbn, &b.Title, &author, &cover, &publisher, &year, &pages, &description,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return b, err
	}
	b.ISBN = nullStr(isbn)
	b.Author = nullStr(author)
	b.CoverURL = nullStr(cover)
	b.Publisher = nullStr(publisher)
	b.Description = nullStr(description)
	b.PublishYear = nullInt(year)
	b.PageCount = nullInt(pages)
	return b, nil
}

func nullStr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

// ListFilter narrows the book listing. Query matches title or author with a
// LIKE. BranchID restricts copy counting (and matching) to one branch.
// Available filters on whether at least one (or no) copy is free.
type ListFilter struct {
	Query     string
	BranchID  string
	Available *bool
	Limit     int
	Offset    int
}

// List returns books annotated with total and available copy counts.
// With one active loan at most per copy, available = copies - active loans.
func (r *BookRepo) List(ctx context.Context, f ListFilter) ([]model.BookSummary, error) {
	q := `SELECT b.id, b.isbn, b.title, b.author, b.cover_url, b.publisher, b.publish_year,
	             b.page_count, b.description, b.created_at, b.updated_at,
	             COUNT(c.id), COUNT(c.id) - COUNT(l.id)
	      FROM books b
	      LEFT JOIN copies c ON c.book_id = b.id`
	var args []interface{}
	if f.BranchID != "" {
		q += ` AND c.branch_id = ?`
		args = append(args, f.BranchID)
	}
	q += ` LEFT JOIN loans l ON l.copy_id = c.id AND l.returned_at IS NULL`
	if f.Query != "" {
		q += ` WHERE (b.title LIKE ? OR b.author LIKE ?)`
		like := "%" + f.Query + "%"
		args = append(args, like, like)
	}
	q += ` GROUP BY b.id, b.isbn, b.title, b.author, b.cover_url, b.publisher, b.publish_year,
	                b.page_count, b.description, b.created_at, b.updated_at`
	var having []string
	if f.BranchID != "" {
		having = append(having, "COUNT(c.id) > 0")
	}
	if f.Available != nil {
		if *f.Available {
			having = append(having, "COUNT(c.id) - COUNT(l.id) > 0")
		} else {
			having = append(having, "COUNT(c.id) > 0 AND COUNT(c.id) - COUNT(l.id) = 0")
		}
	}
	if len(having) > 0 {
		q += ` HAVING ` + strings.Join(having, " AND ")
	}
	q += ` ORDER BY b.title LIMIT ? OFFSET ?`
	args = append(args, f.Limit, f.Offset)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.BookSummary, 0)
	for rows.Next() {
		var s model.BookSummary
		var isbn, author, cover, publisher, description sql.NullString
		var year, pages sql.NullInt64
		if err := rows.Scan(&s.ID, &isbn, &s.Title, &author, &cover, &publisher, &year, &pages,
			&description, &s.CreatedAt, &s.UpdatedAt, &s.TotalCopies, &s.AvailableCopies); err != nil {
			return nil, err
		}
		s.ISBN = nullStr(isbn)
		s.Author = nullStr(author)
		s.CoverURL = nullStr(cover)
		s.Publisher = nullStr(publisher)
		s.Description = nullStr(description)
		s.PublishYear = nullInt(year)
		s.PageCount = nullInt(pages)
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID fetches a single book row.
func (r *BookRepo) GetByID(ctx context.Context, id string) (*model.Book, error) {
	b, err := scanBook(r.DB.QueryRowContext(ctx,
		"SELECT "+bookCols+" FROM books WHERE id=? LIMIT 1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &b, nil
}

// GetByISBN fetches the book holding the given normalized ISBN.
func (r *BookRepo) GetByISBN(ctx context.Context, isbn string) (*model.Book, error) {
	b, err := scanBook(r.DB.QueryRowContext(ctx,
		"SELECT "+bookCols+" FROM books WHERE isbn=? LIMIT 1", isbn))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &b, nil
}

// Create inserts a new book. A duplicate ISBN is reported as
// ErrDuplicateISBN; the caller decides whether that is a conflict (explicit
// create) or a resolution target (find-or-create).
func (r *BookRepo) Create(ctx context.Context, b *model.Book) (*model.Book, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO books (id, isbn, title, author, cover_url, publisher, publish_year, page_count, description)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		id, b.ISBN, b.Title, b.Author, b.CoverURL, b.Publisher, b.PublishYear, b.PageCount, b.Description)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateISBN
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// FindOrCreateByISBN resolves a candidate book to a stored one, with the
// ISBN as the natural key. An existing book is returned unchanged —
// first-write-wins keeps manual corrections made by a prior cataloger. When
// the candidate has no ISBN a fresh book is always created (ISBN-less works
// are never merged). A lost insert race is resolved by re-reading the
// winner, so the caller never sees the constraint violation.
func (r *BookRepo) FindOrCreateByISBN(ctx context.Context, b *model.Book) (*model.Book, bool, error) {
	if b.ISBN != nil && *b.ISBN != "" {
		existing, err := r.GetByISBN(ctx, *b.ISBN)
		if err == nil {
			return existing, false, nil
		}
		if !errors.Is(err, ErrBookNotFound) {
			return nil, false, err
		}
	}
	created, err := r.Create(ctx, b)
	if err != nil {
		if errors.Is(err, ErrDuplicateISBN) && b.ISBN != nil {
			winner, rerr := r.GetByISBN(ctx, *b.ISBN)
			if rerr != nil {
				return nil, false, rerr
			}
			return winner, false, nil
		}
		return nil, false, err
	}
	return created, true, nil
}

// Delete removes a book; copies cascade via foreign key.
func (r *BookRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM books WHERE id=?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookNotFound
	}
	return nil
}
