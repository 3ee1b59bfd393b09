package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/okulov/home-library/internal/model"
)

// CopyRepo persists physical copies. Reads join the owning branch so
// handlers can apply branch-scoped policy from a single fetch; deletes
// re-check for an active loan inside a transaction so a copy that is
// physically out can never be removed.
type CopyRepo struct{ DB *sql.DB }

func NewCopyRepo(db *sql.DB) *CopyRepo { return &CopyRepo{DB: db} }

const copyDetailQ = `SELECT c.id, c.book_id, c.branch_id, c.condition, c.notes, c.added_by, c.added_at,
                            bk.title, bk.isbn, br.name, br.owner_id, l.id
                     FROM copies c
                     JOIN books bk ON bk.id = c.book_id
                     JOIN branches br ON br.id = c.branch_id
                     LEFT JOIN loans l ON l.copy_id = c.id AND l.returned_at IS NULL`

func scanCopyDetail(row interface{ Scan(...interface{}) error }) (model.CopyDetail, error) {
	var d model.CopyDetail
	var condition, notes, isbn, loanID sql.NullString
	err := row.Scan(&d.ID, &d.BookID, &d.BranchID, &condition, &notes, &d.AddedBy, &d.AddedAt,
		&d.BookTitle, &isbn, &d.BranchName, &d.BranchOwnerID, &loanID)
	if err != nil {
		return d, err
	}
	d.Condition = nullStr(condition)
	d.Notes = nullStr(notes)
	d.BookISBN = nullStr(isbn)
	d.ActiveLoanID = nullStr(loanID)
	d.IsAvailable = d.ActiveLoanID == nil
	return d, nil
}

// CopyFilter narrows the copy listing.
type CopyFilter struct {
	BookID    string
	BranchID  string
	Available *bool
	Limit     int
	Offset    int
}

// List returns copies with book, branch and availability annotations.
func (r *CopyRepo) List(ctx context.Context, f CopyFilter) ([]model.CopyDetail, error) {
	q := copyDetailQ
	var conds []string
	var args []interface{}
	if f.BookID != "" {
		conds = append(conds, "c.book_id = ?")
		args = append(args, f.BookID)
	}
	if f.BranchID != "" {
		conds = append(conds, "c.branch_id = ?")
		args = append(args, f.BranchID)
	}
	if f.Available != nil {
		if *f.Available {
			conds = append(conds, "l.id IS NULL")
		} else {
			conds = append(conds, "l.id IS NOT NULL")
		}
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY c.added_at DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Offset)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.CopyDetail, 0)
	for rows.Next() {
		d, err := scanCopyDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// GetByID fetches one copy with book, branch and loan annotations.
func (r *CopyRepo) GetByID(ctx context.Context, id string) (*model.CopyDetail, error) {
	d, err := scanCopyDetail(r.DB.QueryRowContext(ctx, copyDetailQ+" WHERE c.id = ? LIMIT 1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCopyNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ListByBook returns all copies of one book, for the book detail view.
func (r *CopyRepo) ListByBook(ctx context.Context, bookID string) ([]model.CopyDetail, error) {
	return r.List(ctx, CopyFilter{BookID: bookID, Limit: 1000})
}

// Create inserts a copy row. Missing parents surface as foreign-key
// violations; the handler verifies the branch beforehand (it needs the owner
// for the policy check), so a violation here means the book vanished.
func (r *CopyRepo) Create(ctx context.Context, c *model.Copy) (*model.CopyDetail, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO copies (id, book_id, branch_id, `condition`, notes, added_by) VALUES (?,?,?,?,?,?)",
		id, c.BookID, c.BranchID, c.Condition, c.Notes, c.AddedBy)
	if err != nil {
		if isFKViolation(err) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Update applies non-nil condition/notes changes to a copy.
func (r *CopyRepo) Update(ctx context.Context, id string, condition, notes *string) (*model.CopyDetail, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if condition != nil {
		if _, err := r.DB.ExecContext(ctx, "UPDATE copies SET `condition`=? WHERE id=?", *condition, id); err != nil {
			return nil, err
		}
	}
	if notes != nil {
		if _, err := r.DB.ExecContext(ctx, "UPDATE copies SET notes=? WHERE id=?", *notes, id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a copy unless it has an active loan. The check and the
// delete run in one transaction with the copy row locked, so a concurrent
// checkout cannot slip in between.
func (r *CopyRepo) Delete(ctx context.Context, id string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var copyID string
	err = tx.QueryRowContext(ctx, "SELECT id FROM copies WHERE id=? FOR UPDATE", id).Scan(&copyID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCopyNotFound
		}
		return err
	}
	var active int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM loans WHERE copy_id=? AND returned_at IS NULL", id).Scan(&active); err != nil {
		return err
	}
	if active > 0 {
		return ErrCopyOnLoan
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM copies WHERE id=?", id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
