package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okulov/home-library/internal/model"
)

// LoanRepo persists loans and owns the single-active-loan-per-copy
// invariant. MySQL cannot express a partial unique index on
// `returned_at IS NULL`, so Checkout locks the copy row inside a
// transaction before re-checking for an active loan: two concurrent
// checkouts serialize on that lock and the second observes the first
// one's insert. Ownership of the copy's branch is re-verified inside the
// same transaction as a second enforcement of the policy layer.
type LoanRepo struct{ DB *sql.DB }

func NewLoanRepo(db *sql.DB) *LoanRepo { return &LoanRepo{DB: db} }

const loanDetailQ = `SELECT l.id, l.copy_id, l.borrower_id, l.borrowed_at, l.due_date, l.returned_at, l.notes,
                            bk.title, br.id, br.name, br.owner_id, p.name
                     FROM loans l
                     JOIN copies c ON c.id = l.copy_id
                     JOIN books bk ON bk.id = c.book_id
                     JOIN branches br ON br.id = c.branch_id
                     JOIN profiles p ON p.id = l.borrower_id`

func scanLoanDetail(row interface{ Scan(...interface{}) error }) (model.LoanDetail, error) {
	var d model.LoanDetail
	var returned sql.NullTime
	var notes sql.NullString
	err := row.Scan(&d.ID, &d.CopyID, &d.BorrowerID, &d.BorrowedAt, &d.DueDate, &returned, &notes,
		&d.BookTitle, &d.BranchID, &d.BranchName, &d.BranchOwnerID, &d.BorrowerName)
	if err != nil {
		return d, err
	}
	if returned.Valid {
		t := returned.Time
		d.ReturnedAt = &t
	}
	d.Notes = nullStr(notes)
	return d, nil
}

// Checkout creates a loan for a copy, enforcing branch ownership and the
// no-active-loan rule within one transaction. actorID/actorIsAdmin carry
// the authenticated caller; non-admins must own the copy's branch.
func (r *LoanRepo) Checkout(ctx context.Context, copyID, borrowerID string, due time.Time, notes *string, actorID string, actorIsAdmin bool) (*model.Loan, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	// Lock the copy row; concurrent checkouts of the same copy serialize
	// here, so only one of them can observe "no active loan" below.
	var ownerID string
	err = tx.QueryRowContext(ctx,
		`SELECT br.owner_id FROM copies c JOIN branches br ON br.id = c.branch_id
		 WHERE c.id = ? FOR UPDATE`, copyID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCopyNotFound
		}
		return nil, err
	}
	if !actorIsAdmin && ownerID != actorID {
		return nil, ErrForbidden
	}

	var borrower string
	err = tx.QueryRowContext(ctx, "SELECT id FROM profiles WHERE id=?", borrowerID).Scan(&borrower)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}

	var active int
	if err := tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM loans WHERE copy_id=? AND returned_at IS NULL", copyID).Scan(&active); err != nil {
		return nil, err
	}
	if active > 0 {
		return nil, ErrCopyOnLoan
	}

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO loans (id, copy_id, borrower_id, borrowed_at, due_date, notes) VALUES (?,?,?,UTC_TIMESTAMP(),?,?)",
		id, copyID, borrowerID, due.Format("2006-01-02"), notes); err != nil {
		return nil, err
	}

	loan, err := getLoanTx(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return loan, nil
}

// Return marks a loan as returned. Returning an already-returned loan is
// rejected with ErrLoanReturned and leaves the row untouched; the terminal
// state never transitions again. Notes, when given, are appended to any
// existing note text.
func (r *LoanRepo) Return(ctx context.Context, loanID string, notes *string, actorID string, actorIsAdmin bool) (*model.Loan, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var ownerID string
	var returned sql.NullTime
	var existingNotes sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT br.owner_id, l.returned_at, l.notes
		 FROM loans l
		 JOIN copies c ON c.id = l.copy_id
		 JOIN branches br ON br.id = c.branch_id
		 WHERE l.id = ? FOR UPDATE`, loanID).Scan(&ownerID, &returned, &existingNotes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	if !actorIsAdmin && ownerID != actorID {
		return nil, ErrForbidden
	}
	if returned.Valid {
		return nil, ErrLoanReturned
	}

	newNotes := existingNotes
	if notes != nil && *notes != "" {
		joined := *notes
		if existingNotes.Valid && existingNotes.String != "" {
			joined = existingNotes.String + "\n" + joined
		}
		newNotes = sql.NullString{String: joined, Valid: true}
	}
	if _, err := tx.ExecContext(ctx,
		"UPDATE loans SET returned_at=UTC_TIMESTAMP(), notes=? WHERE id=?", newNotes, loanID); err != nil {
		return nil, err
	}

	loan, err := getLoanTx(ctx, tx, loanID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return loan, nil
}

// getLoanTx reads back a bare loan row within a transaction.
func getLoanTx(ctx context.Context, tx *sql.Tx, id string) (*model.Loan, error) {
	var l model.Loan
	var returned sql.NullTime
	var notes sql.NullString
	err := tx.QueryRowContext(ctx,
		"SELECT id, copy_id, borrower_id, borrowed_at, due_date, returned_at, notes FROM loans WHERE id=?", id).
		Scan(&l.ID, &l.CopyID, &l.BorrowerID, &l.BorrowedAt, &l.DueDate, &returned, &notes)
	if err != nil {
		return nil, err
	}
	if returned.Valid {
		t := returned.Time
		l.ReturnedAt = &t
	}
	l.Notes = nullStr(notes)
	return &l, nil
}

// GetDetail fetches a loan joined with book, branch and borrower info.
func (r *LoanRepo) GetDetail(ctx context.Context, id string) (*model.LoanDetail, error) {
	d, err := scanLoanDetail(r.DB.QueryRowContext(ctx, loanDetailQ+" WHERE l.id = ? LIMIT 1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrLoanNotFound
		}
		return nil, err
	}
	return &d, nil
}

// LoanFilter narrows the loan listing. VisibleToBorrower and VisibleToOwner
// carry the role-based visibility scope computed by the handler from the
// policy table: borrowers see only their own loans, branch owners only loans
// on copies at branches they own. Admins leave both empty.
type LoanFilter struct {
	Status            string // active | overdue | returned | "" (all)
	BorrowerID        string
	BranchID          string
	CopyID            string
	VisibleToBorrower string
	VisibleToOwner    string
	Limit             int
	Offset            int
}

// List returns loans matching the filter, newest first.
func (r *LoanRepo) List(ctx context.Context, f LoanFilter) ([]model.LoanDetail, error) {
	q := loanDetailQ
	var conds []string
	var args []interface{}
	switch f.Status {
	case model.LoanStatusActive:
		conds = append(conds, "l.returned_at IS NULL")
	case model.LoanStatusOverdue:
		conds = append(conds, "l.returned_at IS NULL AND l.due_date < UTC_DATE()")
	case model.LoanStatusReturned:
		conds = append(conds, "l.returned_at IS NOT NULL")
	}
	if f.BorrowerID != "" {
		conds = append(conds, "l.borrower_id = ?")
		args = append(args, f.BorrowerID)
	}
	if f.BranchID != "" {
		conds = append(conds, "br.id = ?")
		args = append(args, f.BranchID)
	}
	if f.CopyID != "" {
		conds = append(conds, "l.copy_id = ?")
		args = append(args, f.CopyID)
	}
	switch {
	case f.VisibleToBorrower != "" && f.VisibleToOwner != "":
		// A branch owner sees their own borrowings and all loans on their
		// branches.
		conds = append(conds, "(l.borrower_id = ? OR br.owner_id = ?)")
		args = append(args, f.VisibleToBorrower, f.VisibleToOwner)
	case f.VisibleToBorrower != "":
		conds = append(conds, "l.borrower_id = ?")
		args = append(args, f.VisibleToBorrower)
	case f.VisibleToOwner != "":
		conds = append(conds, "br.owner_id = ?")
		args = append(args, f.VisibleToOwner)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY l.borrowed_at DESC LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Offset)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.LoanDetail, 0)
	for rows.Next() {
		d, err := scanLoanDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
