package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/okulov/home-library/internal/model"
)

// BranchRepo persists branches. Branch creation is admin-only and updates
// are owner-or-admin; both checks live in the handler via the policy table,
// while ownership data needed for those checks is loaded here.
type BranchRepo struct{ DB *sql.DB }

func NewBranchRepo(db *sql.DB) *BranchRepo { return &BranchRepo{DB: db} }

// BranchSummary is a branch row annotated with the owner's name and the
// number of copies held, as shown in the public branch listing.
type BranchSummary struct {
	model.Branch
	OwnerName string `json:"owner_name"`
	CopyCount int    `json:"copy_count"`
}

// BranchDetail extends BranchSummary with availability stats for the
// public branch detail view.
type BranchDetail struct {
	BranchSummary
	Stats model.BranchStats `json:"stats"`
}

// List returns all branches with owner names and copy counts.
func (r *BranchRepo) List(ctx context.Context) ([]BranchSummary, error) {
	const q = `SELECT b.id, b.name, b.owner_id, b.address, b.created_at, b.updated_at,
	                  p.name, COUNT(c.id)
	           FROM branches b
	           JOIN profiles p ON p.id = b.owner_id
	           LEFT JOIN copies c ON c.branch_id = b.id
	           GROUP BY b.id, b.name, b.owner_id, b.address, b.created_at, b.updated_at, p.name
	           ORDER BY b.name`
	rows, err := r.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BranchSummary, 0)
	for rows.Next() {
		var s BranchSummary
		var address sql.NullString
		if err := rows.Scan(&s.ID, &s.Name, &s.OwnerID, &address, &s.CreatedAt, &s.UpdatedAt,
			&s.OwnerName, &s.CopyCount); err != nil {
			return nil, err
		}
		if address.Valid {
			a := address.String
			s.Address = &a
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID fetches a bare branch row.
func (r *BranchRepo) GetByID(ctx context.Context, id string) (*model.Branch, error) {
	var b model.Branch
	var address sql.NullString
	err := r.DB.QueryRowContext(ctx,
		"SELECT id, name, owner_id, address, created_at, updated_at FROM branches WHERE id=? LIMIT 1", id).
		Scan(&b.ID, &b.Name, &b.OwnerID, &address, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBranchNotFound
		}
		return nil, err
	}
	if address.Valid {
		a := address.String
		b.Address = &a
	}
	return &b, nil
}

// GetDetail fetches a branch with owner name and copy/loan availability
// stats. A copy counts as on loan when it has a loan with returned_at NULL.
func (r *BranchRepo) GetDetail(ctx context.Context, id string) (*BranchDetail, error) {
	branch, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	var det BranchDetail
	det.Branch = *branch

	if err := r.DB.QueryRowContext(ctx,
		"SELECT name FROM profiles WHERE id=?", branch.OwnerID).Scan(&det.OwnerName); err != nil {
		return nil, err
	}

	const statsQ = `SELECT COUNT(c.id), COUNT(l.id)
	                FROM copies c
	                LEFT JOIN loans l ON l.copy_id = c.id AND l.returned_at IS NULL
	                WHERE c.branch_id = ?`
	var total, onLoan int
	if err := r.DB.QueryRowContext(ctx, statsQ, id).Scan(&total, &onLoan); err != nil {
		return nil, err
	}
	det.CopyCount = total
	det.Stats = model.BranchStats{TotalCopies: total, Available: total - onLoan, OnLoan: onLoan}
	return &det, nil
}

// Create inserts a branch for the given owner. A missing owner profile is
// rejected by the owner_id foreign key and reported as ErrProfileNotFound.
func (r *BranchRepo) Create(ctx context.Context, name, ownerID string, address *string) (*model.Branch, error) {
	id := uuid.NewString()
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO branches (id, name, owner_id, address) VALUES (?,?,?,?)",
		id, name, ownerID, address)
	if err != nil {
		if isFKViolation(err) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Update applies non-nil fields to a branch. Returns the updated row.
func (r *BranchRepo) Update(ctx context.Context, id string, name, address *string) (*model.Branch, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if name != nil {
		if _, err := r.DB.ExecContext(ctx, "UPDATE branches SET name=? WHERE id=?", *name, id); err != nil {
			return nil, err
		}
	}
	if address != nil {
		if _, err := r.DB.ExecContext(ctx, "UPDATE branches SET address=? WHERE id=?", *address, id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}
