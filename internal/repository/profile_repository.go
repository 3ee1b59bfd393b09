package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/okulov/home-library/internal/model"
	"github.com/okulov/home-library/internal/utils"
)

// ProfileRepo persists profiles, the identity side-table carrying the role.
// A profile is created on first registration and defaults to the borrower
// role; only an admin can raise it afterwards.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

const profileCols = `id, email, name, password_hash, role, created_at, updated_at`

func scanProfile(row interface{ Scan(...interface{}) error }) (model.Profile, error) {
	var p model.Profile
	err := row.Scan(&p.ID, &p.Email, &p.Name, &p.PasswordHash, &p.Role, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// Create inserts a new profile with the borrower role and returns it.
// The email is normalized to lower case before insert.
func (r *ProfileRepo) Create(ctx context.Context, email, name, password string, cost int) (*model.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO profiles (id, email, name, password_hash, role) VALUES (?,?,?,?,?)",
		id, email, name, hash, model.RoleBorrower)
	if err != nil {
		if isDuplicateKey(err) {
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// GetByEmail fetches a profile by normalized email, password hash included.
func (r *ProfileRepo) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	p, err := scanProfile(r.DB.QueryRowContext(ctx,
		"SELECT "+profileCols+" FROM profiles WHERE email=? LIMIT 1", email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

// GetByID fetches a profile by id.
func (r *ProfileRepo) GetByID(ctx context.Context, id string) (*model.Profile, error) {
	p, err := scanProfile(r.DB.QueryRowContext(ctx,
		"SELECT "+profileCols+" FROM profiles WHERE id=? LIMIT 1", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, err
	}
	return &p, nil
}

// List returns profiles filtered by role and/or a name/email substring,
// newest first. Used by the admin user listing.
func (r *ProfileRepo) List(ctx context.Context, role, q string, limit, offset int) ([]model.Profile, error) {
	query := "SELECT " + profileCols + " FROM profiles"
	var conds []string
	var args []interface{}
	if role != "" {
		conds = append(conds, "role=?")
		args = append(args, role)
	}
	if q != "" {
		conds = append(conds, "(name LIKE ? OR email LIKE ?)")
		like := "%" + q + "%"
		args = append(args, like, like)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	profiles := make([]model.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// UpdateName changes the display name of a profile (self-service edit).
func (r *ProfileRepo) UpdateName(ctx context.Context, id, name string) (*model.Profile, error) {
	res, err := r.DB.ExecContext(ctx, "UPDATE profiles SET name=? WHERE id=?", name, id)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is 0 both for a missing row and an unchanged name,
		// so confirm existence before reporting not found.
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// UpdateRole changes a profile's role. Role validity is checked by the
// handler; this method only enforces row existence.
func (r *ProfileRepo) UpdateRole(ctx context.Context, id, role string) (*model.Profile, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if _, err := r.DB.ExecContext(ctx, "UPDATE profiles SET role=? WHERE id=?", role, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}
