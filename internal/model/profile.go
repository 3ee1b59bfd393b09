package model

import "time"

// Role values stored in profiles.role. The hierarchy is
// admin > branch_owner > borrower; every tier includes the
// capabilities of the tiers below it.
const (
	RoleAdmin       = "admin"
	RoleBranchOwner = "branch_owner"
	RoleBorrower    = "borrower"
)

// ValidRole reports whether s is one of the known role names.
func ValidRole(s string) bool {
	return s == RoleAdmin || s == RoleBranchOwner || s == RoleBorrower
}

// Profile represents an identity known to the system, one row in the
// `profiles` table. A profile is created automatically the first time an
// identity registers, defaulting to the borrower role. The password hash
// never leaves the repository layer.
//
// Fields:
//
//	ID           – UUID primary key, shared with issued tokens (sub claim).
//	Email        – unique sign-in address.
//	Name         – display name, self-editable.
//	PasswordHash – bcrypt hash of the password.
//	Role         – admin | branch_owner | borrower.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type Profile struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
