package model

import "time"

// Branch is a physical book-holding location owned by one profile.
// Corresponds to a row in the `branches` table.
//
// Fields:
//
//	ID        – UUID primary key.
//	Name      – branch name.
//	OwnerID   – profile ID of the branch owner.
//	Address   – optional street address.
//	CreatedAt – timestamp of creation.
//	UpdatedAt – timestamp of last update.
type Branch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BranchStats aggregates copy/loan counts for a branch detail view.
type BranchStats struct {
	TotalCopies int `json:"total_copies"`
	Available   int `json:"available"`
	OnLoan      int `json:"on_loan"`
}
