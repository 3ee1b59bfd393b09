package model

import "time"

// Copy condition values accepted by the API.
const (
	ConditionExcellent = "excellent"
	ConditionGood      = "good"
	ConditionFair      = "fair"
	ConditionPoor      = "poor"
)

// ValidCondition reports whether s is a known condition name.
func ValidCondition(s string) bool {
	switch s {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

// Copy is one physical instance of a book held at a branch, a row in the
// `copies` table.
//
// Fields:
//
//	ID        – UUID primary key.
//	BookID    – book this copy belongs to.
//	BranchID  – branch holding the copy.
//	Condition – optional condition enum.
//	Notes     – optional free-form notes.
//	AddedBy   – profile that cataloged the copy.
//	AddedAt   – timestamp of cataloging.
type Copy struct {
	ID        string    `json:"id"`
	BookID    string    `json:"book_id"`
	BranchID  string    `json:"branch_id"`
	Condition *string   `json:"condition,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	AddedBy   string    `json:"added_by"`
	AddedAt   time.Time `json:"added_at"`
}

// CopyDetail joins a copy with its book, branch and loan status for
// responses. BranchOwnerID is carried so handlers can apply the
// branch-ownership policy without a second query.
type CopyDetail struct {
	Copy
	BookTitle     string  `json:"book_title"`
	BookISBN      *string `json:"book_isbn,omitempty"`
	BranchName    string  `json:"branch_name"`
	BranchOwnerID string  `json:"-"`
	IsAvailable   bool    `json:"is_available"`
	ActiveLoanID  *string `json:"active_loan_id,omitempty"`
}
