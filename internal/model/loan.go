package model

import "time"

// Loan status filter values accepted by the loans list endpoint.
const (
	LoanStatusActive   = "active"
	LoanStatusOverdue  = "overdue"
	LoanStatusReturned = "returned"
)

// Loan ties one copy to one borrowing profile, a row in the `loans` table.
// A loan is active while ReturnedAt is nil; at most one active loan may
// exist per copy at any time. The only transition is active -> returned,
// which is terminal.
//
// Fields:
//
//	ID         – UUID primary key.
//	CopyID     – copy being borrowed.
//	BorrowerID – borrowing profile.
//	BorrowedAt – checkout timestamp (UTC).
//	DueDate    – date the copy is due back.
//	ReturnedAt – return timestamp, nil while the loan is active.
//	Notes      – optional free-form notes.
type Loan struct {
	ID         string     `json:"id"`
	CopyID     string     `json:"copy_id"`
	BorrowerID string     `json:"borrower_id"`
	BorrowedAt time.Time  `json:"borrowed_at"`
	DueDate    time.Time  `json:"due_date"`
	ReturnedAt *time.Time `json:"returned_at,omitempty"`
	Notes      *string    `json:"notes,omitempty"`
}

// LoanDetail joins a loan with book, branch and borrower information for
// list and detail responses. BranchOwnerID is used by handlers to apply the
// branch-ownership policy and is not serialized.
type LoanDetail struct {
	Loan
	BookTitle     string `json:"book_title"`
	BranchID      string `json:"branch_id"`
	BranchName    string `json:"branch_name"`
	BranchOwnerID string `json:"-"`
	BorrowerName  string `json:"borrower_name"`
}
