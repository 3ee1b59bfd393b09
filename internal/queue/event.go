// Package queue defines message payloads exchanged over the message broker
// and the background consumer that processes them.
package queue

// Loan event kinds published to the loan.activity queue.
const (
	LoanCheckedOut = "checked_out"
	LoanReturned   = "returned"
)

// LoanEvent is published when a copy is checked out or returned. It carries
// enough information for downstream consumers to log or notify without
// querying the primary database.
type LoanEvent struct {
	Kind         string `json:"kind"` // checked_out | returned
	LoanID       string `json:"loan_id"`
	CopyID       string `json:"copy_id"`
	BookTitle    string `json:"book_title"`
	BranchID     string `json:"branch_id"`
	BranchName   string `json:"branch_name"`
	BorrowerID   string `json:"borrower_id"`
	BorrowerName string `json:"borrower_name"`
	DueDate      string `json:"due_date"`
	OccurredAt   string `json:"occurred_at"`
}
