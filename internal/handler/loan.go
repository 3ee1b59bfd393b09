package handler

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/okulov/home-library/internal/model"
	"github.com/okulov/home-library/internal/policy"
	"github.com/okulov/home-library/internal/queue"
	"github.com/okulov/home-library/internal/repository"
)

// LoanPublisher publishes a loan activity event to the broker. It is a
// function type so tests can capture events without a running broker.
type LoanPublisher func(ctx context.Context, ev queue.LoanEvent) error

// LoanHandler serves the lending endpoints.
type LoanHandler struct {
	Loans   LoanStore
	Publish LoanPublisher
}

func NewLoanHandler(l LoanStore, pub LoanPublisher) *LoanHandler {
	return &LoanHandler{Loans: l, Publish: pub}
}

type checkoutReq struct {
	CopyID     string  `json:"copy_id"`
	BorrowerID string  `json:"borrower_id"`
	DueDate    string  `json:"due_date"` // YYYY-MM-DD
	Notes      *string `json:"notes"`
}

type returnReq struct {
	Notes *string `json:"notes"`
}

// List is GET /v1/loans. Visibility is role-scoped: borrowers see their own
// loans, branch owners additionally see every loan on their branches, admins
// see everything. Supports status, borrower_id, branch_id, copy_id filters
// and pagination.
func (h *LoanHandler) List(c echo.Context) error {
	status := c.QueryParam("status")
	if status != "" && status != model.LoanStatusActive && status != model.LoanStatusOverdue && status != model.LoanStatusReturned {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	limit, offset := pageParams(c)
	f := repository.LoanFilter{
		Status:     status,
		BorrowerID: c.QueryParam("borrower_id"),
		BranchID:   c.QueryParam("branch_id"),
		CopyID:     c.QueryParam("copy_id"),
		Limit:      limit,
		Offset:     offset,
	}

	actor := profileID(c)
	switch {
	case policy.Can(roleOf(c), policy.ActionReadAllLoans):
		// unscoped
	case roleOf(c) == model.RoleBranchOwner:
		f.VisibleToBorrower = actor
		f.VisibleToOwner = actor
	default:
		f.VisibleToBorrower = actor
	}

	loans, err := h.Loans.List(c.Request().Context(), f)
	if err != nil {
		return jsonStoreError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"loans": loans, "count": len(loans)})
}

// Get is GET /v1/loans/:id: visible to the borrower, the owning branch's
// owner and admins.
func (h *LoanHandler) Get(c echo.Context) error {
	det, err := h.Loans.GetDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return jsonStoreError(c, err)
	}
	if !policy.CanSeeLoan(roleOf(c), profileID(c), det.BorrowerID, det.BranchOwnerID) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, det)
}

// Checkout is POST /v1/loans, branch owner (own branch) or admin. The store
// serializes concurrent checkouts of the same copy; exactly one wins and the
// rest get a conflict.
func (h *LoanHandler) Checkout(c echo.Context) error {
	var req checkoutReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.CopyID == "" || req.BorrowerID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "copy_id/borrower_id required"})
	}
	due, err := time.ParseInLocation("2006-01-02", req.DueDate, time.UTC)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "due_date must be YYYY-MM-DD"})
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if due.Before(today) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "due_date must be today or later"})
	}

	role := roleOf(c)
	if !policy.Can(role, policy.ActionManageLoans) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	ctx := c.Request().Context()
	loan, err := h.Loans.Checkout(ctx, req.CopyID, req.BorrowerID, due, req.Notes, profileID(c), role == model.RoleAdmin)
	if err != nil {
		return jsonStoreError(c, err)
	}

	h.publishActivity(queue.LoanCheckedOut, loan.ID)

	return c.JSON(http.StatusCreated, loan)
}

// Return is PUT /v1/loans/:id/return, branch owner (own branch) or admin.
// Returning an already-returned loan is a conflict, not an idempotent
// success; the second caller should learn that their view is stale.
func (h *LoanHandler) Return(c echo.Context) error {
	var req returnReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	role := roleOf(c)
	if !policy.Can(role, policy.ActionManageLoans) {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	loan, err := h.Loans.Return(c.Request().Context(), c.Param("id"), req.Notes, profileID(c), role == model.RoleAdmin)
	if err != nil {
		return jsonStoreError(c, err)
	}

	h.publishActivity(queue.LoanReturned, loan.ID)

	return c.JSON(http.StatusOK, loan)
}

// publishActivity loads the loan detail and publishes a broker event off the
// request goroutine. Failures are logged and dropped; lending must not
// depend on broker health.
func (h *LoanHandler) publishActivity(kind, loanID string) {
	if h.Publish == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		det, err := h.Loans.GetDetail(ctx, loanID)
		if err != nil {
			log.Printf("loan-activity: load loan %s failed: %v", loanID, err)
			return
		}
		ev := queue.LoanEvent{
			Kind:         kind,
			LoanID:       det.ID,
			CopyID:       det.CopyID,
			BookTitle:    det.BookTitle,
			BranchID:     det.BranchID,
			BranchName:   det.BranchName,
			BorrowerID:   det.BorrowerID,
			BorrowerName: det.BorrowerName,
			DueDate:      det.DueDate.Format("2006-01-02"),
			OccurredAt:   time.Now().UTC().Format(time.RFC3339),
		}
		if err := h.Publish(ctx, ev); err != nil {
			log.Printf("loan-activity: publish %s for loan %s failed: %v", kind, loanID, err)
		}
	}()
}
