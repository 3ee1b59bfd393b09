package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/okulov/home-library/internal/model"
)

func TestCapabilityTable(t *testing.T) {
	cases := []struct {
		role   string
		action Action
		want   bool
	}{
		// borrowers may create books (implicit during add-copy) and nothing else
		{model.RoleBorrower, ActionCreateBook, true},
		{model.RoleBorrower, ActionManageCopies, false},
		{model.RoleBorrower, ActionManageLoans, false},
		{model.RoleBorrower, ActionCreateBranch, false},
		{model.RoleBorrower, ActionManageRoles, false},
		{model.RoleBorrower, ActionDeleteBook, false},

		// branch owners manage copies/loans and update branches (scope checked separately)
		{model.RoleBranchOwner, ActionCreateBook, true},
		{model.RoleBranchOwner, ActionManageCopies, true},
		{model.RoleBranchOwner, ActionManageLoans, true},
		{model.RoleBranchOwner, ActionUpdateBranch, true},
		{model.RoleBranchOwner, ActionCreateBranch, false},
		{model.RoleBranchOwner, ActionManageRoles, false},
		{model.RoleBranchOwner, ActionDeleteBook, false},

		// admins can do everything
		{model.RoleAdmin, ActionCreateBranch, true},
		{model.RoleAdmin, ActionManageRoles, true},
		{model.RoleAdmin, ActionReadAllLoans, true},
		{model.RoleAdmin, ActionDeleteBook, true},

		// unknown / anonymous roles get nothing
		{"", ActionCreateBook, false},
		{"superuser", ActionManageLoans, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Can(tc.role, tc.action), "role=%q action=%q", tc.role, tc.action)
	}
}

func TestCanOnBranch(t *testing.T) {
	// owner acting on their own branch
	assert.True(t, CanOnBranch(model.RoleBranchOwner, ActionManageLoans, "u1", "u1"))
	// owner acting on someone else's branch
	assert.False(t, CanOnBranch(model.RoleBranchOwner, ActionManageLoans, "u1", "u2"))
	// admin acting on any branch
	assert.True(t, CanOnBranch(model.RoleAdmin, ActionManageLoans, "admin", "u2"))
	// borrower never manages loans regardless of ownership
	assert.False(t, CanOnBranch(model.RoleBorrower, ActionManageLoans, "u1", "u1"))
	// empty actor never matches
	assert.False(t, CanOnBranch(model.RoleBranchOwner, ActionManageLoans, "", ""))
}

func TestCanSeeLoan(t *testing.T) {
	// borrower sees their own loan
	assert.True(t, CanSeeLoan(model.RoleBorrower, "u1", "u1", "owner"))
	// borrower cannot see another borrower's loan
	assert.False(t, CanSeeLoan(model.RoleBorrower, "u1", "u2", "owner"))
	// branch owner sees loans on their branch
	assert.True(t, CanSeeLoan(model.RoleBranchOwner, "owner", "u2", "owner"))
	// admin sees all
	assert.True(t, CanSeeLoan(model.RoleAdmin, "root", "u2", "owner"))
}
