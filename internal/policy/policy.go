// Package policy is the single source of truth for the role capability
// table. Handlers consult it before every mutating or scoped-read operation;
// the repositories re-verify branch ownership inside their SQL so a handler
// bug cannot widen access on its own. Both layers share the rules defined
// here instead of duplicating them ad hoc.
package policy

import "github.com/okulov/home-library/internal/model"

// Action names a gated operation. Branch-scoped actions (copies, loans,
// branch updates) additionally require ownership of the target branch for
// non-admin callers; use CanOnBranch for those.
type Action string

const (
	ActionCreateBook   Action = "book.create"
	ActionDeleteBook   Action = "book.delete"
	ActionManageCopies Action = "copy.manage"  // create/update/delete copy
	ActionManageLoans  Action = "loan.manage"  // checkout/return
	ActionCreateBranch Action = "branch.create"
	ActionUpdateBranch Action = "branch.update"
	ActionManageRoles  Action = "role.manage"
	ActionListUsers    Action = "user.list"
	ActionReadAllLoans Action = "loan.read_all"
)

// capabilities maps each role to the actions it may perform. The hierarchy
// is expressed by listing inherited actions explicitly so the table reads
// the same way it is specified.
var capabilities = map[string]map[Action]bool{
	model.RoleBorrower: {
		ActionCreateBook: true,
	},
	model.RoleBranchOwner: {
		ActionCreateBook:   true,
		ActionManageCopies: true, // own branch only, see CanOnBranch
		ActionManageLoans:  true, // own branch only
		ActionUpdateBranch: true, // own branch only
	},
	model.RoleAdmin: {
		ActionCreateBook:   true,
		ActionDeleteBook:   true,
		ActionManageCopies: true,
		ActionManageLoans:  true,
		ActionCreateBranch: true,
		ActionUpdateBranch: true,
		ActionManageRoles:  true,
		ActionListUsers:    true,
		ActionReadAllLoans: true,
	},
}

// Can reports whether role may perform action at all. For branch-scoped
// actions this is the necessary-but-not-sufficient half of the check.
func Can(role string, action Action) bool {
	return capabilities[role][action]
}

// CanOnBranch reports whether the actor may perform a branch-scoped action
// against a branch owned by ownerID. Admins act on any branch; branch
// owners only on their own.
func CanOnBranch(role string, action Action, actorID, ownerID string) bool {
	if !Can(role, action) {
		return false
	}
	if role == model.RoleAdmin {
		return true
	}
	return actorID != "" && actorID == ownerID
}

// CanSeeLoan reports whether the actor may read a specific loan: the
// borrower themselves, the owner of the copy's branch, or an admin.
func CanSeeLoan(role, actorID, borrowerID, branchOwnerID string) bool {
	if role == model.RoleAdmin {
		return true
	}
	if actorID == "" {
		return false
	}
	return actorID == borrowerID || actorID == branchOwnerID
}
