package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okulov/home-library/internal/model"
)

func TestMeReturnsOwnProfile(t *testing.T) {
	profiles := &profileStoreStub{
		getByID: func(ctx context.Context, id string) (*model.Profile, error) {
			assert.Equal(t, "p1", id)
			return &model.Profile{ID: id, Email: "reader@example.com", Name: "Reader", Role: model.RoleBorrower}, nil
		},
	}
	h := NewUserHandler(profiles)

	c, rec := newTestContext(http.MethodGet, "/v1/me", "", "p1", model.RoleBorrower)
	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var p model.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "reader@example.com", p.Email)
}

func TestUpdateMeNameOnly(t *testing.T) {
	profiles := &profileStoreStub{
		updateName: func(ctx context.Context, id, name string) (*model.Profile, error) {
			assert.Equal(t, "p1", id)
			assert.Equal(t, "New Name", name)
			return &model.Profile{ID: id, Name: name, Role: model.RoleBorrower}, nil
		},
	}
	h := NewUserHandler(profiles)

	c, rec := newTestContext(http.MethodPut, "/v1/me", `{"name":"  New Name  "}`, "p1", model.RoleBorrower)
	require.NoError(t, h.UpdateMe(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateMeEmptyNameRejected(t *testing.T) {
	h := NewUserHandler(&profileStoreStub{})

	c, rec := newTestContext(http.MethodPut, "/v1/me", `{"name":""}`, "p1", model.RoleBorrower)
	require.NoError(t, h.UpdateMe(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUserListAdminOnly(t *testing.T) {
	h := NewUserHandler(&profileStoreStub{})

	c, rec := newTestContext(http.MethodGet, "/v1/users", "", "owner-1", model.RoleBranchOwner)
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUserListRejectsUnknownRoleFilter(t *testing.T) {
	h := NewUserHandler(&profileStoreStub{})

	c, rec := newTestContext(http.MethodGet, "/v1/users?role=librarian", "", "admin-1", model.RoleAdmin)
	require.NoError(t, h.List(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateRole(t *testing.T) {
	var gotRole string
	profiles := &profileStoreStub{
		updateRole: func(ctx context.Context, id, role string) (*model.Profile, error) {
			gotRole = role
			return &model.Profile{ID: id, Role: role}, nil
		},
	}
	h := NewUserHandler(profiles)

	c, rec := newTestContext(http.MethodPut, "/v1/users/p2/role", `{"role":"branch_owner"}`, "admin-1", model.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("p2")

	require.NoError(t, h.UpdateRole(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.RoleBranchOwner, gotRole)
}

func TestUpdateRoleRejectsUnknownRole(t *testing.T) {
	h := NewUserHandler(&profileStoreStub{})

	c, rec := newTestContext(http.MethodPut, "/v1/users/p2/role", `{"role":"superuser"}`, "admin-1", model.RoleAdmin)
	c.SetParamNames("id")
	c.SetParamValues("p2")

	require.NoError(t, h.UpdateRole(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
