package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okulov/home-library/internal/model"
	"github.com/okulov/home-library/internal/repository"
)

func TestBranchCreateRequiresAdmin(t *testing.T) {
	h := NewBranchHandler(&branchStoreStub{}, &profileStoreStub{})

	body := `{"name":"Hall Shelf","owner_id":"p2"}`
	c, rec := newTestContext(http.MethodPost, "/v1/branches", body, "owner-1", model.RoleBranchOwner)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBranchCreateOwnerMustHoldOwnerRole(t *testing.T) {
	profiles := &profileStoreStub{
		getByID: func(ctx context.Context, id string) (*model.Profile, error) {
			return &model.Profile{ID: id, Role: model.RoleBorrower}, nil
		},
	}
	h := NewBranchHandler(&branchStoreStub{}, profiles)

	body := `{"name":"Hall Shelf","owner_id":"p2"}`
	c, rec := newTestContext(http.MethodPost, "/v1/branches", body, "admin-1", model.RoleAdmin)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBranchCreateUnknownOwner(t *testing.T) {
	profiles := &profileStoreStub{
		getByID: func(ctx context.Context, id string) (*model.Profile, error) {
			return nil, repository.ErrProfileNotFound
		},
	}
	h := NewBranchHandler(&branchStoreStub{}, profiles)

	body := `{"name":"Hall Shelf","owner_id":"nobody"}`
	c, rec := newTestContext(http.MethodPost, "/v1/branches", body, "admin-1", model.RoleAdmin)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBranchCreateHappyPath(t *testing.T) {
	profiles := &profileStoreStub{
		getByID: func(ctx context.Context, id string) (*model.Profile, error) {
			return &model.Profile{ID: id, Role: model.RoleBranchOwner}, nil
		},
	}
	branches := &branchStoreStub{
		create: func(ctx context.Context, name, ownerID string, address *string) (*model.Branch, error) {
			assert.Equal(t, "Hall Shelf", name)
			assert.Equal(t, "p2", ownerID)
			return &model.Branch{ID: "br1", Name: name, OwnerID: ownerID, Address: address}, nil
		},
	}
	h := NewBranchHandler(branches, profiles)

	body := `{"name":"Hall Shelf","owner_id":"p2","address":"2nd floor"}`
	c, rec := newTestContext(http.MethodPost, "/v1/branches", body, "admin-1", model.RoleAdmin)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestBranchUpdateForeignOwnerForbidden(t *testing.T) {
	branches := &branchStoreStub{
		getByID: func(ctx context.Context, id string) (*model.Branch, error) {
			return &model.Branch{ID: id, Name: "Shelf", OwnerID: "somebody-else"}, nil
		},
	}
	h := NewBranchHandler(branches, &profileStoreStub{})

	c, rec := newTestContext(http.MethodPut, "/v1/branches/br1", `{"name":"Renamed"}`, "owner-1", model.RoleBranchOwner)
	c.SetParamNames("id")
	c.SetParamValues("br1")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBranchUpdateByOwner(t *testing.T) {
	branches := &branchStoreStub{
		getByID: func(ctx context.Context, id string) (*model.Branch, error) {
			return &model.Branch{ID: id, Name: "Shelf", OwnerID: "owner-1"}, nil
		},
		update: func(ctx context.Context, id string, name, address *string) (*model.Branch, error) {
			require.NotNil(t, name)
			return &model.Branch{ID: id, Name: *name, OwnerID: "owner-1"}, nil
		},
	}
	h := NewBranchHandler(branches, &profileStoreStub{})

	c, rec := newTestContext(http.MethodPut, "/v1/branches/br1", `{"name":"Renamed"}`, "owner-1", model.RoleBranchOwner)
	c.SetParamNames("id")
	c.SetParamValues("br1")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBranchUpdateEmptyNameRejected(t *testing.T) {
	h := NewBranchHandler(&branchStoreStub{}, &profileStoreStub{})

	c, rec := newTestContext(http.MethodPut, "/v1/branches/br1", `{"name":"  "}`, "owner-1", model.RoleBranchOwner)
	c.SetParamNames("id")
	c.SetParamValues("br1")

	require.NoError(t, h.Update(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
