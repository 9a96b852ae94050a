package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/authd/internal/errors"
)

func TestAuthenticateRequestValidate(t *testing.T) {
	req := AuthenticateRequest{Username: "alice", Password: "secret"}
	assert.NoError(t, req.Validate())

	req = AuthenticateRequest{Password: "secret"}
	err := req.Validate()
	assert.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
}

func TestRegisterActivitiesRequestValidate(t *testing.T) {
	t.Run("accepts namespaced labels", func(t *testing.T) {
		req := RegisterActivitiesRequest{Activities: []string{"resource/view", "duxis/view_users", "manage_users"}}
		assert.NoError(t, req.Validate())
	})

	t.Run("rejects malformed labels", func(t *testing.T) {
		for _, label := range []string{"/view", "resource/", "with space"} {
			req := RegisterActivitiesRequest{Activities: []string{label}}
			err := req.Validate()
			assert.Error(t, err, "label %q", label)
			assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput), "label %q", label)
		}
	})

	t.Run("rejects empty list", func(t *testing.T) {
		req := RegisterActivitiesRequest{}
		assert.Error(t, req.Validate())
	})
}

func TestRoleActivitiesRequestValidate(t *testing.T) {
	req := RoleActivitiesRequest{Activities: []string{"resource/view", "view_users"}}
	assert.NoError(t, req.Validate())

	req = RoleActivitiesRequest{Activities: []string{"resource//view"}}
	err := req.Validate()
	assert.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
}

func TestAddUserRequestValidate(t *testing.T) {
	req := AddUserRequest{Password: "secret", Roles: []string{"admins"}}
	assert.NoError(t, req.Validate())

	req = AddUserRequest{Roles: []string{"admins"}}
	assert.Error(t, req.Validate())

	// Role names stay single-segment, only activity labels carry namespaces.
	req = AddUserRequest{Password: "secret", Roles: []string{"team/admins"}}
	assert.Error(t, req.Validate())
}

func TestUpdateUserRequestValidate(t *testing.T) {
	password := "new-secret"
	roles := []string{"viewers"}
	req := UpdateUserRequest{Password: &password, Roles: &roles}
	assert.NoError(t, req.Validate())

	blank := ""
	req = UpdateUserRequest{Password: &blank}
	assert.Error(t, req.Validate())

	badRoles := []string{"team/viewers"}
	req = UpdateUserRequest{Roles: &badRoles}
	assert.Error(t, req.Validate())
}

func TestUserRolesRequestValidate(t *testing.T) {
	req := UserRolesRequest{Roles: []string{"admins", "viewers"}}
	assert.NoError(t, req.Validate())

	req = UserRolesRequest{Roles: []string{"team/admins"}}
	assert.Error(t, req.Validate())
}
