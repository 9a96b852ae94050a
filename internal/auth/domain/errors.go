package domain

import (
	"fmt"
	"strings"

	"github.com/allisson/authd/internal/errors"
)

// Domain-specific errors for authorization graph operations.
var (
	// ErrRoleNotFound indicates the referenced role does not exist.
	ErrRoleNotFound = errors.Wrap(errors.ErrNotFound, "role not found")

	// ErrRoleAlreadyExists indicates a role with the same name already exists.
	ErrRoleAlreadyExists = errors.Wrap(errors.ErrConflict, "role already exists")

	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same username already exists.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")

	// ErrWrongPassword indicates the password did not match the stored hash.
	ErrWrongPassword = errors.Wrap(errors.ErrUnauthorized, "wrong password")

	// ErrInvalidToken indicates the token failed signature or expiry validation.
	ErrInvalidToken = errors.Wrap(errors.ErrUnauthorized, "invalid token")

	// ErrSelfDeletion indicates a user attempted to delete their own account.
	ErrSelfDeletion = errors.Wrap(errors.ErrSelfDeletion, "users cannot delete themselves")
)

// UnknownRolesError reports a mutation referencing roles that do not exist.
// It is raised before any write, so a failed mutation leaves no partial state.
func UnknownRolesError(roles []string) error {
	return errors.Wrap(errors.ErrConflict, fmt.Sprintf("unknown roles: %s", strings.Join(roles, ", ")))
}
