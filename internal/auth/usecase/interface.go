// Package usecase implements the authorization core: role and user
// management on the persistent graph, consistency verification, and the
// authentication and token issuance primitives.
package usecase

import (
	"context"

	"github.com/allisson/authd/internal/auth/domain"
)

// AuthUseCase is the sole authority for role/user CRUD, consistency,
// authentication and token issuance.
type AuthUseCase interface {
	// Role management.
	HasRole(ctx context.Context, role string) (bool, error)
	AssertRole(ctx context.Context, role string) error
	AddRole(ctx context.Context, role string, activities []string) error
	GetRole(ctx context.Context, role string) (*domain.Role, error)
	GetRoles(ctx context.Context) ([]*domain.Role, error)
	RemoveRole(ctx context.Context, role string, assertRemoval bool) error
	UpdateRole(ctx context.Context, role string, activities []string) error
	AddRoleActivities(ctx context.Context, role string, activities ...string) error

	// User management.
	HasUser(ctx context.Context, username string) (bool, error)
	AssertUser(ctx context.Context, username string) error
	AddUser(ctx context.Context, username, password string, roles []string, isRoot bool) error
	GetUser(ctx context.Context, username string, includeActivities bool) (*domain.User, error)
	GetUsers(ctx context.Context, includeActivities bool) ([]*domain.User, error)
	RemoveUser(ctx context.Context, username string, assertRemoval bool) error
	UpdateUser(ctx context.Context, username string, input domain.UpdateUserInput) error
	AddUserRole(ctx context.Context, username, role string) error
	RemoveUserRole(ctx context.Context, username, role string) error

	// Activities and authorization.
	ActivityIndexMap(labels ...string) map[string]int
	ActivityIndex(label string) (int, bool)
	RegisterActivities(ctx context.Context, labels []string) error
	UserActivities(ctx context.Context, username string) ([]string, error)
	IssueToken(ctx context.Context, username string) (string, error)
	Authenticate(ctx context.Context, username, password string) (*domain.User, error)
	Authorize(ctx context.Context, token string, activityIndex int) (bool, error)

	// Maintenance.
	AssertConsistency(ctx context.Context) error
	Reset(ctx context.Context) error
}

// GraphRepository defines the persistence operations the core needs from the
// authorization graph store.
type GraphRepository interface {
	RoleExists(ctx context.Context, role string) (bool, error)
	AddRoleName(ctx context.Context, role string) error
	RemoveRoleName(ctx context.Context, role string) error
	RoleNames(ctx context.Context) ([]string, error)
	RoleActivities(ctx context.Context, role string) ([]string, error)
	AddRoleActivities(ctx context.Context, role string, activities ...string) error
	RemoveRoleActivities(ctx context.Context, role string, activities ...string) error
	DeleteRoleActivities(ctx context.Context, role string) error
	RoleUsers(ctx context.Context, role string) ([]string, error)
	DeleteRoleUsers(ctx context.Context, role string) error

	UserExists(ctx context.Context, username string) (bool, error)
	AddUserName(ctx context.Context, username string) error
	RemoveUserName(ctx context.Context, username string) error
	UserNames(ctx context.Context) ([]string, error)
	SetPasswordHash(ctx context.Context, username, hash string) error
	PasswordHash(ctx context.Context, username string) (string, error)
	SetRootFlag(ctx context.Context, username string, isRoot bool) error
	IsRoot(ctx context.Context, username string) (bool, error)
	UserRoles(ctx context.Context, username string) ([]string, error)
	LinkUserRole(ctx context.Context, username, role string) error
	UnlinkUserRole(ctx context.Context, username, role string) error
	DeleteUserKeys(ctx context.Context, username string) error
	UserKeysExist(ctx context.Context, username string) (bool, error)

	StoredActivityIndexMap(ctx context.Context) (map[string]string, error)
}
