// Package repository implements the authorization graph persistence on the
// hash-collection store. Roles and users live in existence hashes; their
// cross-references live in per-entity hashes whose fields are the linked
// member names. Per-field writes are atomic; multi-key updates are issued
// sequentially by the use case layer.
package repository

import (
	"context"

	apperrors "github.com/allisson/authd/internal/errors"
	"github.com/allisson/authd/internal/store"
)

const (
	memberMarker = "1"
	hashField    = "hash"
	isRootField  = "isRoot"
)

// RedisGraphRepository persists the role/user graph in a HashStore.
type RedisGraphRepository struct {
	store store.HashStore
}

// NewRedisGraphRepository creates a graph repository on the given store.
func NewRedisGraphRepository(st store.HashStore) *RedisGraphRepository {
	return &RedisGraphRepository{store: st}
}

// RoleExists reports whether the role is present in the roles existence hash.
func (r *RedisGraphRepository) RoleExists(ctx context.Context, role string) (bool, error) {
	return r.store.HExists(ctx, store.RolesKey, role)
}

// AddRoleName records the role in the roles existence hash.
func (r *RedisGraphRepository) AddRoleName(ctx context.Context, role string) error {
	return r.store.HSet(ctx, store.RolesKey, role, memberMarker)
}

// RemoveRoleName deletes the role from the roles existence hash.
func (r *RedisGraphRepository) RemoveRoleName(ctx context.Context, role string) error {
	return r.store.HDel(ctx, store.RolesKey, role)
}

// RoleNames lists all role names in store-native order.
func (r *RedisGraphRepository) RoleNames(ctx context.Context) ([]string, error) {
	return r.store.HKeys(ctx, store.RolesKey)
}

// RoleActivities lists the activity labels of the role.
func (r *RedisGraphRepository) RoleActivities(ctx context.Context, role string) ([]string, error) {
	return r.store.HKeys(ctx, store.RoleActivitiesKey(role))
}

// AddRoleActivities adds the given activity labels to the role's activity set.
func (r *RedisGraphRepository) AddRoleActivities(ctx context.Context, role string, activities ...string) error {
	if len(activities) == 0 {
		return nil
	}
	fieldvals := make([]string, 0, len(activities)*2)
	for _, activity := range activities {
		fieldvals = append(fieldvals, activity, memberMarker)
	}
	return r.store.HSet(ctx, store.RoleActivitiesKey(role), fieldvals...)
}

// RemoveRoleActivities removes the given activity labels from the role's
// activity set.
func (r *RedisGraphRepository) RemoveRoleActivities(ctx context.Context, role string, activities ...string) error {
	return r.store.HDel(ctx, store.RoleActivitiesKey(role), activities...)
}

// DeleteRoleActivities drops the role's entire activity set.
func (r *RedisGraphRepository) DeleteRoleActivities(ctx context.Context, role string) error {
	return r.store.Del(ctx, store.RoleActivitiesKey(role))
}

// RoleUsers lists the usernames currently holding the role.
func (r *RedisGraphRepository) RoleUsers(ctx context.Context, role string) ([]string, error) {
	return r.store.HKeys(ctx, store.RoleUsersKey(role))
}

// DeleteRoleUsers drops the role's entire member-user set.
func (r *RedisGraphRepository) DeleteRoleUsers(ctx context.Context, role string) error {
	return r.store.Del(ctx, store.RoleUsersKey(role))
}

// UserExists reports whether the user is present in the users existence hash.
func (r *RedisGraphRepository) UserExists(ctx context.Context, username string) (bool, error) {
	return r.store.HExists(ctx, store.UsersKey, username)
}

// AddUserName records the user in the users existence hash.
func (r *RedisGraphRepository) AddUserName(ctx context.Context, username string) error {
	return r.store.HSet(ctx, store.UsersKey, username, memberMarker)
}

// RemoveUserName deletes the user from the users existence hash.
func (r *RedisGraphRepository) RemoveUserName(ctx context.Context, username string) error {
	return r.store.HDel(ctx, store.UsersKey, username)
}

// UserNames lists all usernames in store-native order.
func (r *RedisGraphRepository) UserNames(ctx context.Context) ([]string, error) {
	return r.store.HKeys(ctx, store.UsersKey)
}

// SetPasswordHash stores the user's password hash.
func (r *RedisGraphRepository) SetPasswordHash(ctx context.Context, username, hash string) error {
	return r.store.HSet(ctx, store.UserKey(username), hashField, hash)
}

// PasswordHash reads the user's password hash. Returns ErrNotFound when the
// user record is missing the hash.
func (r *RedisGraphRepository) PasswordHash(ctx context.Context, username string) (string, error) {
	return r.store.HGet(ctx, store.UserKey(username), hashField)
}

// SetRootFlag stores the user's root flag.
func (r *RedisGraphRepository) SetRootFlag(ctx context.Context, username string, isRoot bool) error {
	value := "0"
	if isRoot {
		value = "1"
	}
	return r.store.HSet(ctx, store.UserKey(username), isRootField, value)
}

// IsRoot reads the user's root flag. A missing flag reads as false.
func (r *RedisGraphRepository) IsRoot(ctx context.Context, username string) (bool, error) {
	value, err := r.store.HGet(ctx, store.UserKey(username), isRootField)
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return value == "1", nil
}

// UserRoles lists the role names assigned to the user.
func (r *RedisGraphRepository) UserRoles(ctx context.Context, username string) ([]string, error) {
	return r.store.HKeys(ctx, store.UserRolesKey(username))
}

// LinkUserRole establishes both sides of the role-user association. The two
// writes are sequential, not transactional; a crash in between leaves residue
// the consistency checker reports.
func (r *RedisGraphRepository) LinkUserRole(ctx context.Context, username, role string) error {
	if err := r.store.HSet(ctx, store.RoleUsersKey(role), username, memberMarker); err != nil {
		return err
	}
	return r.store.HSet(ctx, store.UserRolesKey(username), role, memberMarker)
}

// UnlinkUserRole removes both sides of the role-user association.
func (r *RedisGraphRepository) UnlinkUserRole(ctx context.Context, username, role string) error {
	if err := r.store.HDel(ctx, store.UserRolesKey(username), role); err != nil {
		return err
	}
	return r.store.HDel(ctx, store.RoleUsersKey(role), username)
}

// DeleteUserKeys drops the user's own record and role-association hash.
func (r *RedisGraphRepository) DeleteUserKeys(ctx context.Context, username string) error {
	return r.store.Del(ctx, store.UserKey(username), store.UserRolesKey(username))
}

// UserKeysExist reports whether any of the user's record keys still exist.
// Used by the strict removal assertion in tests.
func (r *RedisGraphRepository) UserKeysExist(ctx context.Context, username string) (bool, error) {
	for _, key := range []string{store.UserKey(username), store.UserRolesKey(username)} {
		exists, err := r.store.Exists(ctx, key)
		if err != nil {
			return false, err
		}
		if exists {
			return true, nil
		}
	}
	return false, nil
}

// StoredActivityIndexMap reads the persisted activity-index map, coercing no
// values; the consistency checker compares it against the in-memory map.
func (r *RedisGraphRepository) StoredActivityIndexMap(ctx context.Context) (map[string]string, error) {
	return r.store.HGetAll(ctx, store.ActivityIndexKey)
}
