package store

import "fmt"

// Key layout for the authorization graph. Every key is a deterministic string
// composition so that independent processes agree on the schema.
const (
	// RolesKey is the existence hash for roles; fields are role names.
	RolesKey = "roles"
	// UsersKey is the existence hash for users; fields are usernames.
	UsersKey = "users"
	// ActivityIndexKey is the hash mapping activity labels to their indices.
	ActivityIndexKey = "activity_index"
	// NextIndexKey is the scalar holding the next free activity index.
	NextIndexKey = "next_activity_index"
)

// RoleActivitiesKey returns the hash key holding the activity set of a role.
func RoleActivitiesKey(role string) string {
	return fmt.Sprintf("role:%s:activities", role)
}

// RoleUsersKey returns the hash key holding the member-user set of a role.
func RoleUsersKey(role string) string {
	return fmt.Sprintf("role:%s:users", role)
}

// UserKey returns the hash key holding a user's own record (password hash
// and isRoot flag).
func UserKey(username string) string {
	return fmt.Sprintf("user:%s", username)
}

// UserRolesKey returns the hash key holding the role set of a user.
func UserRolesKey(username string) string {
	return fmt.Sprintf("user:%s:roles", username)
}
