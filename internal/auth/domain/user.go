package domain

// User represents an account in the authorization graph. The set of
// activities a user may perform is derived from its roles, never stored;
// Activities is only populated when explicitly requested.
type User struct {
	Username   string
	IsRoot     bool
	Roles      []string
	Activities []string
	// Token is only set on authentication responses.
	Token string
}

// UpdateUserInput carries a partial user update. Nil fields are untouched.
// A non-nil empty Roles slice removes every role from the user.
type UpdateUserInput struct {
	IsRoot   *bool
	Password *string
	Roles    *[]string
}
