// Package dto provides data transfer objects for the authorization HTTP layer.
package dto

// RoleResponse represents a role with its activity set and member users.
type RoleResponse struct {
	Name       string   `json:"name"`
	Activities []string `json:"activities"`
	Users      []string `json:"users"`
}

// UserResponse represents a user. The password hash never leaves the server;
// activities and token are only present where the endpoint includes them.
type UserResponse struct {
	Username   string   `json:"username"`
	IsRoot     bool     `json:"isRoot"`
	Roles      []string `json:"roles"`
	Activities []string `json:"activities,omitempty"`
	Token      string   `json:"token,omitempty"`
}

// AuthenticateResponse wraps the authenticated user with its fresh token.
type AuthenticateResponse struct {
	User UserResponse `json:"user"`
}

// AuthenticateErrorResponse is the 200-with-error body the authenticate
// endpoint answers on bad credentials, as login forms expect.
type AuthenticateErrorResponse struct {
	Error string `json:"error"`
}

// ActivitiesResponse carries a user's derived activity list.
type ActivitiesResponse struct {
	Activities []string `json:"activities"`
}
