// Package dto provides data transfer objects for the authorization HTTP layer.
package dto

import (
	"github.com/allisson/authd/internal/auth/domain"
)

// MapRoleToResponse converts a domain Role to its API representation.
func MapRoleToResponse(role *domain.Role) RoleResponse {
	return RoleResponse{
		Name:       role.Name,
		Activities: emptyIfNil(role.Activities),
		Users:      emptyIfNil(role.Users),
	}
}

// MapRolesToResponse converts a role list to its API representation.
func MapRolesToResponse(roles []*domain.Role) []RoleResponse {
	responses := make([]RoleResponse, 0, len(roles))
	for _, role := range roles {
		responses = append(responses, MapRoleToResponse(role))
	}
	return responses
}

// MapUserToResponse converts a domain User to its API representation.
func MapUserToResponse(user *domain.User) UserResponse {
	return UserResponse{
		Username:   user.Username,
		IsRoot:     user.IsRoot,
		Roles:      emptyIfNil(user.Roles),
		Activities: user.Activities,
		Token:      user.Token,
	}
}

// MapUsersToResponse converts a user list to its API representation.
func MapUsersToResponse(users []*domain.User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, MapUserToResponse(user))
	}
	return responses
}

// emptyIfNil keeps list fields serializing as [] instead of null.
func emptyIfNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
