// Package dto provides data transfer objects for the authorization HTTP layer.
package dto

import (
	validation "github.com/jellydator/validation"

	appValidation "github.com/allisson/authd/internal/validation"
)

// activityLabels validates every element of an activity label list. Labels
// may carry slash-separated namespaces such as "resource/view".
func activityLabels(values []string) error {
	for _, value := range values {
		if err := validation.Validate(value,
			validation.Required.Error("activity is required"),
			appValidation.ActivityLabel,
		); err != nil {
			return err
		}
	}
	return nil
}

// roleNames validates every element of a role name list.
func roleNames(values []string) error {
	for _, value := range values {
		if err := validation.Validate(value,
			validation.Required.Error("role is required"),
			appValidation.EntityName,
		); err != nil {
			return err
		}
	}
	return nil
}

// AuthenticateRequest carries the credentials for token issuance.
type AuthenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate validates the AuthenticateRequest.
func (r *AuthenticateRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Username,
			validation.Required.Error("username is required"),
			appValidation.NotBlank,
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// RoleActivitiesRequest carries an activity list for role creation, role
// update and activity-set mutations.
type RoleActivitiesRequest struct {
	Activities []string `json:"activities"`
}

// Validate validates the RoleActivitiesRequest.
func (r *RoleActivitiesRequest) Validate() error {
	if err := activityLabels(r.Activities); err != nil {
		return appValidation.WrapValidationError(err)
	}
	return nil
}

// RegisterActivitiesRequest carries the labels a service wants indexed.
type RegisterActivitiesRequest struct {
	Activities []string `json:"activities"`
}

// Validate validates the RegisterActivitiesRequest.
func (r *RegisterActivitiesRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Activities,
			validation.Required.Error("activities are required"),
		),
	)
	if err != nil {
		return appValidation.WrapValidationError(err)
	}
	if err := activityLabels(r.Activities); err != nil {
		return appValidation.WrapValidationError(err)
	}
	return nil
}

// AddUserRequest carries the initial state of a new user.
type AddUserRequest struct {
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
	IsRoot   bool     `json:"isRoot"`
}

// Validate validates the AddUserRequest.
func (r *AddUserRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
		),
	)
	if err != nil {
		return appValidation.WrapValidationError(err)
	}
	if err := roleNames(r.Roles); err != nil {
		return appValidation.WrapValidationError(err)
	}
	return nil
}

// UpdateUserRequest carries a partial user update; nil fields are untouched.
// An explicitly empty role list removes every role.
type UpdateUserRequest struct {
	Password *string   `json:"password"`
	Roles    *[]string `json:"roles"`
	IsRoot   *bool     `json:"isRoot"`
}

// Validate validates the UpdateUserRequest.
func (r *UpdateUserRequest) Validate() error {
	if r.Password != nil && *r.Password == "" {
		return appValidation.WrapValidationError(
			validation.NewError("validation_password_blank", "password: cannot be blank"),
		)
	}
	if r.Roles != nil {
		if err := roleNames(*r.Roles); err != nil {
			return appValidation.WrapValidationError(err)
		}
	}
	return nil
}

// UserRolesRequest carries a full replacement role list.
type UserRolesRequest struct {
	Roles []string `json:"roles"`
}

// Validate validates the UserRolesRequest.
func (r *UserRolesRequest) Validate() error {
	if err := roleNames(r.Roles); err != nil {
		return appValidation.WrapValidationError(err)
	}
	return nil
}

// AddUserRoleRequest carries a single role to assign.
type AddUserRoleRequest struct {
	Role string `json:"role"`
}

// Validate validates the AddUserRoleRequest.
func (r *AddUserRoleRequest) Validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Role,
			validation.Required.Error("role is required"),
			appValidation.EntityName,
		),
	)
	return appValidation.WrapValidationError(err)
}
