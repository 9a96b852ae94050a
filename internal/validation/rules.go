// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/allisson/authd/internal/errors"
)

var (
	// entityNameRegex constrains role and user names to characters that
	// survive being embedded in store keys and URL path segments.
	entityNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._\-]*$`)

	// activityLabelRegex additionally permits slash-separated segments,
	// since services namespace their labels (e.g. "resource/view").
	activityLabelRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._\-]*(/[a-zA-Z0-9][a-zA-Z0-9._\-]*)*$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// EntityName validates role and user names: a leading alphanumeric followed
// by alphanumerics, dots, underscores or dashes.
var EntityName = validation.NewStringRuleWithError(
	func(s string) bool {
		return entityNameRegex.MatchString(s)
	},
	validation.NewError(
		"validation_entity_name",
		"must start with a letter or digit and contain only letters, digits, dots, underscores or dashes",
	),
)

// ActivityLabel validates activity labels: one or more slash-separated
// segments, each shaped like an entity name.
var ActivityLabel = validation.NewStringRuleWithError(
	func(s string) bool {
		return activityLabelRegex.MatchString(s)
	},
	validation.NewError(
		"validation_activity_label",
		"must be slash-separated segments of letters, digits, dots, underscores or dashes, each starting with a letter or digit",
	),
)

// NoWhitespace validates that string doesn't contain leading/trailing whitespace
var NoWhitespace = validation.NewStringRuleWithError(
	func(s string) bool {
		return s == strings.TrimSpace(s)
	},
	validation.NewError("validation_no_whitespace", "must not contain leading or trailing whitespace"),
)

// NotBlank validates that a string is not empty after trimming whitespace
var NotBlank = validation.NewStringRuleWithError(
	func(s string) bool {
		return strings.TrimSpace(s) != ""
	},
	validation.NewError("validation_not_blank", "must not be blank"),
)
