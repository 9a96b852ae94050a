package usecase

import (
	"context"
	"fmt"
	"strconv"

	apperrors "github.com/allisson/authd/internal/errors"
)

// AssertConsistency verifies the stored graph against its invariants: the
// in-memory activity index matches the persisted one, every role activity is
// indexed, every role-user association is present on both sides, and every
// user carries a password hash. The first violation found is returned as an
// error; a nil return means the graph is sound.
func (uc *authUseCase) AssertConsistency(ctx context.Context) error {
	if err := uc.assertIndexConsistency(ctx); err != nil {
		return err
	}
	if err := uc.assertRoleConsistency(ctx); err != nil {
		return err
	}
	return uc.assertUserConsistency(ctx)
}

// assertIndexConsistency compares the in-memory activity index map with the
// persisted one, entry by entry and in both directions.
func (uc *authUseCase) assertIndexConsistency(ctx context.Context) error {
	stored, err := uc.repo.StoredActivityIndexMap(ctx)
	if err != nil {
		return err
	}
	cached := uc.index.Snapshot()

	if len(stored) != len(cached) {
		return apperrors.New("activity index map size differs between memory and store")
	}
	for label, raw := range stored {
		index, err := strconv.Atoi(raw)
		if err != nil {
			return apperrors.Wrapf(err, "corrupt stored index for activity %q", label)
		}
		cachedIndex, ok := cached[label]
		if !ok {
			return apperrors.New(fmt.Sprintf("stored activity %q missing from in-memory index", label))
		}
		if cachedIndex != index {
			return apperrors.New(fmt.Sprintf("activity %q index differs between memory and store", label))
		}
	}
	return nil
}

// assertRoleConsistency checks that every role activity is indexed and that
// every member user both exists and holds the role on its own side.
func (uc *authUseCase) assertRoleConsistency(ctx context.Context) error {
	roles, err := uc.repo.RoleNames(ctx)
	if err != nil {
		return err
	}
	for _, role := range roles {
		activities, err := uc.repo.RoleActivities(ctx, role)
		if err != nil {
			return err
		}
		for _, activity := range activities {
			if _, ok := uc.index.IndexOf(activity); !ok {
				return apperrors.New(fmt.Sprintf("role %q activity %q is not indexed", role, activity))
			}
		}

		users, err := uc.repo.RoleUsers(ctx, role)
		if err != nil {
			return err
		}
		for _, username := range users {
			exists, err := uc.repo.UserExists(ctx, username)
			if err != nil {
				return err
			}
			if !exists {
				return apperrors.New(fmt.Sprintf("role %q references unknown user %q", role, username))
			}
			userRoles, err := uc.repo.UserRoles(ctx, username)
			if err != nil {
				return err
			}
			if !contains(userRoles, role) {
				return apperrors.New(fmt.Sprintf("user %q missing back-reference to role %q", username, role))
			}
		}
	}
	return nil
}

// assertUserConsistency checks that every user has a password hash and that
// every held role both exists and lists the user on its own side.
func (uc *authUseCase) assertUserConsistency(ctx context.Context) error {
	users, err := uc.repo.UserNames(ctx)
	if err != nil {
		return err
	}
	for _, username := range users {
		hash, err := uc.repo.PasswordHash(ctx, username)
		if err != nil {
			return apperrors.Wrapf(err, "user %q has no password hash", username)
		}
		if hash == "" {
			return apperrors.New(fmt.Sprintf("user %q has an empty password hash", username))
		}

		roles, err := uc.repo.UserRoles(ctx, username)
		if err != nil {
			return err
		}
		for _, role := range roles {
			exists, err := uc.repo.RoleExists(ctx, role)
			if err != nil {
				return err
			}
			if !exists {
				return apperrors.New(fmt.Sprintf("user %q references unknown role %q", username, role))
			}
			roleUsers, err := uc.repo.RoleUsers(ctx, role)
			if err != nil {
				return err
			}
			if !contains(roleUsers, username) {
				return apperrors.New(fmt.Sprintf("role %q missing back-reference to user %q", role, username))
			}
		}
	}
	return nil
}

func contains(list []string, el string) bool {
	for _, candidate := range list {
		if candidate == el {
			return true
		}
	}
	return false
}
