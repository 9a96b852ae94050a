package usecase

import (
	"context"
	"log/slog"

	"github.com/allisson/authd/internal/auth/domain"
	apperrors "github.com/allisson/authd/internal/errors"
)

// HasUser reports whether the user exists.
func (uc *authUseCase) HasUser(ctx context.Context, username string) (bool, error) {
	return uc.repo.UserExists(ctx, username)
}

// AssertUser fails with a not-found error when the user does not exist.
func (uc *authUseCase) AssertUser(ctx context.Context, username string) error {
	exists, err := uc.repo.UserExists(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.Wrapf(domain.ErrUserNotFound, "user %q", username)
	}
	return nil
}

// AddUser creates a user with a hashed password, root flag and role set.
// Every referenced role is validated before the first write, so a rejected
// mutation leaves no partial state.
func (uc *authUseCase) AddUser(ctx context.Context, username, password string, roles []string, isRoot bool) error {
	exists, err := uc.repo.UserExists(ctx, username)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.Wrapf(domain.ErrUserAlreadyExists, "user %q", username)
	}

	unknown, err := uc.unknownRoles(ctx, roles)
	if err != nil {
		return err
	}
	if len(unknown) > 0 {
		return domain.UnknownRolesError(unknown)
	}

	hash, err := uc.hasher.Hash([]byte(password))
	if err != nil {
		return apperrors.Wrap(err, "failed to hash password")
	}

	if err := uc.repo.AddUserName(ctx, username); err != nil {
		return err
	}
	if err := uc.repo.SetPasswordHash(ctx, username, hash); err != nil {
		return err
	}
	if err := uc.repo.SetRootFlag(ctx, username, isRoot); err != nil {
		return err
	}
	for _, role := range roles {
		if err := uc.repo.LinkUserRole(ctx, username, role); err != nil {
			return err
		}
	}

	uc.logger.Info("user added",
		slog.String("user", username),
		slog.Bool("is_root", isRoot),
		slog.Int("roles", len(roles)),
	)
	return nil
}

// GetUser returns the user with its role set, optionally resolving the
// derived activity list.
func (uc *authUseCase) GetUser(ctx context.Context, username string, includeActivities bool) (*domain.User, error) {
	if err := uc.AssertUser(ctx, username); err != nil {
		return nil, err
	}
	roles, err := uc.repo.UserRoles(ctx, username)
	if err != nil {
		return nil, err
	}
	isRoot, err := uc.repo.IsRoot(ctx, username)
	if err != nil {
		return nil, err
	}
	user := &domain.User{Username: username, IsRoot: isRoot, Roles: roles}
	if includeActivities {
		activities, err := uc.UserActivities(ctx, username)
		if err != nil {
			return nil, err
		}
		user.Activities = activities
	}
	return user, nil
}

// GetUsers returns all users in store-native iteration order.
func (uc *authUseCase) GetUsers(ctx context.Context, includeActivities bool) ([]*domain.User, error) {
	names, err := uc.repo.UserNames(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(names))
	for _, name := range names {
		user, err := uc.GetUser(ctx, name, includeActivities)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// RemoveUser deletes the user, removes it from every held role's member set
// and drops its record keys. With assertRemoval, the record keys are re-read
// and asserted gone; meant for test harnesses.
func (uc *authUseCase) RemoveUser(ctx context.Context, username string, assertRemoval bool) error {
	if err := uc.AssertUser(ctx, username); err != nil {
		return err
	}
	if err := uc.repo.RemoveUserName(ctx, username); err != nil {
		return err
	}

	roles, err := uc.repo.UserRoles(ctx, username)
	if err != nil {
		return err
	}
	for _, role := range roles {
		if err := uc.repo.UnlinkUserRole(ctx, username, role); err != nil {
			return err
		}
	}
	if err := uc.repo.DeleteUserKeys(ctx, username); err != nil {
		return err
	}

	if assertRemoval {
		exists, err := uc.repo.UserKeysExist(ctx, username)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.New("user record keys not fully removed")
		}
	}

	uc.logger.Info("user removed", slog.String("user", username))
	return nil
}

// UpdateUser applies the non-nil fields of the input. Role references are
// validated before the first write. When a new role set is given, roles no
// longer present are unlinked and all given roles are re-linked, not just the
// delta, to tolerate partial previous failures.
func (uc *authUseCase) UpdateUser(ctx context.Context, username string, input domain.UpdateUserInput) error {
	if err := uc.AssertUser(ctx, username); err != nil {
		return err
	}

	if input.Roles != nil {
		unknown, err := uc.unknownRoles(ctx, *input.Roles)
		if err != nil {
			return err
		}
		if len(unknown) > 0 {
			return domain.UnknownRolesError(unknown)
		}
	}

	if input.IsRoot != nil {
		if err := uc.repo.SetRootFlag(ctx, username, *input.IsRoot); err != nil {
			return err
		}
	}

	if input.Password != nil {
		hash, err := uc.hasher.Hash([]byte(*input.Password))
		if err != nil {
			return apperrors.Wrap(err, "failed to hash password")
		}
		if err := uc.repo.SetPasswordHash(ctx, username, hash); err != nil {
			return err
		}
	}

	if input.Roles != nil {
		oldRoles, err := uc.repo.UserRoles(ctx, username)
		if err != nil {
			return err
		}
		stale, _ := diff(oldRoles, *input.Roles)
		for _, role := range stale {
			if err := uc.repo.UnlinkUserRole(ctx, username, role); err != nil {
				return err
			}
		}
		for _, role := range *input.Roles {
			if err := uc.repo.LinkUserRole(ctx, username, role); err != nil {
				return err
			}
		}
	}

	return nil
}

// AddUserRole assigns the role to the user. Both entities must exist.
func (uc *authUseCase) AddUserRole(ctx context.Context, username, role string) error {
	if err := uc.AssertUser(ctx, username); err != nil {
		return err
	}
	if err := uc.AssertRole(ctx, role); err != nil {
		return err
	}
	return uc.repo.LinkUserRole(ctx, username, role)
}

// RemoveUserRole revokes the role from the user. Both entities must exist.
func (uc *authUseCase) RemoveUserRole(ctx context.Context, username, role string) error {
	if err := uc.AssertUser(ctx, username); err != nil {
		return err
	}
	if err := uc.AssertRole(ctx, role); err != nil {
		return err
	}
	return uc.repo.UnlinkUserRole(ctx, username, role)
}
