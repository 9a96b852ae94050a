package usecase

import (
	"context"
	"log/slog"

	"github.com/allisson/authd/internal/auth/domain"
	apperrors "github.com/allisson/authd/internal/errors"
)

// HasRole reports whether the role exists.
func (uc *authUseCase) HasRole(ctx context.Context, role string) (bool, error) {
	return uc.repo.RoleExists(ctx, role)
}

// AssertRole fails with a not-found error when the role does not exist.
func (uc *authUseCase) AssertRole(ctx context.Context, role string) error {
	exists, err := uc.repo.RoleExists(ctx, role)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.Wrapf(domain.ErrRoleNotFound, "role %q", role)
	}
	return nil
}

// unknownRoles returns the subset of the given roles that do not exist.
func (uc *authUseCase) unknownRoles(ctx context.Context, roles []string) ([]string, error) {
	var unknown []string
	for _, role := range roles {
		exists, err := uc.repo.RoleExists(ctx, role)
		if err != nil {
			return nil, err
		}
		if !exists {
			unknown = append(unknown, role)
		}
	}
	return unknown, nil
}

// AddRole creates a role with the given activity set and registers those
// activities in the activity index.
func (uc *authUseCase) AddRole(ctx context.Context, role string, activities []string) error {
	exists, err := uc.repo.RoleExists(ctx, role)
	if err != nil {
		return err
	}
	if exists {
		return apperrors.Wrapf(domain.ErrRoleAlreadyExists, "role %q", role)
	}

	if err := uc.repo.AddRoleName(ctx, role); err != nil {
		return err
	}
	if len(activities) > 0 {
		if err := uc.repo.AddRoleActivities(ctx, role, activities...); err != nil {
			return err
		}
		if err := uc.index.Register(ctx, activities); err != nil {
			return err
		}
	}

	uc.logger.Info("role added", slog.String("role", role), slog.Int("activities", len(activities)))
	return nil
}

// GetRole returns the role with its activity set and member users.
func (uc *authUseCase) GetRole(ctx context.Context, role string) (*domain.Role, error) {
	if err := uc.AssertRole(ctx, role); err != nil {
		return nil, err
	}
	activities, err := uc.repo.RoleActivities(ctx, role)
	if err != nil {
		return nil, err
	}
	users, err := uc.repo.RoleUsers(ctx, role)
	if err != nil {
		return nil, err
	}
	return &domain.Role{Name: role, Activities: activities, Users: users}, nil
}

// GetRoles returns all roles in store-native iteration order.
func (uc *authUseCase) GetRoles(ctx context.Context) ([]*domain.Role, error) {
	names, err := uc.repo.RoleNames(ctx)
	if err != nil {
		return nil, err
	}
	roles := make([]*domain.Role, 0, len(names))
	for _, name := range names {
		role, err := uc.GetRole(ctx, name)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}

// RemoveRole deletes the role, removes it from every member user's role set
// and drops its activity and member sets. With assertRemoval, both dependent
// keys are re-read and asserted empty; meant for test harnesses.
func (uc *authUseCase) RemoveRole(ctx context.Context, role string, assertRemoval bool) error {
	if err := uc.AssertRole(ctx, role); err != nil {
		return err
	}
	if err := uc.repo.RemoveRoleName(ctx, role); err != nil {
		return err
	}
	if err := uc.repo.DeleteRoleActivities(ctx, role); err != nil {
		return err
	}

	users, err := uc.repo.RoleUsers(ctx, role)
	if err != nil {
		return err
	}
	for _, username := range users {
		if err := uc.repo.UnlinkUserRole(ctx, username, role); err != nil {
			return err
		}
	}
	if err := uc.repo.DeleteRoleUsers(ctx, role); err != nil {
		return err
	}

	if assertRemoval {
		activities, err := uc.repo.RoleActivities(ctx, role)
		if err != nil {
			return err
		}
		if len(activities) > 0 {
			return apperrors.New("role activity set not fully removed")
		}
		users, err := uc.repo.RoleUsers(ctx, role)
		if err != nil {
			return err
		}
		if len(users) > 0 {
			return apperrors.New("role member set not fully removed")
		}
	}

	uc.logger.Info("role removed", slog.String("role", role))
	return nil
}

// UpdateRole replaces the role's activity set with the given one. Activities
// no longer present are removed; all given activities are re-added, not just
// the delta, to tolerate partial previous failures. Newly introduced
// activities are registered in the activity index.
func (uc *authUseCase) UpdateRole(ctx context.Context, role string, activities []string) error {
	if err := uc.AssertRole(ctx, role); err != nil {
		return err
	}

	oldActivities, err := uc.repo.RoleActivities(ctx, role)
	if err != nil {
		return err
	}
	stale, _ := diff(oldActivities, activities)
	if len(stale) > 0 {
		if err := uc.repo.RemoveRoleActivities(ctx, role, stale...); err != nil {
			return err
		}
	}
	if len(activities) > 0 {
		if err := uc.repo.AddRoleActivities(ctx, role, activities...); err != nil {
			return err
		}
		if err := uc.index.Register(ctx, activities); err != nil {
			return err
		}
	}
	return nil
}

// AddRoleActivities adds the given activities to the role without touching
// the existing ones. A no-op when the list is empty.
func (uc *authUseCase) AddRoleActivities(ctx context.Context, role string, activities ...string) error {
	if len(activities) == 0 {
		return nil
	}
	if err := uc.AssertRole(ctx, role); err != nil {
		return err
	}
	if err := uc.repo.AddRoleActivities(ctx, role, activities...); err != nil {
		return err
	}
	return uc.index.Register(ctx, activities)
}
