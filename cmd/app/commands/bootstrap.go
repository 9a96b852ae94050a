package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/allisson/authd/internal/activity"
	"github.com/allisson/authd/internal/auth/usecase"
	"github.com/allisson/authd/internal/config"
)

// RunBootstrap applies the startup fixtures: optional activity index reset,
// add-or-update of the configured roles, the root account, dev accounts when
// dev mode is on, and a final consistency check over the whole graph.
func RunBootstrap(
	ctx context.Context,
	cfg *config.Config,
	core usecase.AuthUseCase,
	index *activity.Index,
	logger *slog.Logger,
) error {
	if cfg.ResetActivityMapOnStart {
		logger.Warn("resetting activity index, previously issued tokens stop matching their activities")
		if err := index.Reset(ctx); err != nil {
			return fmt.Errorf("failed to reset activity index: %w", err)
		}
	}

	if err := bootstrapRoles(ctx, cfg, core, logger); err != nil {
		return err
	}

	if err := bootstrapRootUser(ctx, cfg, core, logger); err != nil {
		return err
	}

	if cfg.DevMode {
		if err := bootstrapDevUsers(ctx, cfg, core, logger); err != nil {
			return err
		}
	}

	if err := core.AssertConsistency(ctx); err != nil {
		return fmt.Errorf("startup consistency check failed: %w", err)
	}

	return nil
}

// bootstrapRoles creates or updates the configured default roles. Updates
// replace the role's activity list, so the config stays authoritative for
// these roles across restarts.
func bootstrapRoles(ctx context.Context, cfg *config.Config, core usecase.AuthUseCase, logger *slog.Logger) error {
	if cfg.BootstrapRolesJSON == "" {
		return nil
	}

	roles := map[string][]string{}
	if err := json.Unmarshal([]byte(cfg.BootstrapRolesJSON), &roles); err != nil {
		return fmt.Errorf("failed to parse BOOTSTRAP_ROLES_JSON: %w", err)
	}

	// Stable order keeps activity index assignment deterministic on a fresh store.
	names := make([]string, 0, len(roles))
	for name := range roles {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		exists, err := core.HasRole(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to check role %q: %w", name, err)
		}

		if exists {
			if err := core.UpdateRole(ctx, name, roles[name]); err != nil {
				return fmt.Errorf("failed to update role %q: %w", name, err)
			}
			continue
		}

		if err := core.AddRole(ctx, name, roles[name]); err != nil {
			return fmt.Errorf("failed to add role %q: %w", name, err)
		}
		logger.Info("created bootstrap role", slog.String("role", name))
	}

	return nil
}

// bootstrapRootUser creates the root account on first start. The configured
// password is only used for creation; later password changes stick.
func bootstrapRootUser(ctx context.Context, cfg *config.Config, core usecase.AuthUseCase, logger *slog.Logger) error {
	exists, err := core.HasUser(ctx, "root")
	if err != nil {
		return fmt.Errorf("failed to check root account: %w", err)
	}
	if exists {
		return nil
	}

	if cfg.RootPassword == "" {
		return fmt.Errorf("ROOT_PASSWORD must be set to create the root account")
	}

	if err := core.AddUser(ctx, "root", cfg.RootPassword, nil, true); err != nil {
		return fmt.Errorf("failed to create root account: %w", err)
	}
	logger.Info("created root account")

	return nil
}

// bootstrapDevUsers creates the configured dev accounts. Each dev account
// logs in with its username as password, so this only runs in dev mode.
func bootstrapDevUsers(ctx context.Context, cfg *config.Config, core usecase.AuthUseCase, logger *slog.Logger) error {
	if cfg.DevUsersJSON == "" {
		return nil
	}

	users := map[string][]string{}
	if err := json.Unmarshal([]byte(cfg.DevUsersJSON), &users); err != nil {
		return fmt.Errorf("failed to parse DEV_USERS_JSON: %w", err)
	}

	names := make([]string, 0, len(users))
	for name := range users {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		exists, err := core.HasUser(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to check dev account %q: %w", name, err)
		}
		if exists {
			continue
		}

		if err := core.AddUser(ctx, name, name, users[name], false); err != nil {
			return fmt.Errorf("failed to create dev account %q: %w", name, err)
		}
		logger.Info("created dev account", slog.String("username", name))
	}

	return nil
}
