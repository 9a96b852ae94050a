package commands

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/authd/internal/activity"
	"github.com/allisson/authd/internal/auth/domain"
	"github.com/allisson/authd/internal/auth/repository"
	"github.com/allisson/authd/internal/auth/service"
	"github.com/allisson/authd/internal/auth/usecase"
	"github.com/allisson/authd/internal/config"
	"github.com/allisson/authd/internal/testutil"
)

func newTestCore(t *testing.T) (usecase.AuthUseCase, *activity.Index) {
	t.Helper()

	_, st := testutil.SetupRedisStore(t)
	index := activity.NewIndex(st)
	require.NoError(t, index.Load(context.Background()))

	tokens := service.NewTokenService("test-secret", time.Hour)
	repo := repository.NewRedisGraphRepository(st)
	core, err := usecase.NewAuthUseCase(repo, index, tokens, st, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	return core, index
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestRunBootstrap(t *testing.T) {
	core, index := newTestCore(t)
	ctx := context.Background()

	cfg := &config.Config{
		RootPassword:       "root-secret",
		BootstrapRolesJSON: `{"admins":["view_users","manage_users"],"viewers":["view_users"]}`,
		DevMode:            true,
		DevUsersJSON:       `{"admin":["admins"]}`,
	}

	require.NoError(t, RunBootstrap(ctx, cfg, core, index, testLogger()))

	role, err := core.GetRole(ctx, "admins")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"view_users", "manage_users"}, role.Activities)

	root, err := core.GetUser(ctx, "root", false)
	require.NoError(t, err)
	assert.True(t, root.IsRoot)

	// Dev account logs in with its username as password.
	admin, err := core.Authenticate(ctx, "admin", "admin")
	require.NoError(t, err)
	assert.Equal(t, []string{"admins"}, admin.Roles)
}

func TestRunBootstrap_Idempotent(t *testing.T) {
	core, index := newTestCore(t)
	ctx := context.Background()

	cfg := &config.Config{
		RootPassword:       "root-secret",
		BootstrapRolesJSON: `{"viewers":["view_users"]}`,
	}

	require.NoError(t, RunBootstrap(ctx, cfg, core, index, testLogger()))

	// Change the root password through the API, then bootstrap again with a
	// different configured password: the stored one must survive.
	newPassword := "changed-by-operator"
	require.NoError(t, core.UpdateUser(ctx, "root", domain.UpdateUserInput{Password: &newPassword}))

	cfg.RootPassword = "something-else"
	require.NoError(t, RunBootstrap(ctx, cfg, core, index, testLogger()))

	_, err := core.Authenticate(ctx, "root", newPassword)
	require.NoError(t, err)
}

func TestRunBootstrap_UpdatesExistingRole(t *testing.T) {
	core, index := newTestCore(t)
	ctx := context.Background()

	require.NoError(t, core.AddRole(ctx, "viewers", []string{"stale_activity"}))

	cfg := &config.Config{
		RootPassword:       "root-secret",
		BootstrapRolesJSON: `{"viewers":["view_users"]}`,
	}
	require.NoError(t, RunBootstrap(ctx, cfg, core, index, testLogger()))

	role, err := core.GetRole(ctx, "viewers")
	require.NoError(t, err)
	assert.Equal(t, []string{"view_users"}, role.Activities)
}

func TestRunBootstrap_MissingRootPassword(t *testing.T) {
	core, index := newTestCore(t)

	cfg := &config.Config{}
	err := RunBootstrap(context.Background(), cfg, core, index, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ROOT_PASSWORD")
}

func TestRunBootstrap_InvalidRolesJSON(t *testing.T) {
	core, index := newTestCore(t)

	cfg := &config.Config{
		RootPassword:       "root-secret",
		BootstrapRolesJSON: `not-json`,
	}
	err := RunBootstrap(context.Background(), cfg, core, index, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "BOOTSTRAP_ROLES_JSON")
}

func TestRunBootstrap_ResetActivityMap(t *testing.T) {
	core, index := newTestCore(t)
	ctx := context.Background()

	require.NoError(t, core.RegisterActivities(ctx, []string{"view_users", "manage_users"}))

	cfg := &config.Config{
		RootPassword:            "root-secret",
		BootstrapRolesJSON:      `{"viewers":["view_users"]}`,
		ResetActivityMapOnStart: true,
	}
	require.NoError(t, RunBootstrap(ctx, cfg, core, index, testLogger()))

	// After the reset only the bootstrap role's activity is indexed, starting
	// from zero again.
	indices := core.ActivityIndexMap()
	assert.Equal(t, map[string]int{"view_users": 0}, indices)
}

func TestRunCheck(t *testing.T) {
	core, _ := newTestCore(t)
	ctx := context.Background()

	require.NoError(t, core.AddRole(ctx, "viewers", []string{"view_users"}))

	var out bytes.Buffer
	require.NoError(t, RunCheck(ctx, core, testLogger(), &out))
	assert.Contains(t, out.String(), "passed")
}

func TestRunReset(t *testing.T) {
	core, _ := newTestCore(t)
	ctx := context.Background()

	require.NoError(t, core.AddRole(ctx, "viewers", []string{"view_users"}))

	var out bytes.Buffer
	io := IOTuple{Reader: strings.NewReader(""), Writer: &out}
	require.NoError(t, RunReset(ctx, core, testLogger(), io, true))

	roles, err := core.GetRoles(ctx)
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestRunReset_RequiresConfirmation(t *testing.T) {
	core, _ := newTestCore(t)
	ctx := context.Background()

	require.NoError(t, core.AddRole(ctx, "viewers", []string{"view_users"}))

	var out bytes.Buffer
	io := IOTuple{Reader: strings.NewReader("no\n"), Writer: &out}
	require.NoError(t, RunReset(ctx, core, testLogger(), io, false))
	assert.Contains(t, out.String(), "Aborted")

	roles, err := core.GetRoles(ctx)
	require.NoError(t, err)
	assert.Len(t, roles, 1)
}

func TestRunReset_ConfirmedInteractively(t *testing.T) {
	core, _ := newTestCore(t)
	ctx := context.Background()

	require.NoError(t, core.AddRole(ctx, "viewers", []string{"view_users"}))

	var out bytes.Buffer
	io := IOTuple{Reader: strings.NewReader("yes\n"), Writer: &out}
	require.NoError(t, RunReset(ctx, core, testLogger(), io, false))

	roles, err := core.GetRoles(ctx)
	require.NoError(t, err)
	assert.Empty(t, roles)
}

func TestRunAddRole(t *testing.T) {
	core, _ := newTestCore(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, RunAddRole(ctx, core, testLogger(), &out, "auditors", []string{"view_users"}))
	assert.Contains(t, out.String(), "auditors")
	assert.Contains(t, out.String(), "view_users -> 0")

	role, err := core.GetRole(ctx, "auditors")
	require.NoError(t, err)
	assert.Equal(t, []string{"view_users"}, role.Activities)
}

func TestRunAddUser(t *testing.T) {
	core, _ := newTestCore(t)
	ctx := context.Background()

	require.NoError(t, core.AddRole(ctx, "viewers", []string{"view_users"}))

	var out bytes.Buffer
	require.NoError(t, RunAddUser(ctx, core, testLogger(), &out, "alice", "pw", []string{"viewers"}, false))
	assert.Contains(t, out.String(), "alice")

	user, err := core.GetUser(ctx, "alice", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"viewers"}, user.Roles)
	assert.False(t, user.IsRoot)
}

func TestRunAddUser_UnknownRole(t *testing.T) {
	core, _ := newTestCore(t)

	var out bytes.Buffer
	err := RunAddUser(context.Background(), core, testLogger(), &out, "alice", "pw", []string{"nope"}, false)
	require.Error(t, err)
}
