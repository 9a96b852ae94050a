package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/allisson/authd/internal/auth/usecase"
)

// RunAddUser creates a user with the given password and role assignments.
// Every role must already exist.
func RunAddUser(
	ctx context.Context,
	core usecase.AuthUseCase,
	logger *slog.Logger,
	writer io.Writer,
	username string,
	password string,
	roles []string,
	isRoot bool,
) error {
	if err := core.AddUser(ctx, username, password, roles, isRoot); err != nil {
		return fmt.Errorf("failed to add user: %w", err)
	}

	if len(roles) > 0 {
		fmt.Fprintf(writer, "User %q created with roles: %s\n", username, strings.Join(roles, ", "))
	} else {
		fmt.Fprintf(writer, "User %q created with no roles\n", username)
	}
	if isRoot {
		fmt.Fprintln(writer, "The account has the root bypass: every authorization check passes.")
	}

	logger.Info("user created via cli", slog.String("username", username), slog.Bool("is_root", isRoot))

	return nil
}
