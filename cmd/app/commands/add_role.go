package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/allisson/authd/internal/auth/usecase"
)

// RunAddRole creates a role with the given activities and prints the index
// each activity was assigned.
func RunAddRole(
	ctx context.Context,
	core usecase.AuthUseCase,
	logger *slog.Logger,
	writer io.Writer,
	name string,
	activities []string,
) error {
	if err := core.AddRole(ctx, name, activities); err != nil {
		return fmt.Errorf("failed to add role: %w", err)
	}

	fmt.Fprintf(writer, "Role %q created with activities: %s\n", name, strings.Join(activities, ", "))
	for label, index := range core.ActivityIndexMap(activities...) {
		fmt.Fprintf(writer, "  %s -> %d\n", label, index)
	}

	logger.Info("role created via cli", slog.String("role", name))

	return nil
}
