package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/allisson/authd/internal/auth/usecase"
)

// RunCheck verifies the consistency of the authorization graph: the activity
// index against its persisted copy, role activities against the index, and
// the bidirectional role/user links. Returns the first violation found.
func RunCheck(ctx context.Context, core usecase.AuthUseCase, logger *slog.Logger, writer io.Writer) error {
	if err := core.AssertConsistency(ctx); err != nil {
		return fmt.Errorf("consistency check failed: %w", err)
	}

	fmt.Fprintln(writer, "Consistency check passed.")
	logger.Info("consistency check passed")

	return nil
}
