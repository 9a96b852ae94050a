package commands

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/allisson/authd/internal/auth/usecase"
)

// RunReset wipes every role, user and the activity index. Without the yes
// flag it asks for confirmation on the reader first. All issued tokens become
// meaningless afterwards.
func RunReset(ctx context.Context, core usecase.AuthUseCase, logger *slog.Logger, io IOTuple, confirmed bool) error {
	if !confirmed {
		fmt.Fprint(io.Writer, "This deletes every role, user and the activity index. Type 'yes' to continue: ")

		scanner := bufio.NewScanner(io.Reader)
		if !scanner.Scan() {
			fmt.Fprintln(io.Writer, "Aborted.")
			return nil
		}
		if strings.TrimSpace(scanner.Text()) != "yes" {
			fmt.Fprintln(io.Writer, "Aborted.")
			return nil
		}
	}

	if err := core.Reset(ctx); err != nil {
		return fmt.Errorf("reset failed: %w", err)
	}

	fmt.Fprintln(io.Writer, "All data wiped.")
	logger.Warn("store wiped by reset command")

	return nil
}
