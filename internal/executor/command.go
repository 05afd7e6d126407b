package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/powersched/powersched/internal/task"
)

// runCommand runs argv and folds a non-zero exit and its output into a
// failed outcome.
func runCommand(ctx context.Context, argv ...string) task.Outcome {
	if len(argv) == 0 {
		return task.Failure(fmt.Errorf("%w: empty command", task.ErrExecution))
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(out.String())
		if msg != "" {
			return task.Failure(fmt.Errorf("%w: %s: %v: %s", task.ErrExecution, argv[0], err, msg))
		}
		return task.Failure(fmt.Errorf("%w: %s: %v", task.ErrExecution, argv[0], err))
	}
	return task.Success()
}
