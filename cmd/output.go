package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/powersched/powersched/common"
	"github.com/powersched/powersched/internal/task"
	cmdcommon "github.com/powersched/powersched/cmd/common"
	"github.com/powersched/powersched/pkg/powercli"
	"github.com/urfave/cli"
)

// stdout is the destination for command output; tests replace it.
var stdout io.Writer = os.Stdout

func printErr(ctx *cli.Context, cmd, action string, err error) {
	fmt.Fprintf(stdout, "%s: %s[%s]: %s\n", ctx.App.HelpName, cmd, action, powercli.Describe(err))
}

func printTask(w io.Writer, t *common.TaskInfo) {
	fmt.Fprintf(w, "ID:         %s\n", t.ID)
	fmt.Fprintf(w, "Action:     %s\n", t.Action)
	fmt.Fprintf(w, "Status:     %s\n", t.Status)
	fmt.Fprintf(w, "Execute at: %s\n", cmdcommon.FormatUnix(t.ExecuteAt))
	if t.Status == task.StatusPending {
		fmt.Fprintf(w, "Remaining:  %s\n", cmdcommon.FormatRemaining(t.RemainingSeconds))
	}
	if t.FinishedAt > 0 {
		fmt.Fprintf(w, "Finished:   %s\n", cmdcommon.FormatUnix(t.FinishedAt))
	}
	if t.Outcome != "" {
		fmt.Fprintf(w, "Outcome:    %s\n", t.Outcome)
	}
	if t.Error != "" {
		fmt.Fprintf(w, "Error:      %s\n", t.Error)
	}
}
