package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/powersched/powersched/common"
	"github.com/powersched/powersched/internal/task"
	cmdcommon "github.com/powersched/powersched/cmd/common"
	"github.com/urfave/cli"
)

var (
	showActive bool

	lsFlags = []cli.Flag{
		cli.BoolFlag{
			Name:        "active, a",
			Usage:       "only list pending and executing tasks (default: false)",
			Destination: &showActive,
		},
	}
)

func list(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := dialDaemon(ctx, nil)
	if err != nil {
		return exitErr(ctx, "list", "new_client", err)
	}
	defer client.Close()
	tasks, err := client.List(context.Background(), showActive)
	if err != nil {
		return exitErr(ctx, "list", "get_list", err)
	}
	renderList(stdout, tasks)
	return nil
}

const (
	colID     = 36
	colAction = 9
	colStatus = 9
	colWhen   = 19
	colLeft   = 9
)

// renderList writes tasks as a fixed-width table.
func renderList(w io.Writer, tasks []common.TaskInfo) {
	if len(tasks) == 0 {
		fmt.Fprintln(w, "powersched: no tasks found")
		return
	}
	header := fmt.Sprintf("|%s|%s|%s|%s|%s|",
		cmdcommon.Beaut("ID", colID),
		cmdcommon.Beaut("Action", colAction),
		cmdcommon.Beaut("Status", colStatus),
		cmdcommon.Beaut("Execute At", colWhen),
		cmdcommon.Beaut("Remaining", colLeft),
	)
	rule := strings.Repeat("-", len(header))
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, rule)
	for _, t := range tasks {
		left := "-"
		if t.Status == task.StatusPending {
			left = cmdcommon.FormatRemaining(t.RemainingSeconds)
		}
		fmt.Fprintf(w, "|%s|%s|%s|%s|%s|\n",
			cmdcommon.Beaut(t.ID, colID),
			cmdcommon.Beaut(t.Action, colAction),
			cmdcommon.Beaut(t.Status.String(), colStatus),
			cmdcommon.Beaut(cmdcommon.FormatUnix(t.ExecuteAt), colWhen),
			cmdcommon.Beaut(left, colLeft),
		)
	}
	fmt.Fprintln(w, rule)
}
