package cmd

import (
	"context"
	"fmt"
	"time"

	cmdcommon "github.com/powersched/powersched/cmd/common"
	"github.com/urfave/cli"
)

var (
	createAt string
	createIn string

	createFlags = []cli.Flag{
		cli.StringFlag{
			Name:        "at, a",
			Usage:       "local time to run the action (YYYY-MM-DD HH:MM)",
			Destination: &createAt,
		},
		cli.StringFlag{
			Name:        "in, i",
			Usage:       "delay before running the action (e.g. 90s, 45m, 1h30m)",
			Destination: &createIn,
		},
	}
)

func create(ctx *cli.Context) error {
	if ctx.Args().First() == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	if ctx.NArg() > 1 {
		return cmdcommon.PrintErrWithCmdHelp(ctx, fmt.Errorf("expected at most one action, got %d arguments", ctx.NArg()))
	}
	executeAt, warning, err := resolveExecuteAt(createAt, createIn, time.Now())
	if err != nil {
		return cmdcommon.PrintErrWithCmdHelp(ctx, err)
	}
	if warning != "" {
		fmt.Fprintln(stdout, warning)
	}
	return submit(ctx, "create", ctx.Args().First(), executeAt)
}

func now(ctx *cli.Context) error {
	action := ctx.Args().First()
	if action == "" {
		return cmdcommon.PrintErrWithCmdHelp(ctx, fmt.Errorf("missing action"))
	}
	if action == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	return submit(ctx, "now", action, time.Now().Unix())
}

func submit(ctx *cli.Context, cmd, action string, executeAt int64) error {
	client, err := dialDaemon(ctx, nil)
	if err != nil {
		return exitErr(ctx, cmd, "new_client", err)
	}
	defer client.Close()

	res, err := client.Create(context.Background(), action, executeAt)
	if err != nil {
		return exitErr(ctx, cmd, "create_task", err)
	}
	t := res.Task
	if t.RemainingSeconds == 0 {
		fmt.Fprintf(stdout, "Running %s now (task %s)\n", t.Action, t.ID)
		return nil
	}
	fmt.Fprintf(stdout, "Scheduled %s at %s (in %s)\nTask ID: %s\n",
		t.Action, cmdcommon.FormatUnix(t.ExecuteAt), cmdcommon.FormatRemaining(t.RemainingSeconds), t.ID)
	return nil
}
