package cmd

import (
	"context"
	"fmt"

	cmdcommon "github.com/powersched/powersched/cmd/common"
	"github.com/urfave/cli"
)

func cancel(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return cmdcommon.PrintErrWithCmdHelp(ctx, fmt.Errorf("missing task id"))
	}
	if id == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}
	client, err := dialDaemon(ctx, nil)
	if err != nil {
		return exitErr(ctx, "cancel", "new_client", err)
	}
	defer client.Close()
	if err := client.Cancel(context.Background(), id); err != nil {
		return exitErr(ctx, "cancel", "cancel_task", err)
	}
	fmt.Fprintf(stdout, "Cancelled task %s\n", id)
	return nil
}
