package cmd

import (
	"context"
	"os"

	"github.com/powersched/powersched/pkg/powercli"
	"github.com/urfave/cli"
)

// dialDaemon connects to the daemon, starting it first unless
// --no-autostart is set.
func dialDaemon(ctx *cli.Context, onEvent func(powercli.Event)) (*powercli.Client, error) {
	c, err := powercli.Dial(context.Background(), powercli.Options{
		Path:      ctx.GlobalString("socket"),
		AutoStart: !ctx.GlobalBool("no-autostart"),
		OnEvent:   onEvent,
	})
	if err != nil {
		return nil, err
	}
	c.CheckVersionMismatch(context.Background(), os.Stderr, currentBuildArgs.Version)
	return c, nil
}

// exitErr prints err in the "<app>: cmd[action]: msg" form and returns an
// exit error carrying the status for its category.
func exitErr(ctx *cli.Context, cmd, action string, err error) error {
	printErr(ctx, cmd, action, err)
	return cli.NewExitError("", powercli.ExitCode(err))
}
