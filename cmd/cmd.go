// Package cmd implements the powersched command line: the daemon and the
// client commands that talk to it.
package cmd

import (
	"fmt"
	"runtime"

	"github.com/powersched/powersched/cmd/common"
	"github.com/urfave/cli"
)

type BuildArgs struct {
	Version   string
	BuildType string
	Date      string
	Commit    string
}

// currentBuildArgs is reported by the daemon over system.getVersion.
var currentBuildArgs BuildArgs

var globalFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "socket",
		Usage:  "daemon socket path (named pipe on Windows)",
		EnvVar: "POWERSCHED_SOCKET_PATH",
	},
	cli.BoolFlag{
		Name:   "no-autostart",
		Usage:  "do not start the daemon when it is not running",
		EnvVar: "POWERSCHED_NO_AUTOSTART",
	},
}

func Execute(args []string, bArgs BuildArgs) error {
	currentBuildArgs = bArgs
	app := newApp(bArgs)
	common.VersionCmdStr = fmt.Sprintf("%s %s (%s_%s)\nBuild: %s=%s\n",
		app.Name,
		app.Version,
		runtime.GOOS,
		runtime.GOARCH,
		bArgs.Date, bArgs.Commit,
	)
	return app.Run(args)
}

func newApp(bArgs BuildArgs) *cli.App {
	app := cli.NewApp()
	app.Name = "powersched"
	app.HelpName = "powersched"
	app.Usage = "Schedule shutdown, restart, sleep, hibernate and lock."
	app.Version = fmt.Sprintf("%s-%s", bArgs.Version, bArgs.BuildType)
	app.UsageText = "powersched <command> [arguments...]"
	app.Description = DESCRIPTION
	app.CustomAppHelpTemplate = HELP_TEMPL
	app.OnUsageError = common.UsageErrorCallback
	app.Flags = globalFlags
	app.HideHelp = true
	app.HideVersion = true
	app.Commands = []cli.Command{
		{
			Name:               "daemon",
			Usage:              "run the scheduler daemon in the foreground",
			Description:        DaemonDescription,
			CustomHelpTemplate: CMD_HELP_TEMPL,
			OnUsageError:       common.UsageErrorCallback,
			Flags:              daemonFlags,
			Action:             runDaemon,
		},
		{
			Name:               "create",
			Aliases:            []string{"schedule", "c"},
			Usage:              "schedule an action",
			UsageText:          "create [ACTION] (--at \"YYYY-MM-DD HH:MM\" | --in DURATION)",
			Description:        CreateDescription,
			CustomHelpTemplate: CMD_HELP_TEMPL,
			OnUsageError:       common.UsageErrorCallback,
			Flags:              createFlags,
			Action:             create,
		},
		{
			Name:               "now",
			Usage:              "run an action immediately",
			UsageText:          "now ACTION",
			Description:        NowDescription,
			CustomHelpTemplate: CMD_HELP_TEMPL,
			OnUsageError:       common.UsageErrorCallback,
			Action:             now,
		},
		{
			Name:                   "list",
			Aliases:                []string{"l", "ls"},
			Usage:                  "display scheduled tasks",
			Description:            ListDescription,
			CustomHelpTemplate:     CMD_HELP_TEMPL,
			OnUsageError:           common.UsageErrorCallback,
			UseShortOptionHandling: true,
			Flags:                  lsFlags,
			Action:                 list,
		},
		{
			Name:               "cancel",
			Aliases:            []string{"rm"},
			Usage:              "cancel a pending task",
			UsageText:          "cancel ID",
			Description:        CancelDescription,
			CustomHelpTemplate: CMD_HELP_TEMPL,
			OnUsageError:       common.UsageErrorCallback,
			Action:             cancel,
		},
		{
			Name:               "watch",
			Aliases:            []string{"w"},
			Usage:              "show a countdown for a task",
			UsageText:          "watch ID",
			Description:        WatchDescription,
			CustomHelpTemplate: CMD_HELP_TEMPL,
			OnUsageError:       common.UsageErrorCallback,
			Action:             watch,
		},
		{
			Name:               "settings",
			Usage:              "show or change settings",
			Description:        SettingsDescription,
			CustomHelpTemplate: CMD_HELP_TEMPL,
			OnUsageError:       common.UsageErrorCallback,
			Action:             showSettings,
			Subcommands: []cli.Command{
				{
					Name:         "set",
					Usage:        "change settings",
					OnUsageError: common.UsageErrorCallback,
					Flags:        settingsFlags,
					Action:       setSettings,
				},
			},
		},
		{
			Name:   "stop-daemon",
			Usage:  "stop the running daemon",
			Action: stopDaemon,
		},
		{
			Name:    "help",
			Aliases: []string{"h"},
			Usage:   "prints the help message",
			Action:  common.Help,
		},
		{
			Name:               "version",
			Aliases:            []string{"v"},
			Usage:              "prints installed version of powersched",
			UsageText:          " ",
			CustomHelpTemplate: CMD_HELP_TEMPL,
			Action:             common.GetVersion,
		},
	}
	return app
}
