package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/powersched/powersched/common"
	cmdcommon "github.com/powersched/powersched/cmd/common"
	"github.com/urfave/cli"
)

var settingsFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "default-action",
		Usage: "action used when create is given none",
	},
	cli.StringFlag{
		Name:  "reminders",
		Usage: "comma separated reminder offsets in seconds or durations (e.g. 300,60 or 5m,1m); empty string clears them",
	},
	cli.StringFlag{
		Name:  "theme",
		Usage: "light, dark or system",
	},
	cli.BoolFlag{
		Name:  "auto-start",
		Usage: "start the daemon at login",
	},
	cli.BoolFlag{
		Name:  "no-auto-start",
		Usage: "do not start the daemon at login",
	},
}

func showSettings(ctx *cli.Context) error {
	client, err := dialDaemon(ctx, nil)
	if err != nil {
		return exitErr(ctx, "settings", "new_client", err)
	}
	defer client.Close()
	s, err := client.GetSettings(context.Background())
	if err != nil {
		return exitErr(ctx, "settings", "get_settings", err)
	}
	printSettings(stdout, s)
	return nil
}

func setSettings(ctx *cli.Context) error {
	if ctx.Bool("auto-start") && ctx.Bool("no-auto-start") {
		return cmdcommon.PrintErrWithCmdHelp(ctx, fmt.Errorf("flags --auto-start and --no-auto-start are mutually exclusive"))
	}
	client, err := dialDaemon(ctx, nil)
	if err != nil {
		return exitErr(ctx, "settings", "new_client", err)
	}
	defer client.Close()

	s, err := client.GetSettings(context.Background())
	if err != nil {
		return exitErr(ctx, "settings", "get_settings", err)
	}
	if err := applySettingsFlags(ctx, s); err != nil {
		return cmdcommon.PrintErrWithCmdHelp(ctx, err)
	}
	saved, err := client.SaveSettings(context.Background(), s)
	if err != nil {
		return exitErr(ctx, "settings", "save_settings", err)
	}
	printSettings(stdout, saved)
	return nil
}

func applySettingsFlags(ctx *cli.Context, s *common.SettingsInfo) error {
	if ctx.IsSet("default-action") {
		s.DefaultAction = ctx.String("default-action")
	}
	if ctx.IsSet("theme") {
		s.Theme = ctx.String("theme")
	}
	if ctx.IsSet("reminders") {
		offsets, err := parseReminders(ctx.String("reminders"))
		if err != nil {
			return err
		}
		s.ReminderOffsets = offsets
	}
	switch {
	case ctx.Bool("auto-start"):
		s.AutoStart = true
	case ctx.Bool("no-auto-start"):
		s.AutoStart = false
	}
	return nil
}

// parseReminders parses a comma separated list of offsets. Each item is a
// number of seconds or a Go duration.
func parseReminders(value string) ([]int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return []int64{}, nil
	}
	parts := strings.Split(value, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if n, err := strconv.ParseInt(p, 10, 64); err == nil {
			out = append(out, n)
			continue
		}
		d, err := time.ParseDuration(p)
		if err != nil || d%time.Second != 0 {
			return nil, fmt.Errorf("invalid reminder offset %q", p)
		}
		out = append(out, int64(d/time.Second))
	}
	return out, nil
}

func printSettings(w io.Writer, s *common.SettingsInfo) {
	offsets := make([]string, 0, len(s.ReminderOffsets))
	for _, o := range s.ReminderOffsets {
		offsets = append(offsets, cmdcommon.FormatRemaining(o))
	}
	reminders := strings.Join(offsets, ", ")
	if reminders == "" {
		reminders = "none"
	}
	fmt.Fprintf(w, "Default action: %s\n", s.DefaultAction)
	fmt.Fprintf(w, "Reminders:      %s\n", reminders)
	fmt.Fprintf(w, "Theme:          %s\n", s.Theme)
	fmt.Fprintf(w, "Auto start:     %t\n", s.AutoStart)
}
