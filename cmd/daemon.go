package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/powersched/powersched/common"
	"github.com/powersched/powersched/internal/daemon"
	"github.com/powersched/powersched/pkg/logger"
	"github.com/urfave/cli"
)

var daemonFlags = []cli.Flag{
	cli.StringFlag{
		Name:   "config-dir",
		Usage:  "directory for settings, tasks and the pidfile",
		EnvVar: common.ConfigDirEnv,
	},
	cli.StringFlag{
		Name:   "store-driver",
		Value:  "file",
		Usage:  "task storage backend: file or sqlite",
		EnvVar: "POWERSCHED_STORE_DRIVER",
	},
	cli.StringFlag{
		Name:   "store-path",
		Usage:  "task storage location (default: <config-dir>/tasks.json or tasks.db)",
		EnvVar: "POWERSCHED_STORE_PATH",
	},
	cli.BoolFlag{
		Name:   "store-recover",
		Usage:  "skip malformed task records on load instead of refusing to start",
		EnvVar: "POWERSCHED_STORE_RECOVER",
	},
	cli.DurationFlag{
		Name:   "wake-ceiling",
		Value:  DEF_WAKE_CEILING,
		Usage:  "longest the scheduler sleeps between checks",
		EnvVar: "POWERSCHED_WAKE_CEILING",
	},
	cli.DurationFlag{
		Name:   "exec-timeout",
		Value:  DEF_EXEC_TIMEOUT,
		Usage:  "time limit for a single power action",
		EnvVar: "POWERSCHED_EXEC_TIMEOUT",
	},
	cli.DurationFlag{
		Name:   "retention",
		Usage:  "drop finished tasks older than this (0 keeps them)",
		EnvVar: "POWERSCHED_RETENTION",
	},
	cli.BoolFlag{
		Name:   "dry-run",
		Usage:  "log actions instead of performing them",
		EnvVar: "POWERSCHED_DRY_RUN",
	},
	cli.StringFlag{
		Name:   "rpc-listen",
		Usage:  "serve JSON-RPC over HTTP and WebSocket on this address (e.g. 127.0.0.1:3850)",
		EnvVar: "POWERSCHED_RPC_LISTEN",
	},
	cli.Float64Flag{
		Name:   "rpc-rate",
		Value:  20,
		Usage:  "HTTP requests per second (0 disables limiting)",
		EnvVar: "POWERSCHED_RPC_RATE",
	},
	cli.DurationFlag{
		Name:   "shutdown-timeout",
		Usage:  "time allowed for teardown after a stop signal (default: exec timeout + 5s)",
		EnvVar: "POWERSCHED_SHUTDOWN_TIMEOUT",
	},
	cli.StringFlag{
		Name:   "log-level",
		Value:  "info",
		Usage:  "debug, info, warn or error",
		EnvVar: "POWERSCHED_LOG_LEVEL",
	},
	cli.StringFlag{
		Name:   "log-file",
		Usage:  "also write JSON logs to this file",
		EnvVar: "POWERSCHED_LOG_FILE",
	},
}

func daemonConfig(ctx *cli.Context) (daemon.Config, error) {
	dir := ctx.String("config-dir")
	if dir == "" {
		var err error
		if dir, err = common.ConfigDir(); err != nil {
			return daemon.Config{}, fmt.Errorf("resolve config dir: %w", err)
		}
	}
	socket := ctx.GlobalString("socket")
	if socket == "" {
		socket = defaultSocketPath()
	}
	return daemon.Config{
		ConfigDir:       dir,
		SocketPath:      socket,
		StoreDriver:     ctx.String("store-driver"),
		StorePath:       ctx.String("store-path"),
		StoreRecover:    ctx.Bool("store-recover"),
		DryRun:          ctx.Bool("dry-run"),
		ExecTimeout:     ctx.Duration("exec-timeout"),
		WakeCeiling:     ctx.Duration("wake-ceiling"),
		Retention:       ctx.Duration("retention"),
		RPCListen:       ctx.String("rpc-listen"),
		RPCRate:         ctx.Float64("rpc-rate"),
		ShutdownTimeout: ctx.Duration("shutdown-timeout"),
		Version:         currentBuildArgs.Version,
		Commit:          currentBuildArgs.Commit,
		BuildType:       currentBuildArgs.BuildType,
	}, nil
}

func daemonLogger(ctx *cli.Context) (logger.Logger, error) {
	level := ctx.String("log-level")
	if os.Getenv(common.DebugEnv) != "" {
		level = "debug"
	}
	return logger.New(logger.Options{
		Level:   level,
		File:    ctx.String("log-file"),
		Console: true,
	})
}

func runDaemon(ctx *cli.Context) error {
	cfg, err := daemonConfig(ctx)
	if err != nil {
		return exitErr(ctx, "daemon", "config", err)
	}
	log, err := daemonLogger(ctx)
	if err != nil {
		return exitErr(ctx, "daemon", "logger", err)
	}
	defer log.Close()

	r := daemon.New(cfg, nil, log)
	if handled, err := runAsService(r, log, r.Config().ShutdownTimeout); handled {
		if err != nil {
			return exitErr(ctx, "daemon", "service", err)
		}
		return nil
	}

	sigCtx, stop := setupShutdownHandler()
	defer stop()

	start := time.Now()
	if err := r.Start(sigCtx); err != nil {
		log.Error("daemon: %v", err)
		return exitErr(ctx, "daemon", "start", err)
	}
	log.Info("daemon: exited after %s", time.Since(start).Round(time.Second))
	return nil
}
