// Package daemon wires the task store, scheduler, executor and RPC server
// into a single process and manages its lifecycle: single-instance guard,
// readiness notification, retention and graceful shutdown.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	sd "github.com/coreos/go-systemd/v22/daemon"
	"github.com/creachadair/jrpc2/handler"
	"github.com/powersched/powersched/internal/api"
	"github.com/powersched/powersched/internal/executor"
	"github.com/powersched/powersched/internal/scheduler"
	"github.com/powersched/powersched/internal/secret"
	"github.com/powersched/powersched/internal/server"
	"github.com/powersched/powersched/internal/settings"
	"github.com/powersched/powersched/internal/storage"
	"github.com/powersched/powersched/internal/store"
	"github.com/powersched/powersched/internal/task"
	"github.com/powersched/powersched/internal/wake"
	"github.com/powersched/powersched/pkg/logger"
)

// Sentinel errors for the daemon runner.
var (
	// ErrAlreadyRunning is returned when Start is called on a running runner
	// or another daemon holds the pidfile.
	ErrAlreadyRunning = errors.New("daemon is already running")

	// ErrShutdownTimeout is returned when teardown exceeds the configured timeout.
	ErrShutdownTimeout = errors.New("shutdown timed out")
)

// Defaults applied by New for zero Config fields.
const (
	// shutdownGrace is the teardown allowance beyond the executor timeout.
	shutdownGrace = 5 * time.Second

	DefaultShutdownTimeout = executor.DefaultTimeout + shutdownGrace
	compactInterval        = time.Hour
)

// Config holds the configuration for the daemon runner.
type Config struct {
	// ConfigDir holds settings, the task file and the pidfile.
	ConfigDir string
	// SocketPath is the Unix socket or Windows pipe path.
	SocketPath string

	StoreDriver  string
	StorePath    string
	StoreRecover bool

	DryRun      bool
	ExecTimeout time.Duration
	WakeCeiling time.Duration

	// Retention compacts finished tasks older than this. Zero keeps them.
	Retention time.Duration

	// RPCListen enables the HTTP/WebSocket endpoint on this address.
	RPCListen string
	RPCRate   float64

	// ShutdownTimeout bounds teardown after the context is cancelled.
	ShutdownTimeout time.Duration

	Version   string
	Commit    string
	BuildType string
}

// Dependencies holds replaceable collaborators. Nil fields select the
// production implementation.
type Dependencies struct {
	Executor executor.Executor
	Clock    func() time.Time
	// Secrets are consulted in order for the HTTP bearer token.
	Secrets []secret.Store
	// Ready is called once the socket accepts connections.
	Ready func()
}

// Runner manages the daemon lifecycle.
type Runner struct {
	cfg  Config
	deps Dependencies
	log  logger.Logger

	mu      sync.Mutex
	running bool
	webAddr string
}

// New creates a runner. Zero Config values are filled from defaults.
func New(cfg Config, deps *Dependencies, l logger.Logger) *Runner {
	if l == nil {
		l = logger.NewNopLogger()
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = DefaultShutdownTimeout
		if cfg.ExecTimeout > 0 {
			cfg.ShutdownTimeout = cfg.ExecTimeout + shutdownGrace
		}
	}
	if cfg.StorePath == "" {
		cfg.StorePath = defaultStorePath(cfg.ConfigDir, cfg.StoreDriver)
	}
	var d Dependencies
	if deps != nil {
		d = *deps
	}
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.Secrets == nil {
		d.Secrets = []secret.Store{secret.NewKeyring(), secret.NewFile(cfg.ConfigDir)}
	}
	return &Runner{cfg: cfg, deps: d, log: l}
}

func defaultStorePath(dir, driver string) string {
	switch driver {
	case "sqlite", "sqlite3":
		return filepath.Join(dir, "tasks.db")
	default:
		return filepath.Join(dir, "tasks.json")
	}
}

// Config returns the effective configuration.
func (r *Runner) Config() Config {
	return r.cfg
}

// IsRunning reports whether Start is in progress.
func (r *Runner) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// WebAddr returns the bound HTTP address, empty when the endpoint is disabled.
func (r *Runner) WebAddr() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.webAddr
}

// Start runs the daemon until ctx is cancelled, then tears it down within
// the shutdown timeout. Pending tasks are loaded before the socket opens so
// no request observes an empty store.
func (r *Runner) Start(ctx context.Context) (err error) {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return ErrAlreadyRunning
	}
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.webAddr = ""
		r.mu.Unlock()
	}()

	if err := os.MkdirAll(r.cfg.ConfigDir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	pid := NewPidFile(r.cfg.ConfigDir)
	if err := pid.Acquire(); err != nil {
		return err
	}
	defer func() {
		if rerr := pid.Release(); rerr != nil {
			r.log.Warning("daemon: remove pidfile: %v", rerr)
		}
	}()

	backend, err := storage.Open(storage.Config{
		Driver:  r.cfg.StoreDriver,
		Path:    r.cfg.StorePath,
		Recover: r.cfg.StoreRecover,
	}, r.log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	st, err := store.Open(ctx, backend, store.Options{Clock: r.deps.Clock, Log: r.log})
	if err != nil {
		_ = backend.Close()
		return err
	}

	sm := settings.NewManager(filepath.Join(r.cfg.ConfigDir, settings.FileName), r.log)
	if _, err := sm.Load(); err != nil {
		r.log.Warning("daemon: %v; using defaults", err)
	}

	// Background goroutines, stopped when Start returns.
	bgCtx, stopBg := context.WithCancel(context.WithoutCancel(ctx))
	var bg sync.WaitGroup
	defer func() {
		stopBg()
		bg.Wait()
	}()

	notifier := server.NewRPCNotifier(r.log)
	events := task.Publishers{notifier, logPublisher{r.log}}
	bg.Go(func() { notifier.Run(bgCtx) })
	bg.Go(func() {
		if err := sm.Watch(bgCtx); err != nil {
			r.log.Warning("daemon: settings watch disabled: %v", err)
		}
	})

	exec := r.deps.Executor
	if exec == nil {
		exec = executor.New(executor.Options{DryRun: r.cfg.DryRun, Timeout: r.cfg.ExecTimeout, Log: r.log})
	}
	resume, err := wake.Watch(bgCtx, r.log)
	if err != nil {
		r.log.Warning("daemon: resume detection disabled: %v", err)
	}

	schedCtx, stopSched := context.WithCancel(context.WithoutCancel(ctx))
	defer stopSched()
	sched := scheduler.New(schedCtx, st, exec, scheduler.Config{
		WakeCeiling: r.cfg.WakeCeiling,
		Reminders:   sm.ReminderOffsets,
		Resume:      resume,
		Events:      events,
		Clock:       r.deps.Clock,
		Log:         r.log,
	})

	a := api.NewApi(r.log, st, sm, events)
	methods := server.NewMethods(a, server.RPCConfig{
		Version:   r.cfg.Version,
		Commit:    r.cfg.Commit,
		BuildType: r.cfg.BuildType,
	})

	srv := server.NewServer(r.log, methods, notifier, r.cfg.SocketPath)
	serveCtx, stopServe := context.WithCancel(context.WithoutCancel(ctx))
	defer stopServe()
	if err := srv.Listen(); err != nil {
		stopSched()
		sched.Wait()
		return errors.Join(err, st.Close(context.Background()))
	}
	serveDone := make(chan struct{})
	go func() {
		defer close(serveDone)
		if err := srv.Serve(serveCtx); err != nil {
			r.log.Error("daemon: serve: %v", err)
		}
	}()

	var web *server.WebServer
	if r.cfg.RPCListen != "" {
		web, err = r.startWeb(methods, notifier)
		if err != nil {
			r.log.Error("daemon: http endpoint disabled: %v", err)
		}
	}

	if r.cfg.Retention > 0 {
		bg.Go(func() { r.compactLoop(bgCtx, st) })
	}

	r.notifySystemd(sd.SdNotifyReady)
	if r.deps.Ready != nil {
		r.deps.Ready()
	}
	r.log.Info("daemon: ready (pid %d)", os.Getpid())

	select {
	case <-ctx.Done():
	case <-sched.Done():
		r.log.Error("daemon: scheduler stopped unexpectedly")
	}

	r.notifySystemd(sd.SdNotifyStopping)
	r.log.Info("daemon: shutting down")
	return r.shutdown(srv, web, serveDone, stopServe, sched, stopSched, st)
}

func (r *Runner) startWeb(methods handler.Map, notifier *server.RPCNotifier) (*server.WebServer, error) {
	token, err := secret.Resolve(r.log, r.deps.Secrets...)
	if err != nil {
		return nil, err
	}
	web := server.NewWebServer(r.log, methods, notifier, server.WebConfig{
		Addr:      r.cfg.RPCListen,
		Secret:    token,
		RateLimit: r.cfg.RPCRate,
	})
	if err := web.Listen(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	r.webAddr = web.Addr()
	r.mu.Unlock()
	go func() {
		if err := web.Serve(); err != nil {
			r.log.Error("daemon: http serve: %v", err)
		}
	}()
	return web, nil
}

// shutdown stops accepting requests, lets the scheduler finalize an
// in-flight execution, then flushes and closes the store. The store is
// closed even when the scheduler misses the deadline; a task left executing
// is finalized as interrupted on the next start.
func (r *Runner) shutdown(
	srv *server.Server,
	web *server.WebServer,
	serveDone <-chan struct{},
	stopServe context.CancelFunc,
	sched *scheduler.Scheduler,
	stopSched context.CancelFunc,
	st *store.Store,
) error {
	ctx, cancel := context.WithTimeout(context.Background(), r.cfg.ShutdownTimeout)
	defer cancel()

	var errs []error
	if web != nil {
		if err := web.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("http shutdown: %w", err))
		}
	}
	stopServe()
	_ = srv.Shutdown()

	stopSched()
	select {
	case <-sched.Done():
	case <-ctx.Done():
		r.log.Warning("daemon: scheduler did not stop within %s", r.cfg.ShutdownTimeout)
	}
	select {
	case <-serveDone:
	case <-ctx.Done():
	}
	if ctx.Err() != nil {
		errs = append(errs, ErrShutdownTimeout)
	}

	if err := st.Close(context.Background()); err != nil {
		errs = append(errs, fmt.Errorf("close store: %w", err))
	}
	r.log.Info("daemon: stopped")
	return errors.Join(errs...)
}

func (r *Runner) compactLoop(ctx context.Context, st *store.Store) {
	compact := func() {
		cutoff := r.deps.Clock().Add(-r.cfg.Retention)
		n, err := st.Compact(ctx, cutoff)
		if err != nil {
			r.log.Error("daemon: compact: %v", err)
			return
		}
		if n > 0 {
			r.log.Info("daemon: compacted %d finished tasks", n)
		}
	}
	compact()
	t := time.NewTicker(compactInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			compact()
		}
	}
}

func (r *Runner) notifySystemd(state string) {
	if ok, err := sd.SdNotify(false, state); err != nil {
		r.log.Warning("daemon: sd_notify: %v", err)
	} else if ok {
		r.log.Info("daemon: notified systemd (%s)", state)
	}
}

// logPublisher records task events in the daemon log.
type logPublisher struct {
	log logger.Logger
}

func (p logPublisher) Publish(ev task.Event) {
	switch ev.Kind {
	case task.EventReminder:
		p.log.Info("reminder: %s (%s) in %ds", ev.Task.ID, ev.Task.Action, ev.Task.RemainingSeconds)
	case task.EventCompleted:
		if ev.Task.Outcome.OK() {
			p.log.Info("task %s (%s) completed", ev.Task.ID, ev.Task.Action)
		} else {
			p.log.Error("task %s (%s) failed: %s", ev.Task.ID, ev.Task.Action, ev.Task.Outcome.Error)
		}
	}
}
