// Package executor turns a task.Action into one platform power directive.
//
// Executors perform no retries and keep no state. Every call is bounded by
// a timeout (see WithTimeout); a call that does not return in time is
// reported as a task.OutcomeTimeout failure while the platform call, if
// it ever returns, is left to finish on its own.
package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/powersched/powersched/internal/task"
	"github.com/powersched/powersched/pkg/logger"
)

// DefaultTimeout bounds a single platform call.
const DefaultTimeout = 30 * time.Second

// Executor dispatches one action and reports its outcome.
type Executor interface {
	Execute(ctx context.Context, action task.Action) task.Outcome
}

// Func adapts a function to Executor.
type Func func(ctx context.Context, action task.Action) task.Outcome

func (f Func) Execute(ctx context.Context, action task.Action) task.Outcome {
	return f(ctx, action)
}

// Options configures New.
type Options struct {
	// DryRun logs actions instead of performing them.
	DryRun  bool
	Timeout time.Duration
	Log     logger.Logger
}

// New returns the executor for the running platform wrapped with a timeout.
func New(opts Options) Executor {
	if opts.Log == nil {
		opts.Log = logger.NewNopLogger()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	var e Executor
	if opts.DryRun {
		e = &DryRun{Log: opts.Log}
	} else {
		e = newPlatform(opts.Log)
	}
	return WithTimeout(e, opts.Timeout)
}

// DryRun logs every action and reports success.
type DryRun struct {
	Log logger.Logger
}

func (d *DryRun) Execute(_ context.Context, action task.Action) task.Outcome {
	d.Log.Info("executor: dry run, would perform %s", action)
	return task.Success()
}

type timeoutExecutor struct {
	next    Executor
	timeout time.Duration
}

// WithTimeout bounds every Execute call on e by d.
func WithTimeout(e Executor, d time.Duration) Executor {
	return &timeoutExecutor{next: e, timeout: d}
}

func (t *timeoutExecutor) Execute(ctx context.Context, action task.Action) task.Outcome {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	done := make(chan task.Outcome, 1)
	go func() {
		done <- t.next.Execute(ctx, action)
	}()

	select {
	case out := <-done:
		return out
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return task.Failure(fmt.Errorf("%w: %s did not return within %s", task.ErrTimeout, action, t.timeout))
		}
		return task.Failure(ctx.Err())
	}
}

// unsupported is returned for actions a platform has no directive for.
func unsupported(action task.Action) task.Outcome {
	return task.Failure(fmt.Errorf("%w: %s is not supported on this platform", task.ErrExecution, action))
}
