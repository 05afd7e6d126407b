package executor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/powersched/powersched/internal/task"
	"github.com/powersched/powersched/pkg/logger"
)

func TestWithTimeout_ReturnsOutcome(t *testing.T) {
	e := WithTimeout(Func(func(ctx context.Context, a task.Action) task.Outcome {
		return task.Failure(errors.New("denied"))
	}), time.Second)

	out := e.Execute(context.Background(), task.ActionLock)
	if out.Kind != task.OutcomeFailure || out.Error != "denied" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}

func TestWithTimeout_HungCallFails(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	e := WithTimeout(Func(func(ctx context.Context, a task.Action) task.Outcome {
		<-release
		return task.Success()
	}), 50*time.Millisecond)

	start := time.Now()
	out := e.Execute(context.Background(), task.ActionShutdown)
	if out.OK() || out.Kind != task.OutcomeTimeout {
		t.Fatalf("expected timeout outcome, got %+v", out)
	}
	if !strings.Contains(out.Error, task.ErrTimeout.Error()) {
		t.Fatalf("expected timeout error, got %q", out.Error)
	}
	if time.Since(start) > time.Second {
		t.Fatal("timeout did not bound the call")
	}
}

func TestWithTimeout_ParentCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	e := WithTimeout(Func(func(ctx context.Context, a task.Action) task.Outcome {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return task.Success()
	}), time.Second)

	out := e.Execute(ctx, task.ActionSleep)
	if out.OK() || out.Error != context.Canceled.Error() {
		t.Fatalf("unexpected error %q", out.Error)
	}
}

func TestNew_DryRun(t *testing.T) {
	log := logger.NewMockLogger()
	e := New(Options{DryRun: true, Log: log})
	for _, a := range task.Actions {
		if out := e.Execute(context.Background(), a); !out.OK() {
			t.Fatalf("%s: expected success, got %+v", a, out)
		}
	}
	if got := len(log.Infos()); got != len(task.Actions) {
		t.Fatalf("expected %d log lines, got %d", len(task.Actions), got)
	}
}

func TestUnsupported(t *testing.T) {
	out := unsupported(task.ActionHibernate)
	if out.OK() || !strings.Contains(out.Error, "hibernate") {
		t.Fatalf("unexpected outcome: %+v", out)
	}
}
