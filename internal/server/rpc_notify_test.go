package server

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/powersched/powersched/common"
	"github.com/powersched/powersched/internal/task"
	"github.com/powersched/powersched/pkg/logger"
)

type notifyRecorder struct {
	mu     sync.Mutex
	method []string
	params []common.EventParams
}

func (r *notifyRecorder) onNotify(req *jrpc2.Request) {
	var p common.EventParams
	_ = req.UnmarshalParams(&p)
	r.mu.Lock()
	defer r.mu.Unlock()
	r.method = append(r.method, req.Method())
	r.params = append(r.params, p)
}

func (r *notifyRecorder) wait(t *testing.T, n int) ([]string, []common.EventParams) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		if len(r.method) >= n {
			m, p := append([]string(nil), r.method...), append([]common.EventParams(nil), r.params...)
			r.mu.Unlock()
			return m, p
		}
		r.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d notifications", n)
	return nil, nil
}

func TestNotifier_RegisterUnregister(t *testing.T) {
	n := NewRPCNotifier(nil)
	srv := jrpc2.NewServer(handler.Map{}, &jrpc2.ServerOptions{AllowPush: true})
	n.Register(srv)
	if n.Count() != 1 {
		t.Fatalf("count = %d, want 1", n.Count())
	}
	n.Unregister(srv)
	if n.Count() != 0 {
		t.Fatalf("count = %d, want 0", n.Count())
	}
}

func TestNotifier_PublishDelivers(t *testing.T) {
	e := newTestEnv(t)
	rec := &notifyRecorder{}
	cli := e.directClient(t, rec.onNotify)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.notifier.Run(ctx)

	var created common.CreateResponse
	if err := cli.CallResult(ctx, string(common.MethodTaskCreate),
		&common.CreateParams{Action: "hibernate", ExecuteAt: time.Now().Add(time.Hour).Unix()}, &created); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := cli.CallResult(ctx, string(common.MethodTaskCancel), &common.IDParams{ID: created.ID}, nil); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	methods, params := rec.wait(t, 2)
	if methods[0] != common.NotifyTaskCreated || methods[1] != common.NotifyTaskCancelled {
		t.Fatalf("unexpected notifications: %v", methods)
	}
	if params[0].Task.ID != created.ID || params[1].Task.Status != "cancelled" {
		t.Fatalf("unexpected payloads: %+v", params)
	}
}

func TestNotifier_ReminderOffset(t *testing.T) {
	e := newTestEnv(t)
	rec := &notifyRecorder{}
	e.directClient(t, rec.onNotify)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go e.notifier.Run(ctx)

	e.notifier.Publish(task.Event{
		Kind:   task.EventReminder,
		Task:   task.Snapshot{Task: task.Task{ID: "t1", Action: task.ActionLock, Status: task.StatusPending}, RemainingSeconds: 58},
		Offset: 60,
	})
	methods, params := rec.wait(t, 1)
	if methods[0] != common.NotifyTaskReminder {
		t.Fatalf("method = %q", methods[0])
	}
	if params[0].Offset != 60 || params[0].Task.RemainingSeconds != 58 {
		t.Fatalf("unexpected payload: %+v", params[0])
	}
}

func TestNotifier_QueueFullDrops(t *testing.T) {
	log := logger.NewMockLogger()
	n := NewRPCNotifier(log)
	for i := 0; i < notifyQueueSize+3; i++ {
		n.Publish(task.Event{Kind: task.EventCreated})
	}
	if got := len(log.Warnings()); got != 3 {
		t.Fatalf("warnings = %d, want 3", got)
	}
}

func TestEventParamsWireShape(t *testing.T) {
	b, err := json.Marshal(common.EventParams{Task: common.TaskInfo{ID: "x", Status: "pending"}})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["offset"]; ok {
		t.Fatalf("offset should be omitted for non-reminder events: %s", b)
	}
}
