package server

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/creachadair/jrpc2/handler"
	"github.com/powersched/powersched/internal/api"
	"github.com/powersched/powersched/internal/settings"
	"github.com/powersched/powersched/internal/storage"
	"github.com/powersched/powersched/internal/store"
)

type testEnv struct {
	methods  handler.Map
	notifier *RPCNotifier
	store    *store.Store
	backend  *storage.Memory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := storage.NewMemory()
	st, err := store.Open(context.Background(), backend, store.Options{})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	sm := settings.NewManager(filepath.Join(t.TempDir(), settings.FileName), nil)
	notifier := NewRPCNotifier(nil)
	a := api.NewApi(nil, st, sm, notifier)
	return &testEnv{
		methods:  NewMethods(a, RPCConfig{Version: "1.0.0", Commit: "abc123", BuildType: "release"}),
		notifier: notifier,
		store:    st,
		backend:  backend,
	}
}

// directClient connects a jrpc2 client to a push-enabled server over an
// in-memory channel. The server is registered with the notifier.
func (e *testEnv) directClient(t *testing.T, onNotify func(*jrpc2.Request)) *jrpc2.Client {
	t.Helper()
	cch, sch := channel.Direct()
	srv := jrpc2.NewServer(e.methods, &jrpc2.ServerOptions{AllowPush: true}).Start(sch)
	e.notifier.Register(srv)
	cli := jrpc2.NewClient(cch, &jrpc2.ClientOptions{OnNotify: onNotify})
	t.Cleanup(func() {
		e.notifier.Unregister(srv)
		cli.Close()
		srv.Stop()
	})
	return cli
}
