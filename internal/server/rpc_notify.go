package server

import (
	"context"
	"sync"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/powersched/powersched/common"
	"github.com/powersched/powersched/internal/task"
	"github.com/powersched/powersched/pkg/logger"
)

const (
	notifyQueueSize = 64
	notifyTimeout   = 5 * time.Second
)

// RPCNotifier maintains the set of connected jrpc2 servers and pushes task
// events to all of them as notifications.
type RPCNotifier struct {
	mu      sync.RWMutex
	servers map[*jrpc2.Server]struct{}
	log     logger.Logger
	queue   chan task.Event
}

// NewRPCNotifier creates a new notifier. Events passed to Publish are
// delivered once Run is started.
func NewRPCNotifier(l logger.Logger) *RPCNotifier {
	if l == nil {
		l = logger.NewNopLogger()
	}
	return &RPCNotifier{
		servers: make(map[*jrpc2.Server]struct{}),
		log:     l,
		queue:   make(chan task.Event, notifyQueueSize),
	}
}

// Register adds a server to the broadcast set.
func (n *RPCNotifier) Register(srv *jrpc2.Server) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.servers[srv] = struct{}{}
}

// Unregister removes a server from the broadcast set.
func (n *RPCNotifier) Unregister(srv *jrpc2.Server) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.servers, srv)
}

// Publish queues ev for broadcast without blocking the caller.
// When the queue is full the event is dropped and logged.
func (n *RPCNotifier) Publish(ev task.Event) {
	select {
	case n.queue <- ev:
	default:
		n.log.Warning("server: notification queue full, dropped %s for task %s", ev.Kind, ev.Task.ID)
	}
}

// Run delivers queued events until ctx is done.
func (n *RPCNotifier) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-n.queue:
			n.Broadcast(string(ev.Kind), &common.EventParams{
				Task:   common.NewTaskInfo(ev.Task),
				Offset: ev.Offset,
			})
		}
	}
}

// Broadcast sends a push notification to all registered servers.
// Servers that fail to receive (e.g., disconnected) are unregistered.
func (n *RPCNotifier) Broadcast(method string, params any) {
	n.mu.RLock()
	servers := make([]*jrpc2.Server, 0, len(n.servers))
	for srv := range n.servers {
		servers = append(servers, srv)
	}
	n.mu.RUnlock()

	var failed []*jrpc2.Server
	for _, srv := range servers {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		err := srv.Notify(ctx, method, params)
		cancel()
		if err != nil {
			n.log.Warning("server: push %s failed: %v", method, err)
			failed = append(failed, srv)
		}
	}

	if len(failed) > 0 {
		n.mu.Lock()
		for _, srv := range failed {
			delete(n.servers, srv)
		}
		n.mu.Unlock()
	}
}

// Count returns the number of registered servers.
func (n *RPCNotifier) Count() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.servers)
}
