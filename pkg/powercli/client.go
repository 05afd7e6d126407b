// Package powercli is the client for the powersched daemon. It speaks
// JSON-RPC 2.0 over the daemon socket (a named pipe on Windows) and delivers
// task notifications pushed by the daemon to an optional callback.
package powercli

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/channel"
	"github.com/powersched/powersched/common"
)

// DefaultCallTimeout bounds a single request when the caller's context has
// no deadline.
const DefaultCallTimeout = 10 * time.Second

// Event is a task notification pushed by the daemon.
type Event struct {
	Method string
	common.EventParams
}

// Options configures Dial.
type Options struct {
	// Path overrides the socket or pipe path.
	Path string
	// OnEvent receives pushed notifications. It runs on the client's
	// receive goroutine and must not block.
	OnEvent func(Event)
	// AutoStart spawns the daemon when nothing is listening.
	AutoStart bool
}

// Client is a connection to the daemon.
type Client struct {
	conn net.Conn
	rpc  *jrpc2.Client
}

// Dial connects to the daemon.
func Dial(ctx context.Context, opts Options) (*Client, error) {
	path := opts.Path
	if path == "" {
		path = DefaultPath()
	}
	if opts.AutoStart {
		if err := ensureDaemon(path); err != nil {
			return nil, err
		}
	}
	conn, err := dial(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon at %s: %w", path, err)
	}
	return newClient(conn, opts.OnEvent), nil
}

func newClient(conn net.Conn, onEvent func(Event)) *Client {
	var copts jrpc2.ClientOptions
	if onEvent != nil {
		copts.OnNotify = func(req *jrpc2.Request) {
			ev := Event{Method: req.Method()}
			if err := req.UnmarshalParams(&ev.EventParams); err != nil {
				debugLog("bad notification %s: %v", req.Method(), err)
				return
			}
			onEvent(ev)
		}
	}
	return &Client{
		conn: conn,
		rpc:  jrpc2.NewClient(channel.Line(conn, conn), &copts),
	}
}

// Close terminates the connection.
func (c *Client) Close() error {
	return c.rpc.Close()
}

func (c *Client) call(ctx context.Context, method common.Method, params, result any) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultCallTimeout)
		defer cancel()
	}
	rsp, err := c.rpc.Call(ctx, string(method), params)
	if err != nil {
		return fromRPCError(err)
	}
	if result == nil {
		return nil
	}
	return rsp.UnmarshalResult(result)
}

// Create schedules action at executeAt (epoch seconds). An empty action
// selects the daemon's default action.
func (c *Client) Create(ctx context.Context, action string, executeAt int64) (*common.CreateResponse, error) {
	var res common.CreateResponse
	if err := c.call(ctx, common.MethodTaskCreate, &common.CreateParams{Action: action, ExecuteAt: executeAt}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// List returns tasks ordered by execute_at. With active set only pending and
// executing tasks are returned.
func (c *Client) List(ctx context.Context, active bool) ([]common.TaskInfo, error) {
	var res common.ListResponse
	if err := c.call(ctx, common.MethodTaskList, &common.ListParams{Active: active}, &res); err != nil {
		return nil, err
	}
	return res.Tasks, nil
}

// Get returns one task.
func (c *Client) Get(ctx context.Context, id string) (*common.TaskInfo, error) {
	var res common.TaskInfo
	if err := c.call(ctx, common.MethodTaskGet, &common.IDParams{ID: id}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Cancel cancels a pending task.
func (c *Client) Cancel(ctx context.Context, id string) error {
	return c.call(ctx, common.MethodTaskCancel, &common.IDParams{ID: id}, nil)
}

// GetSettings reads the daemon settings.
func (c *Client) GetSettings(ctx context.Context) (*common.SettingsInfo, error) {
	var res common.SettingsInfo
	if err := c.call(ctx, common.MethodSettingsGet, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SaveSettings replaces the daemon settings and returns them normalized.
func (c *Client) SaveSettings(ctx context.Context, s *common.SettingsInfo) (*common.SettingsInfo, error) {
	var res common.SettingsInfo
	if err := c.call(ctx, common.MethodSettingsSave, s, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Version returns the daemon build information.
func (c *Client) Version(ctx context.Context) (*common.VersionResponse, error) {
	var res common.VersionResponse
	if err := c.call(ctx, common.MethodVersion, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func debugLog(format string, args ...any) {
	if os.Getenv(common.DebugEnv) == "" {
		return
	}
	fmt.Fprintf(os.Stderr, "[powercli] "+format+"\n", args...)
}
