//go:build !windows

package powercli

import (
	"context"
	"net"

	"github.com/powersched/powersched/common"
)

// DefaultPath returns the daemon socket path.
func DefaultPath() string {
	return common.SocketPath()
}

func dial(ctx context.Context, path string) (net.Conn, error) {
	debugLog("dialing unix socket %s", path)
	var d net.Dialer
	return d.DialContext(ctx, "unix", path)
}
