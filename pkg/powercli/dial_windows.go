//go:build windows

package powercli

import (
	"context"
	"net"

	"github.com/Microsoft/go-winio"
	"github.com/powersched/powersched/common"
)

// DefaultPath returns the daemon named pipe path.
func DefaultPath() string {
	return common.PipePath()
}

func dial(ctx context.Context, path string) (net.Conn, error) {
	debugLog("dialing named pipe %s", path)
	return winio.DialPipeContext(ctx, path)
}
