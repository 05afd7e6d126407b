//go:build !linux

package wake

import (
	"context"

	"github.com/powersched/powersched/pkg/logger"
)

// Watch has no resume source on this platform. The returned nil channel
// never receives; the scheduler's bounded wake covers resumes.
func Watch(ctx context.Context, log logger.Logger) (<-chan struct{}, error) {
	_ = ctx
	_ = log
	return nil, nil
}
