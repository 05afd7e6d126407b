//go:build windows

package service

import (
	"fmt"

	"github.com/powersched/powersched/pkg/logger"
	"golang.org/x/sys/windows/svc/eventlog"
)

// Event ids written to the Application log.
const (
	eventInfo    = 1
	eventWarning = 2
	eventError   = 3
)

// EventLogger writes to the Windows Event Log. It satisfies logger.Logger.
type EventLogger struct {
	log *eventlog.Log
}

var _ logger.Logger = (*EventLogger)(nil)

// NewEventLogger registers source if needed and opens it.
func NewEventLogger(source string) (*EventLogger, error) {
	// Fails when the source already exists, which is fine.
	_ = eventlog.InstallAsEventCreate(source, eventlog.Error|eventlog.Warning|eventlog.Info)
	l, err := eventlog.Open(source)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	return &EventLogger{log: l}, nil
}

func (e *EventLogger) Info(format string, args ...interface{}) {
	_ = e.log.Info(eventInfo, fmt.Sprintf(format, args...))
}

func (e *EventLogger) Warning(format string, args ...interface{}) {
	_ = e.log.Warning(eventWarning, fmt.Sprintf(format, args...))
}

func (e *EventLogger) Error(format string, args ...interface{}) {
	_ = e.log.Error(eventError, fmt.Sprintf(format, args...))
}

func (e *EventLogger) Close() error {
	return e.log.Close()
}
