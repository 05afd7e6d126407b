package cmd

import (
	"fmt"
	"time"
)

const atLayout = "2006-01-02 15:04"

var (
	errAtFormat = fmt.Errorf("invalid --at format, expected YYYY-MM-DD HH:MM")
	errInFormat = fmt.Errorf("invalid --in duration, expected format like 2h, 30m, or 1h30m (days not supported, use 24h)")
)

// parseAt parses an --at value in local time.
func parseAt(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errAtFormat
	}
	t, err := time.ParseInLocation(atLayout, value, time.Local)
	if err != nil {
		return time.Time{}, errAtFormat
	}
	return t, nil
}

// parseIn resolves an --in duration relative to now. Zero is valid and
// means immediately; negative durations are rejected.
func parseIn(value string, now time.Time) (time.Time, error) {
	if value == "" {
		return time.Time{}, errInFormat
	}
	d, err := time.ParseDuration(value)
	if err != nil || d < 0 {
		return time.Time{}, errInFormat
	}
	return now.Add(d), nil
}

// resolveExecuteAt turns --at / --in into epoch seconds. A past --at value
// is accepted with a warning and fires immediately.
func resolveExecuteAt(at, in string, now time.Time) (executeAt int64, warning string, err error) {
	switch {
	case at != "" && in != "":
		return 0, "", fmt.Errorf("flags --at and --in are mutually exclusive")
	case at == "" && in == "":
		return 0, "", fmt.Errorf("one of --at or --in is required")
	case at != "":
		t, err := parseAt(at)
		if err != nil {
			return 0, "", err
		}
		if t.Before(now) {
			warning = "warning: scheduled time is in the past, the action will run immediately"
		}
		return t.Unix(), warning, nil
	default:
		t, err := parseIn(in, now)
		if err != nil {
			return 0, "", err
		}
		return t.Unix(), "", nil
	}
}
