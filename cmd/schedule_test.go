package cmd

import (
	"testing"
	"time"
)

func TestParseIn(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	tests := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"90s", 1_700_000_090, false},
		{"1h30m", 1_700_005_400, false},
		{"0s", 1_700_000_000, false},
		{"-5m", 0, true},
		{"2d", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseIn(tt.in, now)
		if tt.wantErr {
			if err != errInFormat {
				t.Errorf("parseIn(%q) err = %v, want errInFormat", tt.in, err)
			}
			continue
		}
		if err != nil || got.Unix() != tt.want {
			t.Errorf("parseIn(%q) = %d, %v; want %d", tt.in, got.Unix(), err, tt.want)
		}
	}
}

func TestParseAt(t *testing.T) {
	got, err := parseAt("2030-01-02 03:04")
	if err != nil {
		t.Fatalf("parseAt: %v", err)
	}
	want := time.Date(2030, 1, 2, 3, 4, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Fatalf("parseAt = %v, want %v", got, want)
	}
	for _, bad := range []string{"", "2030-01-02", "03:04", "2030/01/02 03:04", "tomorrow"} {
		if _, err := parseAt(bad); err != errAtFormat {
			t.Errorf("parseAt(%q) err = %v", bad, err)
		}
	}
}

func TestResolveExecuteAt(t *testing.T) {
	now := time.Date(2030, 6, 1, 12, 0, 0, 0, time.Local)

	if _, _, err := resolveExecuteAt("2030-06-01 13:00", "1h", now); err == nil {
		t.Error("expected error when both flags are set")
	}
	if _, _, err := resolveExecuteAt("", "", now); err == nil {
		t.Error("expected error when neither flag is set")
	}

	at, warn, err := resolveExecuteAt("2030-06-01 13:00", "", now)
	if err != nil || warn != "" {
		t.Fatalf("future --at: %v %q", err, warn)
	}
	if at != now.Add(time.Hour).Unix() {
		t.Fatalf("at = %d", at)
	}

	at, warn, err = resolveExecuteAt("2030-06-01 11:00", "", now)
	if err != nil {
		t.Fatalf("past --at: %v", err)
	}
	if warn == "" {
		t.Error("expected a warning for a past --at")
	}
	if at != now.Add(-time.Hour).Unix() {
		t.Fatalf("at = %d", at)
	}

	at, _, err = resolveExecuteAt("", "45m", now)
	if err != nil || at != now.Add(45*time.Minute).Unix() {
		t.Fatalf("--in: %d %v", at, err)
	}

	if _, _, err := resolveExecuteAt("", "-1m", now); err != errInFormat {
		t.Fatalf("negative --in err = %v", err)
	}
}
