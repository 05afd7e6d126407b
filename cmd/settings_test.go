package cmd

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/powersched/powersched/common"
)

func TestParseReminders(t *testing.T) {
	tests := []struct {
		in      string
		want    []int64
		wantErr bool
	}{
		{"300,60", []int64{300, 60}, false},
		{"5m, 1m", []int64{300, 60}, false},
		{"1h,30s", []int64{3600, 30}, false},
		{"", []int64{}, false},
		{"  ", []int64{}, false},
		{"5m,abc", nil, true},
		{"1500ms", nil, true},
	}
	for _, tt := range tests {
		got, err := parseReminders(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("parseReminders(%q) expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseReminders(%q): %v", tt.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseReminders(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPrintSettings(t *testing.T) {
	var buf bytes.Buffer
	printSettings(&buf, &common.SettingsInfo{DefaultAction: "restart", Theme: "dark"})
	out := buf.String()
	for _, want := range []string{"restart", "none", "dark", "false"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
