//go:build linux

package wake

import (
	"testing"

	"github.com/godbus/dbus/v5"
)

func TestResumed(t *testing.T) {
	name := logindIface + "." + sleepSignal
	cases := []struct {
		desc string
		sig  *dbus.Signal
		want bool
	}{
		{"nil", nil, false},
		{"going to sleep", &dbus.Signal{Name: name, Body: []interface{}{true}}, false},
		{"resumed", &dbus.Signal{Name: name, Body: []interface{}{false}}, true},
		{"other signal", &dbus.Signal{Name: logindIface + ".SessionNew", Body: []interface{}{false}}, false},
		{"bad body", &dbus.Signal{Name: name, Body: []interface{}{"false"}}, false},
		{"empty body", &dbus.Signal{Name: name}, false},
	}
	for _, c := range cases {
		if got := resumed(c.sig); got != c.want {
			t.Errorf("%s: resumed = %v, want %v", c.desc, got, c.want)
		}
	}
}

func TestNotifyDoesNotBlock(t *testing.T) {
	ch := make(chan struct{}, 1)
	notify(ch)
	notify(ch)
	if len(ch) != 1 {
		t.Fatalf("expected one buffered signal, got %d", len(ch))
	}
}
