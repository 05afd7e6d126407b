package powercli

import (
	"errors"
	"testing"

	"github.com/creachadair/jrpc2"
	"github.com/powersched/powersched/common"
	"github.com/powersched/powersched/internal/task"
)

func TestFromRPCError(t *testing.T) {
	tests := []struct {
		code int
		want error
		exit int
	}{
		{common.CodeInvalidInput, task.ErrInvalidInput, 2},
		{common.CodeInvalidTime, task.ErrInvalidTime, 2},
		{common.CodeNotFound, task.ErrNotFound, 3},
		{common.CodeInvalidState, task.ErrInvalidState, 4},
		{common.CodePersistence, task.ErrPersistence, 5},
	}
	for _, tt := range tests {
		err := fromRPCError(&jrpc2.Error{Code: jrpc2.Code(tt.code), Message: "boom"})
		if !errors.Is(err, tt.want) {
			t.Errorf("code %d: %v does not match %v", tt.code, err, tt.want)
		}
		if err.Error() != "boom" {
			t.Errorf("code %d: message %q", tt.code, err.Error())
		}
		if got := ExitCode(err); got != tt.exit {
			t.Errorf("code %d: exit %d, want %d", tt.code, got, tt.exit)
		}
	}
}

func TestFromRPCError_Passthrough(t *testing.T) {
	plain := errors.New("connection reset")
	if got := fromRPCError(plain); got != plain {
		t.Fatalf("non-RPC error was rewrapped: %v", got)
	}
	internal := &jrpc2.Error{Code: jrpc2.InternalError, Message: "x"}
	if got := fromRPCError(internal); got != error(internal) {
		t.Fatalf("unknown code was rewrapped: %v", got)
	}
	if ExitCode(plain) != 1 || ExitCode(nil) != 0 {
		t.Fatal("unexpected exit codes for plain errors")
	}
}

func TestDescribe(t *testing.T) {
	err := fromRPCError(&jrpc2.Error{Code: jrpc2.Code(common.CodeNotFound), Message: "task not found: abc"})
	if got := Describe(err); got != "NotFound: task not found: abc" {
		t.Fatalf("Describe = %q", got)
	}
	if got := Describe(errors.New("plain")); got != "plain" {
		t.Fatalf("Describe = %q", got)
	}
}
