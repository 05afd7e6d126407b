//go:build !windows

package executor

import (
	"context"
	"strings"
	"testing"
)

func TestRunCommand(t *testing.T) {
	ctx := context.Background()
	if out := runCommand(ctx, "true"); !out.OK() {
		t.Fatalf("true: %+v", out)
	}
	if out := runCommand(ctx, "false"); out.OK() {
		t.Fatal("false: expected failure")
	}
	out := runCommand(ctx, "sh", "-c", "echo not permitted >&2; exit 3")
	if out.OK() || !strings.Contains(out.Error, "not permitted") {
		t.Fatalf("expected output in error, got %+v", out)
	}
	if out := runCommand(ctx); out.OK() {
		t.Fatal("empty argv must fail")
	}
}
