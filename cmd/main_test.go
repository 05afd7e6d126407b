package cmd

import (
	"os"
	"testing"

	"github.com/powersched/powersched/pkg/powercli"
	"github.com/urfave/cli"
)

func TestMain(m *testing.M) {
	cli.OsExiter = func(int) {}
	_ = os.Setenv(powercli.VersionCheckEnv, "1")
	os.Exit(m.Run())
}
