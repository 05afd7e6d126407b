package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/powersched/powersched/common"
	"github.com/powersched/powersched/internal/task"
	cmdcommon "github.com/powersched/powersched/cmd/common"
	"github.com/powersched/powersched/pkg/powercli"
	"github.com/urfave/cli"
	"github.com/vbauerster/mpb/v8"
)

// watchRefresh is how often the countdown re-reads the task.
var watchRefresh = time.Second

func watch(ctx *cli.Context) error {
	id := ctx.Args().First()
	if id == "" {
		return cmdcommon.PrintErrWithCmdHelp(ctx, fmt.Errorf("missing task id"))
	}
	if id == "help" {
		return cli.ShowCommandHelp(ctx, ctx.Command.Name)
	}

	events := make(chan powercli.Event, 16)
	client, err := dialDaemon(ctx, func(ev powercli.Event) {
		if ev.Task.ID != id {
			return
		}
		select {
		case events <- ev:
		default:
		}
	})
	if err != nil {
		return exitErr(ctx, "watch", "new_client", err)
	}
	defer client.Close()

	t, err := client.Get(context.Background(), id)
	if err != nil {
		return exitErr(ctx, "watch", "get_task", err)
	}
	if t.Status != task.StatusPending {
		printTask(stdout, t)
		return nil
	}

	final, err := countdown(client, t, events)
	if err != nil {
		return exitErr(ctx, "watch", "get_task", err)
	}
	fmt.Fprintln(stdout)
	printTask(stdout, final)
	return nil
}

// countdown renders a bar until the task leaves Pending and returns its
// last known state.
func countdown(client *powercli.Client, t *common.TaskInfo, events <-chan powercli.Event) (*common.TaskInfo, error) {
	p := mpb.New(mpb.WithOutput(stdout), mpb.WithWidth(48))
	bar, total := cmdcommon.InitCountdownBar(p, t.Action, t.ExecuteAt-t.CreatedAt)
	bar.SetCurrent(total - t.RemainingSeconds)

	ticker := time.NewTicker(watchRefresh)
	defer ticker.Stop()
	for {
		select {
		case ev := <-events:
			info := ev.Task
			switch ev.Method {
			case common.NotifyTaskReminder:
				bar.SetCurrent(total - info.RemainingSeconds)
				continue
			case common.NotifyTaskCancelled:
				bar.Abort(false)
			default:
				bar.SetCurrent(total)
			}
			p.Wait()
			if ev.Method == common.NotifyTaskExecuting {
				// Wait for the outcome.
				return waitFinal(client, info.ID)
			}
			return &info, nil
		case <-ticker.C:
			cur, err := client.Get(context.Background(), t.ID)
			if err != nil {
				bar.Abort(false)
				p.Wait()
				return nil, err
			}
			if cur.Status == task.StatusPending {
				bar.SetCurrent(total - cur.RemainingSeconds)
				continue
			}
			if cur.Status == task.StatusCancelled {
				bar.Abort(false)
			} else {
				bar.SetCurrent(total)
			}
			p.Wait()
			if cur.Status == task.StatusExecuting {
				return waitFinal(client, cur.ID)
			}
			return cur, nil
		}
	}
}

func waitFinal(client *powercli.Client, id string) (*common.TaskInfo, error) {
	for {
		cur, err := client.Get(context.Background(), id)
		if err != nil {
			return nil, err
		}
		if cur.Status != task.StatusExecuting {
			return cur, nil
		}
		time.Sleep(watchRefresh)
	}
}
