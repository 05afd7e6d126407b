package server

import (
	"context"

	"github.com/creachadair/jrpc2/handler"
	"github.com/powersched/powersched/common"
	"github.com/powersched/powersched/internal/api"
	"github.com/powersched/powersched/internal/settings"
	"github.com/powersched/powersched/internal/task"
)

// RPCConfig holds the build information reported by system.getVersion.
type RPCConfig struct {
	Version   string
	Commit    string
	BuildType string
}

type rpcMethods struct {
	api *api.Api
	cfg RPCConfig
}

// NewMethods returns the JSON-RPC method table served on every transport.
func NewMethods(a *api.Api, cfg RPCConfig) handler.Map {
	m := &rpcMethods{api: a, cfg: cfg}
	return handler.Map{
		string(common.MethodVersion):      handler.New(m.systemGetVersion),
		string(common.MethodTaskCreate):   handler.New(m.taskCreate),
		string(common.MethodTaskList):     handler.New(m.taskList),
		string(common.MethodTaskGet):      handler.New(m.taskGet),
		string(common.MethodTaskCancel):   handler.New(m.taskCancel),
		string(common.MethodSettingsGet):  handler.New(m.settingsGet),
		string(common.MethodSettingsSave): handler.New(m.settingsSave),
	}
}

func (m *rpcMethods) systemGetVersion(_ context.Context) (*common.VersionResponse, error) {
	return &common.VersionResponse{
		Version:   m.cfg.Version,
		Commit:    m.cfg.Commit,
		BuildType: m.cfg.BuildType,
	}, nil
}

func (m *rpcMethods) taskCreate(ctx context.Context, p *common.CreateParams) (*common.CreateResponse, error) {
	snap, err := m.api.CreateTask(ctx, p.Action, p.ExecuteAt)
	if err != nil {
		return nil, rpcError(err)
	}
	return &common.CreateResponse{ID: snap.ID, Task: common.NewTaskInfo(snap)}, nil
}

func (m *rpcMethods) taskList(ctx context.Context, p *common.ListParams) (*common.ListResponse, error) {
	snaps := m.api.ListTasks(ctx, p.Active)
	tasks := make([]common.TaskInfo, 0, len(snaps))
	for _, s := range snaps {
		tasks = append(tasks, common.NewTaskInfo(s))
	}
	return &common.ListResponse{Tasks: tasks}, nil
}

func (m *rpcMethods) taskGet(ctx context.Context, p *common.IDParams) (*common.TaskInfo, error) {
	snap, err := m.api.GetTask(ctx, p.ID)
	if err != nil {
		return nil, rpcError(err)
	}
	info := common.NewTaskInfo(snap)
	return &info, nil
}

func (m *rpcMethods) taskCancel(ctx context.Context, p *common.IDParams) (*common.EmptyResponse, error) {
	if err := m.api.CancelTask(ctx, p.ID); err != nil {
		return nil, rpcError(err)
	}
	return &common.EmptyResponse{}, nil
}

func (m *rpcMethods) settingsGet(ctx context.Context) (*common.SettingsInfo, error) {
	s, err := m.api.GetSettings(ctx)
	if err != nil {
		return nil, rpcError(err)
	}
	return settingsInfo(s), nil
}

func (m *rpcMethods) settingsSave(ctx context.Context, p *common.SettingsInfo) (*common.SettingsInfo, error) {
	s, err := m.api.SaveSettings(ctx, settings.Settings{
		AutoStart:       p.AutoStart,
		DefaultAction:   task.Action(p.DefaultAction),
		ReminderOffsets: p.ReminderOffsets,
		Theme:           p.Theme,
	})
	if err != nil {
		return nil, rpcError(err)
	}
	return settingsInfo(s), nil
}

func settingsInfo(s settings.Settings) *common.SettingsInfo {
	offsets := s.ReminderOffsets
	if offsets == nil {
		offsets = []int64{}
	}
	return &common.SettingsInfo{
		AutoStart:       s.AutoStart,
		DefaultAction:   string(s.DefaultAction),
		ReminderOffsets: offsets,
		Theme:           s.Theme,
	}
}
