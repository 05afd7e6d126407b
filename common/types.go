package common

import "github.com/powersched/powersched/internal/task"

// CreateParams is the input for task.create. An empty Action selects the
// default action from settings.
type CreateParams struct {
	Action    string `json:"action,omitempty"`
	ExecuteAt int64  `json:"execute_at"`
}

// CreateResponse is the result of task.create.
type CreateResponse struct {
	ID   string   `json:"id"`
	Task TaskInfo `json:"task"`
}

// IDParams addresses a single task.
type IDParams struct {
	ID string `json:"id"`
}

// ListParams is the input for task.list.
type ListParams struct {
	// Active limits the result to pending and executing tasks.
	Active bool `json:"active,omitempty"`
}

// ListResponse is the result of task.list, ordered by execute_at.
type ListResponse struct {
	Tasks []TaskInfo `json:"tasks"`
}

// TaskInfo is the wire form of a task snapshot.
type TaskInfo struct {
	ID               string `json:"id"`
	Action           string `json:"action"`
	ExecuteAt        int64  `json:"execute_at"`
	Status           task.Status `json:"status"`
	CreatedAt        int64  `json:"created_at"`
	RemainingSeconds int64  `json:"remaining_seconds"`
	FinishedAt       int64  `json:"finished_at,omitempty"`
	Outcome          string `json:"outcome,omitempty"`
	Error            string `json:"error,omitempty"`
}

// NewTaskInfo converts a snapshot to its wire form.
func NewTaskInfo(s task.Snapshot) TaskInfo {
	return TaskInfo{
		ID:               s.ID,
		Action:           string(s.Action),
		ExecuteAt:        s.ExecuteAt,
		Status:           s.Status,
		CreatedAt:        s.CreatedAt,
		RemainingSeconds: s.RemainingSeconds,
		FinishedAt:       s.FinishedAt,
		Outcome:          string(s.Outcome.Kind),
		Error:            s.Outcome.Error,
	}
}

// SettingsInfo is the wire form of settings.
type SettingsInfo struct {
	AutoStart       bool    `json:"auto_start"`
	DefaultAction   string  `json:"default_action"`
	ReminderOffsets []int64 `json:"reminder_offsets"`
	Theme           string  `json:"theme"`
}

// EventParams is the payload of every task.* notification.
type EventParams struct {
	Task TaskInfo `json:"task"`
	// Offset is the reminder offset in seconds, set for task.reminder only.
	Offset int64 `json:"offset,omitempty"`
}

// VersionResponse is the result of system.getVersion.
type VersionResponse struct {
	Version   string `json:"version"`
	Commit    string `json:"commit,omitempty"`
	BuildType string `json:"buildType,omitempty"`
}

// EmptyResponse is returned by methods with no result.
type EmptyResponse struct{}
