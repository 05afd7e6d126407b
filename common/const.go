package common

// Method is a JSON-RPC method name served by the daemon.
type Method string

const (
	MethodTaskCreate   Method = "task.create"
	MethodTaskList     Method = "task.list"
	MethodTaskGet      Method = "task.get"
	MethodTaskCancel   Method = "task.cancel"
	MethodSettingsGet  Method = "settings.get"
	MethodSettingsSave Method = "settings.save"
	MethodVersion      Method = "system.getVersion"
)

// Notification method names pushed to connected clients.
const (
	NotifyTaskCreated   = "task.created"
	NotifyTaskCancelled = "task.cancelled"
	NotifyTaskExecuting = "task.executing"
	NotifyTaskCompleted = "task.completed"
	NotifyTaskReminder  = "task.reminder"
)

// JSON-RPC error codes. InvalidParams is the standard code; the rest are
// in the server-defined range.
const (
	CodeInvalidInput = -32602
	CodeNotFound     = -32001
	CodeInvalidState = -32002
	CodeInvalidTime  = -32003
	CodePersistence  = -32004
)

const (
	// AppName names the binary, the socket and the config directory.
	AppName = "powersched"

	// TCPHost is the loopback address used for the HTTP endpoint by default.
	TCPHost = "127.0.0.1"
)
