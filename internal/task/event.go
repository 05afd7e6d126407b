package task

// EventKind names a task lifecycle notification.
type EventKind string

const (
	EventCreated   EventKind = "task.created"
	EventCancelled EventKind = "task.cancelled"
	EventExecuting EventKind = "task.executing"
	EventCompleted EventKind = "task.completed"
	EventReminder  EventKind = "task.reminder"
)

// Event is published whenever a task changes state or a reminder is due.
type Event struct {
	Kind EventKind
	Task Snapshot
	// Offset is the reminder offset in seconds. Zero for other kinds.
	Offset int64
}

// Publisher receives task events. Implementations must not block.
type Publisher interface {
	Publish(Event)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(Event)

func (f PublisherFunc) Publish(e Event) { f(e) }

// Publishers fans an event out to several publishers.
type Publishers []Publisher

func (ps Publishers) Publish(e Event) {
	for _, p := range ps {
		if p != nil {
			p.Publish(e)
		}
	}
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}
