// Package api is the command boundary of the daemon. Every external request,
// whatever transport carried it, becomes one of these calls on the task store
// or the settings manager. No scheduling logic lives here beyond input
// validation and default-action substitution.
package api

import (
	"github.com/powersched/powersched/internal/settings"
	"github.com/powersched/powersched/internal/store"
	"github.com/powersched/powersched/internal/task"
	"github.com/powersched/powersched/pkg/logger"
)

type Api struct {
	log      logger.Logger
	store    *store.Store
	settings *settings.Manager
	events   task.Publisher
}

// NewApi returns the command boundary over st and sm. Task lifecycle events
// produced by callers are published to events.
func NewApi(l logger.Logger, st *store.Store, sm *settings.Manager, events task.Publisher) *Api {
	if l == nil {
		l = logger.NewNopLogger()
	}
	if events == nil {
		events = task.NopPublisher{}
	}
	return &Api{
		log:      l,
		store:    st,
		settings: sm,
		events:   events,
	}
}
