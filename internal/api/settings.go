package api

import (
	"context"

	"github.com/powersched/powersched/internal/settings"
)

// GetSettings reads the settings file. A file that cannot be read or parsed
// yields task.ErrPersistence; the settings in effect are left unchanged.
func (s *Api) GetSettings(_ context.Context) (settings.Settings, error) {
	return s.settings.Load()
}

// SaveSettings validates and persists in. Invalid values yield
// task.ErrInvalidInput, write failures task.ErrPersistence.
func (s *Api) SaveSettings(_ context.Context, in settings.Settings) (settings.Settings, error) {
	out, err := s.settings.Save(in)
	if err != nil {
		return settings.Settings{}, err
	}
	s.log.Info("api: settings saved (default action %s, %d reminders, theme %s)",
		out.DefaultAction, len(out.ReminderOffsets), out.Theme)
	return out, nil
}
