// Package settings holds the user preferences the daemon reads: the default
// action, reminder offsets, theme and auto-start flag. They live in a YAML
// file that is saved atomically and reloaded when edited by hand.
package settings

import (
	"fmt"
	"slices"
	"strings"

	"github.com/powersched/powersched/internal/task"
)

// MaxReminderOffsets caps the number of reminder offsets.
const MaxReminderOffsets = 16

// Themes lists the accepted theme values.
var Themes = []string{"light", "dark", "system"}

// Settings is the persisted preference set.
type Settings struct {
	AutoStart       bool        `yaml:"auto_start" json:"auto_start"`
	DefaultAction   task.Action `yaml:"default_action" json:"default_action"`
	ReminderOffsets []int64     `yaml:"reminder_offsets" json:"reminder_offsets"`
	Theme           string      `yaml:"theme" json:"theme"`
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		AutoStart:       false,
		DefaultAction:   task.ActionShutdown,
		ReminderOffsets: []int64{300, 60},
		Theme:           "light",
	}
}

// Normalize validates s and returns it in canonical form: lower-case enums,
// offsets deduplicated and sorted from largest to smallest. Empty action and
// theme fall back to the defaults. Errors wrap task.ErrInvalidInput.
func (s Settings) Normalize() (Settings, error) {
	def := Default()
	out := s

	if strings.TrimSpace(string(s.DefaultAction)) == "" {
		out.DefaultAction = def.DefaultAction
	} else {
		a, err := task.ParseAction(string(s.DefaultAction))
		if err != nil {
			return Settings{}, err
		}
		out.DefaultAction = a
	}

	theme := strings.ToLower(strings.TrimSpace(s.Theme))
	if theme == "" {
		theme = def.Theme
	}
	if !slices.Contains(Themes, theme) {
		return Settings{}, fmt.Errorf("%w: unknown theme %q (want one of %s)", task.ErrInvalidInput, s.Theme, strings.Join(Themes, ", "))
	}
	out.Theme = theme

	offsets := make([]int64, 0, len(s.ReminderOffsets))
	for _, o := range s.ReminderOffsets {
		if o <= 0 {
			return Settings{}, fmt.Errorf("%w: reminder offset %d must be positive", task.ErrInvalidInput, o)
		}
		if !slices.Contains(offsets, o) {
			offsets = append(offsets, o)
		}
	}
	if len(offsets) > MaxReminderOffsets {
		return Settings{}, fmt.Errorf("%w: at most %d reminder offsets", task.ErrInvalidInput, MaxReminderOffsets)
	}
	slices.Sort(offsets)
	slices.Reverse(offsets)
	out.ReminderOffsets = offsets
	return out, nil
}

// Equal reports whether a and b hold the same values.
func Equal(a, b Settings) bool {
	return a.AutoStart == b.AutoStart &&
		a.DefaultAction == b.DefaultAction &&
		a.Theme == b.Theme &&
		slices.Equal(a.ReminderOffsets, b.ReminderOffsets)
}
