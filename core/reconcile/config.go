package reconcile

import "fmt"

// Config holds the reconciler settings of the map section.
type Config struct {
	// MatchMode is "id" (document ID) or "coordinate" (legacy exact match).
	MatchMode string `mapstructure:"match_mode" default:"id"`
	// EventBuffer is the capacity of the channel between listener and reconciler.
	EventBuffer int `mapstructure:"event_buffer" default:"64"`
}

// ParseMatchMode converts a configuration value into a MatchMode.
func ParseMatchMode(s string) (MatchMode, error) {
	switch s {
	case "", "id":
		return MatchByID, nil
	case "coordinate":
		return MatchByCoordinate, nil
	default:
		return MatchByID, fmt.Errorf("unknown match mode %q", s)
	}
}

// Buffer returns the event channel capacity.
func (c Config) Buffer() int {
	if c.EventBuffer < 0 {
		return 0
	}
	return c.EventBuffer
}
