package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Settings are the env-driven knobs. Every field has a sane default so the
// bot runs with an empty environment.
type Settings struct {
	Host         string        `envconfig:"TTT_HOST" default:"localhost"`
	Port         int           `envconfig:"TTT_PORT" default:"8080"`
	TimeLimit    time.Duration `envconfig:"TTT_TIME_LIMIT" default:"5m"`
	PollInterval time.Duration `envconfig:"TTT_POLL_INTERVAL" default:"1s"`
	Cooldown     time.Duration `envconfig:"TTT_COMMAND_COOLDOWN" default:"2s"`
	ChannelsFile string        `envconfig:"TTT_CHANNELS_FILE" default:"channels.json"`
	Debug        bool          `envconfig:"TTT_DEBUG" default:"false"`
}

// LoadSettings reads Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return Settings{}, fmt.Errorf("process settings: %w", err)
	}
	if s.TimeLimit <= 0 {
		return Settings{}, fmt.Errorf("TTT_TIME_LIMIT must be positive, got %s", s.TimeLimit)
	}
	if s.PollInterval <= 0 {
		return Settings{}, fmt.Errorf("TTT_POLL_INTERVAL must be positive, got %s", s.PollInterval)
	}
	return s, nil
}

// Addr returns the host:port the HTTP server binds to.
func (s Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
