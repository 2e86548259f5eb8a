// internal/config/config.go
//
// Settings for the external programs garfutils drives. Values come from, in
// increasing priority: built-in defaults, <location>/config.yaml, and
// GARFUTILS_* environment variables. Command-line flags are applied by the
// cli package on top of the result.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	defaultViewer        = "swiv"
	defaultEditor        = "nvim"
	defaultKiller        = "pkill --full"
	defaultWindowManager = "hyprctl"
	defaultViewerDelay   = 200 * time.Millisecond
	defaultPollInterval  = 500 * time.Millisecond
)

// Settings selects the programs and timings used by the workflow.
type Settings struct {
	Viewer        string        `yaml:"viewer"         env:"GARFUTILS_VIEWER"`
	Editor        string        `yaml:"editor"         env:"GARFUTILS_EDITOR"`
	Killer        string        `yaml:"killer"         env:"GARFUTILS_KILLER"`
	WindowManager string        `yaml:"window_manager" env:"GARFUTILS_WINDOW_MANAGER"`
	ViewerDelay   time.Duration `yaml:"viewer_delay"   env:"GARFUTILS_VIEWER_DELAY"`
	PollInterval  time.Duration `yaml:"poll_interval"  env:"GARFUTILS_POLL_INTERVAL"`
}

type environment struct {
	Location string `env:"GARFUTILS_LOCATION"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Viewer:        defaultViewer,
		Editor:        defaultEditor,
		Killer:        defaultKiller,
		WindowManager: defaultWindowManager,
		ViewerDelay:   defaultViewerDelay,
		PollInterval:  defaultPollInterval,
	}
}

// LocationOverride returns flagValue if set, else $GARFUTILS_LOCATION.
// An empty result means the platform default should be used.
func LocationOverride(flagValue string) (string, error) {
	if strings.TrimSpace(flagValue) != "" {
		return flagValue, nil
	}
	parsed, err := env.ParseAs[environment]()
	if err != nil {
		return "", fmt.Errorf("config: parse environment: %w", err)
	}
	return parsed.Location, nil
}

// LoadSettings reads config.yaml from the location (if present) and applies
// environment overrides.
func LoadSettings(loc *Location) (Settings, error) {
	s := DefaultSettings()
	if err := s.loadFile(loc.SettingsPath()); err != nil {
		return Settings{}, err
	}
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("config: parse environment: %w", err)
	}
	s.normalize()
	if err := s.validate(); err != nil {
		return Settings{}, fmt.Errorf("config: %w", err)
	}
	return s, nil
}

func (s *Settings) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (s *Settings) normalize() {
	s.Viewer = strings.TrimSpace(s.Viewer)
	s.Editor = strings.TrimSpace(s.Editor)
	s.Killer = strings.TrimSpace(s.Killer)
	s.WindowManager = strings.TrimSpace(s.WindowManager)
	defaults := DefaultSettings()
	if s.Viewer == "" {
		s.Viewer = defaults.Viewer
	}
	if s.Editor == "" {
		s.Editor = defaults.Editor
	}
	if s.Killer == "" {
		s.Killer = defaults.Killer
	}
	if s.WindowManager == "" {
		s.WindowManager = defaults.WindowManager
	}
	if s.PollInterval == 0 {
		s.PollInterval = defaults.PollInterval
	}
}

func (s Settings) validate() error {
	if s.ViewerDelay < 0 {
		return fmt.Errorf("viewer_delay must be >= 0")
	}
	if s.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be > 0")
	}
	return nil
}
