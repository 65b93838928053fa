// Package conf loads and holds the exam portal configuration.
package conf

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings is the root configuration for the exam portal server.
type Settings struct {
	WebServer     WebServerSettings     `mapstructure:"webserver" yaml:"webserver"`
	InstallPrompt InstallPromptSettings `mapstructure:"installprompt" yaml:"installprompt"`
	Diagnostics   DiagnosticsSettings   `mapstructure:"diagnostics" yaml:"diagnostics"`
	Session       SessionSettings       `mapstructure:"session" yaml:"session"`
	Database      DatabaseSettings      `mapstructure:"database" yaml:"database"`
}

// WebServerSettings configures the HTTP listener.
type WebServerSettings struct {
	Host  string `mapstructure:"host" yaml:"host"`
	Port  int    `mapstructure:"port" yaml:"port"`
	Debug bool   `mapstructure:"debug" yaml:"debug"`
}

// InstallPromptSettings configures the install prompt controller.
type InstallPromptSettings struct {
	// RevealDelay is how long after an invitation arrives the custom
	// prompt becomes visible, preconditions permitting.
	RevealDelay Duration `mapstructure:"reveal_delay" yaml:"reveal_delay"`
}

// DiagnosticsSettings configures the capability probe suite.
type DiagnosticsSettings struct {
	// ObservationWindow bounds how long the network status probe keeps its
	// transition listeners registered.
	ObservationWindow Duration `mapstructure:"observation_window" yaml:"observation_window"`
	// HistoryRetentionDays controls periodic probe run history cleanup.
	// Zero disables cleanup.
	HistoryRetentionDays int `mapstructure:"history_retention_days" yaml:"history_retention_days"`
	// ManifestURL is the well-known path the manifest probe fetches.
	ManifestURL string `mapstructure:"manifest_url" yaml:"manifest_url"`
	// ScratchDir is where the transient store probe creates throwaway databases.
	ScratchDir string `mapstructure:"scratch_dir" yaml:"scratch_dir"`
}

// SessionSettings configures the cookie session store.
type SessionSettings struct {
	Secret     string `mapstructure:"secret" yaml:"secret"`
	CookieName string `mapstructure:"cookie_name" yaml:"cookie_name"`
}

// DatabaseSettings configures the sqlite datastore.
type DatabaseSettings struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// Default values applied when the config file omits a key.
const (
	DefaultPort              = 8085
	DefaultRevealDelay       = 3 * time.Second
	DefaultObservationWindow = 30 * time.Second
	DefaultRetentionDays     = 30
	DefaultManifestURL       = "/manifest.webmanifest"
	DefaultCookieName        = "examportal_session"
	DefaultDatabasePath      = "examportal.db"
)

// Load reads configuration from the given file (optional) and EXAMPORTAL_*
// environment variables, applying defaults for anything unset.
func Load(configPath string) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix("examportal")
	// Nested keys use dots; shells cannot export those, so
	// EXAMPORTAL_WEBSERVER_PORT must map to webserver.port.
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("webserver.host", "0.0.0.0")
	v.SetDefault("webserver.port", DefaultPort)
	v.SetDefault("webserver.debug", false)
	v.SetDefault("installprompt.reveal_delay", DefaultRevealDelay.String())
	v.SetDefault("diagnostics.observation_window", DefaultObservationWindow.String())
	v.SetDefault("diagnostics.history_retention_days", DefaultRetentionDays)
	v.SetDefault("diagnostics.manifest_url", DefaultManifestURL)
	v.SetDefault("diagnostics.scratch_dir", "")
	v.SetDefault("session.cookie_name", DefaultCookieName)
	v.SetDefault("database.path", DefaultDatabasePath)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configPath, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings, viper.DecodeHook(DurationDecodeHook())); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Validate checks settings for values that cannot be defaulted sensibly.
func (s *Settings) Validate() error {
	if s.WebServer.Port < 1 || s.WebServer.Port > 65535 {
		return fmt.Errorf("invalid webserver port %d", s.WebServer.Port)
	}
	if s.InstallPrompt.RevealDelay < 0 {
		return fmt.Errorf("invalid reveal delay %s", s.InstallPrompt.RevealDelay.Std())
	}
	if s.Diagnostics.ObservationWindow <= 0 {
		return fmt.Errorf("invalid observation window %s", s.Diagnostics.ObservationWindow.Std())
	}
	return nil
}
