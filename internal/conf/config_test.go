package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, settings.WebServer.Port)
	assert.Equal(t, 3*time.Second, settings.InstallPrompt.RevealDelay.Std())
	assert.Equal(t, 30*time.Second, settings.Diagnostics.ObservationWindow.Std())
	assert.Equal(t, DefaultRetentionDays, settings.Diagnostics.HistoryRetentionDays)
	assert.Equal(t, DefaultManifestURL, settings.Diagnostics.ManifestURL)
	assert.Equal(t, DefaultCookieName, settings.Session.CookieName)
	assert.Equal(t, DefaultDatabasePath, settings.Database.Path)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
webserver:
  port: 9090
  debug: true
installprompt:
  reveal_delay: 5s
diagnostics:
  observation_window: 10s
  history_retention_days: 7
session:
  cookie_name: portal_sess
`), 0o644))

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, settings.WebServer.Port)
	assert.True(t, settings.WebServer.Debug)
	assert.Equal(t, 5*time.Second, settings.InstallPrompt.RevealDelay.Std())
	assert.Equal(t, 10*time.Second, settings.Diagnostics.ObservationWindow.Std())
	assert.Equal(t, 7, settings.Diagnostics.HistoryRetentionDays)
	assert.Equal(t, "portal_sess", settings.Session.CookieName)
	// Untouched keys keep their defaults.
	assert.Equal(t, DefaultDatabasePath, settings.Database.Path)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("EXAMPORTAL_WEBSERVER_PORT", "9191")
	t.Setenv("EXAMPORTAL_SESSION_COOKIE_NAME", "env_sess")
	t.Setenv("EXAMPORTAL_INSTALLPROMPT_REVEAL_DELAY", "7s")

	settings, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9191, settings.WebServer.Port)
	assert.Equal(t, "env_sess", settings.Session.CookieName)
	assert.Equal(t, 7*time.Second, settings.InstallPrompt.RevealDelay.Std())
	// Keys without an env override keep their defaults.
	assert.Equal(t, DefaultDatabasePath, settings.Database.Path)
}

func TestLoadMissingConfigFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr bool
	}{
		{"defaults are valid", func(*Settings) {}, false},
		{"zero reveal delay is valid", func(s *Settings) { s.InstallPrompt.RevealDelay = 0 }, false},
		{"negative reveal delay", func(s *Settings) { s.InstallPrompt.RevealDelay = Duration(-time.Second) }, true},
		{"port too low", func(s *Settings) { s.WebServer.Port = 0 }, true},
		{"port too high", func(s *Settings) { s.WebServer.Port = 70000 }, true},
		{"zero observation window", func(s *Settings) { s.Diagnostics.ObservationWindow = 0 }, true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			settings := &Settings{
				WebServer:     WebServerSettings{Host: "0.0.0.0", Port: DefaultPort},
				InstallPrompt: InstallPromptSettings{RevealDelay: Duration(DefaultRevealDelay)},
				Diagnostics:   DiagnosticsSettings{ObservationWindow: Duration(DefaultObservationWindow)},
			}
			tt.mutate(settings)
			err := settings.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
