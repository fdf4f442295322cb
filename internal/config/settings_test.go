package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSettings(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadSettings_MissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, time.Second, s.PollInterval())
	assert.Equal(t, 10*time.Second, s.DialTimeout())
	assert.Equal(t, 10*time.Second, s.PromptTimeout())
	assert.Equal(t, 5*time.Second, s.WriteTimeout())
	assert.Equal(t, "ascii", s.Charset)
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, path, s.Path())
}

func TestLoadSettings_FileOverridesDefaults(t *testing.T) {
	path := writeSettings(t, "poll_interval_ms: 250\ncharset: utf-8\nlog_level: debug\n")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, s.PollInterval())
	assert.Equal(t, "utf-8", s.Charset)
	assert.Equal(t, "debug", s.LogLevel)
	// Untouched keys keep their defaults.
	assert.Equal(t, 10*time.Second, s.DialTimeout())
}

func TestLoadSettings_EnvOverrides(t *testing.T) {
	path := writeSettings(t, "charset: latin1\n")
	t.Setenv("DXCLUSTER_CHARSET", "cp1252")
	t.Setenv("DXCLUSTER_LOG_LEVEL", "warn")
	t.Setenv("DXCLUSTER_POLL_INTERVAL_MS", "500")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "cp1252", s.Charset)
	assert.Equal(t, "warn", s.LogLevel)
	assert.Equal(t, 500*time.Millisecond, s.PollInterval())
}

func TestLoadSettings_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{name: "zero poll interval", content: "poll_interval_ms: 0\n", wantErr: "poll_interval_ms"},
		{name: "negative dial timeout", content: "dial_timeout_ms: -1\n", wantErr: "dial_timeout_ms"},
		{name: "unknown charset", content: "charset: ebcdic\n", wantErr: "unknown charset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSettings(writeSettings(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadSettings_InvalidYAML(t *testing.T) {
	_, err := LoadSettings(writeSettings(t, "poll_interval_ms: [\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse settings")
}

func TestSettings_FilePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("bookmarks_file: marks.ini\nlog_file: /var/tmp/dx.log\n"), 0o600))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "marks.ini"), s.BookmarksPath())
	assert.Equal(t, "/var/tmp/dx.log", s.LogFilePath())

	d := DefaultSettings()
	d.path = path
	assert.Equal(t, filepath.Join(dir, DefaultBookmarksFileName), d.BookmarksPath())
	assert.Equal(t, filepath.Join(dir, DefaultLogFileName), d.LogFilePath())
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir, err := DefaultConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "dxcluster"), dir)

	p, err := DefaultSettingsPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(xdg, "dxcluster", "config.yaml"), p)
}
