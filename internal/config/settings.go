// internal/config/settings.go

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the YAML settings file.
//
// Example:
//
//	poll_interval_ms: 1000
//	charset: utf-8
//	log_level: debug
type Settings struct {
	PollIntervalMS  int    `yaml:"poll_interval_ms"`
	DialTimeoutMS   int    `yaml:"dial_timeout_ms"`
	PromptTimeoutMS int    `yaml:"prompt_timeout_ms"`
	WriteTimeoutMS  int    `yaml:"write_timeout_ms"`
	Charset         string `yaml:"charset"`
	LogLevel        string `yaml:"log_level"`
	LogFile         string `yaml:"log_file,omitempty"`
	BookmarksFile   string `yaml:"bookmarks_file,omitempty"`

	// path is where the settings were loaded from; relative file names
	// resolve against its directory.
	path string
}

// Charsets accepted for decoding server output.
var Charsets = []string{"ascii", "utf-8", "latin1", "cp1252"}

// DefaultSettings returns the built-in settings.
func DefaultSettings() *Settings {
	return &Settings{
		PollIntervalMS:  1000,
		DialTimeoutMS:   10000,
		PromptTimeoutMS: 10000,
		WriteTimeoutMS:  5000,
		Charset:         "ascii",
		LogLevel:        "info",
	}
}

// LoadSettings reads path (DefaultSettingsPath when empty), applies
// environment overrides and validates the result. A missing file yields the
// defaults.
func LoadSettings(path string) (*Settings, error) {
	if strings.TrimSpace(path) == "" {
		var err error
		path, err = DefaultSettingsPath()
		if err != nil {
			return nil, err
		}
	}

	s := DefaultSettings()
	s.path = path

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("parse settings %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	s.applyEnvOverrides()

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("settings validation failed: %w", err)
	}
	return s, nil
}

func (s *Settings) applyEnvOverrides() {
	if level := strings.TrimSpace(os.Getenv("DXCLUSTER_LOG_LEVEL")); level != "" {
		s.LogLevel = level
	}
	if charset := strings.TrimSpace(os.Getenv("DXCLUSTER_CHARSET")); charset != "" {
		s.Charset = charset
	}
	if v := strings.TrimSpace(os.Getenv("DXCLUSTER_POLL_INTERVAL_MS")); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			s.PollIntervalMS = ms
		}
	}
}

// Validate checks intervals and the charset name.
func (s *Settings) Validate() error {
	positive := []struct {
		name  string
		value int
	}{
		{"poll_interval_ms", s.PollIntervalMS},
		{"dial_timeout_ms", s.DialTimeoutMS},
		{"prompt_timeout_ms", s.PromptTimeoutMS},
		{"write_timeout_ms", s.WriteTimeoutMS},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", p.name, p.value)
		}
	}

	known := false
	for _, c := range Charsets {
		if strings.EqualFold(s.Charset, c) {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("unknown charset %q (want one of %s)", s.Charset, strings.Join(Charsets, ", "))
	}
	return nil
}

func (s *Settings) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMS) * time.Millisecond
}

func (s *Settings) DialTimeout() time.Duration {
	return time.Duration(s.DialTimeoutMS) * time.Millisecond
}

func (s *Settings) PromptTimeout() time.Duration {
	return time.Duration(s.PromptTimeoutMS) * time.Millisecond
}

func (s *Settings) WriteTimeout() time.Duration {
	return time.Duration(s.WriteTimeoutMS) * time.Millisecond
}

// Path returns the file the settings were loaded from.
func (s *Settings) Path() string {
	return s.path
}

func (s *Settings) dir() string {
	if s.path != "" {
		return filepath.Dir(s.path)
	}
	if d, err := DefaultConfigDir(); err == nil {
		return d
	}
	return "."
}

func (s *Settings) resolve(name, fallback string) string {
	if name == "" {
		name = fallback
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(s.dir(), name)
}

// LogFilePath returns the log file location, next to the settings file
// unless configured otherwise.
func (s *Settings) LogFilePath() string {
	return s.resolve(s.LogFile, DefaultLogFileName)
}

// BookmarksPath returns the bookmarks file location.
func (s *Settings) BookmarksPath() string {
	return s.resolve(s.BookmarksFile, DefaultBookmarksFileName)
}
