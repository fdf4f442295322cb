// internal/config/paths.go

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	DefaultConfigDirName     = "dxcluster"
	DefaultSettingsFileName  = "config.yaml"
	DefaultBookmarksFileName = "bookmarks.ini"
	DefaultLogFileName       = "dxcluster.log"
	DefaultFilePerms         = 0o600
	DefaultDirPerms          = 0o700
)

// DefaultConfigDir returns the per-user configuration directory:
// $XDG_CONFIG_HOME/dxcluster, falling back to ~/.config/dxcluster.
// The directory is not created here.
func DefaultConfigDir() (string, error) {
	if xdg := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); xdg != "" {
		return filepath.Join(xdg, DefaultConfigDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not get home directory: %w", err)
	}
	return filepath.Join(home, ".config", DefaultConfigDirName), nil
}

// DefaultSettingsPath returns the path of the YAML settings file.
func DefaultSettingsPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultSettingsFileName), nil
}

// DefaultBookmarksPath returns the path of the bookmarks file.
func DefaultBookmarksPath() (string, error) {
	dir, err := DefaultConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, DefaultBookmarksFileName), nil
}
