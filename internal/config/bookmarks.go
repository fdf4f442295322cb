// internal/config/bookmarks.go

package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dxcluster/internal/apperr"
	"dxcluster/internal/models"

	"gopkg.in/ini.v1"
)

// Bookmark fields inside each section of the bookmarks file.
const (
	keyHost     = "host"
	keyPort     = "port"
	keyUsername = "username"
	keyPassword = "password"
)

// BookmarkStore keeps connection profiles in an INI file, one section per
// bookmark keyed by the profile identity. Passwords are stored in clear text
// so the file stays readable by older installs; it is written 0600.
//
// Every call reads the file again and Put rewrites it whole.
type BookmarkStore struct {
	path   string
	logger *slog.Logger
}

// NewBookmarkStore creates a store backed by path. An empty path selects
// DefaultBookmarksPath, falling back to the working directory.
func NewBookmarkStore(path string, logger *slog.Logger) *BookmarkStore {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		if p, err := DefaultBookmarksPath(); err == nil {
			path = p
		} else {
			path = DefaultBookmarksFileName
		}
	}
	return &BookmarkStore{
		path:   path,
		logger: logger.With("component", "bookmarks"),
	}
}

// Path returns the backing file path.
func (s *BookmarkStore) Path() string {
	return s.path
}

func loadOptions() ini.LoadOptions {
	// Passwords may contain '#' or ';'.
	return ini.LoadOptions{IgnoreInlineComment: true}
}

// quoteValue wraps v in triple quotes when the parser would otherwise strip
// its surrounding quotes or whitespace, or read a trailing backslash as a
// line continuation. Values with a backtick or newline are triple-quoted by
// the encoder itself.
func quoteValue(v string) string {
	if v == "" || strings.ContainsAny(v, "`\n") {
		return v
	}
	first, last := v[0], v[len(v)-1]
	if strings.TrimSpace(v) != v || first == '"' || first == '\'' || last == '"' || last == '\'' || last == '\\' {
		return `"""` + v + `"""`
	}
	return v
}

// read parses the backing file. found is false when the file does not exist.
func (s *BookmarkStore) read() (cfg *ini.File, found bool, err error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ini.Empty(loadOptions()), false, nil
		}
		return nil, false, fmt.Errorf("read bookmarks %s: %w", s.path, err)
	}
	cfg, err = ini.LoadSources(loadOptions(), data)
	if err != nil {
		return nil, true, fmt.Errorf("parse bookmarks %s: %w", s.path, err)
	}
	return cfg, true, nil
}

func sectionKeys(cfg *ini.File) []string {
	var keys []string
	for _, name := range cfg.SectionStrings() {
		if name == ini.DefaultSection {
			continue
		}
		keys = append(keys, name)
	}
	return keys
}

// Load returns the bookmark keys in file order. A missing file is not an
// error: it yields no keys and found=false.
func (s *BookmarkStore) Load() (keys []string, found bool, err error) {
	cfg, found, err := s.read()
	if err != nil {
		return nil, found, err
	}
	return sectionKeys(cfg), found, nil
}

// Get resolves a bookmark key back into a profile.
func (s *BookmarkStore) Get(key string) (models.Profile, error) {
	cfg, found, err := s.read()
	if err != nil {
		return models.Profile{}, err
	}
	if !found {
		return models.Profile{}, apperr.New(apperr.NotFoundError, fmt.Sprintf("bookmark %q not found", key), os.ErrNotExist)
	}
	sec, err := cfg.GetSection(key)
	if err != nil || key == "" || key == ini.DefaultSection {
		return models.Profile{}, apperr.New(apperr.NotFoundError, fmt.Sprintf("bookmark %q not found", key), nil)
	}

	port, err := models.ParsePort(sec.Key(keyPort).String())
	if err != nil {
		return models.Profile{}, fmt.Errorf("bookmark %q: %w", key, err)
	}
	return models.Profile{
		Host:     sec.Key(keyHost).String(),
		Port:     port,
		Username: sec.Key(keyUsername).String(),
		Password: sec.Key(keyPassword).String(),
	}, nil
}

// Put stores p under its identity key, replacing any bookmark with the same
// key, and returns the key.
func (s *BookmarkStore) Put(p models.Profile) (string, error) {
	p = p.WithDefaults()
	if err := p.Validate(); err != nil {
		return "", err
	}
	key := p.Identity()
	s.logger.Debug("saving bookmark", "key", key)

	cfg, _, err := s.read()
	if err != nil {
		return "", apperr.New(apperr.PersistError, "bookmark could not be saved", err)
	}

	if _, err := cfg.GetSection(key); err == nil {
		s.logger.Warn("bookmark already exists, overwriting existing details", "key", key)
	}
	sec, err := cfg.NewSection(key)
	if err != nil {
		return "", apperr.New(apperr.PersistError, "bookmark could not be saved", err)
	}
	sec.Key(keyHost).SetValue(quoteValue(p.Host))
	sec.Key(keyPort).SetValue(fmt.Sprintf("%d", p.Port))
	sec.Key(keyUsername).SetValue(quoteValue(p.Username))
	sec.Key(keyPassword).SetValue(quoteValue(p.Password))

	if err := s.write(cfg); err != nil {
		return "", apperr.New(apperr.PersistError, "bookmark could not be saved", err)
	}
	return key, nil
}

// write replaces the backing file through a temp file and rename.
func (s *BookmarkStore) write(cfg *ini.File) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, DefaultDirPerms); err != nil {
		return fmt.Errorf("create bookmarks dir %s: %w", dir, err)
	}

	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return fmt.Errorf("encode bookmarks: %w", err)
	}

	tmp := s.path + fmt.Sprintf(".tmp-%d-%d", os.Getpid(), time.Now().UnixNano())
	if err := os.WriteFile(tmp, buf.Bytes(), DefaultFilePerms); err != nil {
		return fmt.Errorf("write temp bookmarks %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic rename to %s: %w", s.path, err)
	}
	return nil
}
