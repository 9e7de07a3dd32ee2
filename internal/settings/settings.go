// Package settings persists user preferences between runs.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MaxRecent bounds the recent folder list.
const MaxRecent = 10

type Settings struct {
	RecentFolders []string `yaml:"recent_folders"`

	path string
}

// Load reads the settings file at path. A missing file yields empty settings.
func Load(path string) (*Settings, error) {
	s := &Settings{path: path}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if len(s.RecentFolders) > MaxRecent {
		s.RecentFolders = s.RecentFolders[:MaxRecent]
	}
	return s, nil
}

// Path returns the file the settings are saved to.
func (s *Settings) Path() string {
	return s.path
}

// AddRecent moves folder to the front of the recent list.
func (s *Settings) AddRecent(folder string) {
	if abs, err := filepath.Abs(folder); err == nil {
		folder = abs
	}
	recent := make([]string, 0, MaxRecent)
	recent = append(recent, folder)
	for _, f := range s.RecentFolders {
		if f != folder && len(recent) < MaxRecent {
			recent = append(recent, f)
		}
	}
	s.RecentFolders = recent
}

// Save writes the settings, creating the parent directory when needed.
func (s *Settings) Save() error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
