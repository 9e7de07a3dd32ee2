package settings

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFile(t *testing.T) {
	s, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	require.NoError(t, err)
	assert.Empty(t, s.RecentFolders)
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg", "settings.yaml")
	s, err := Load(path)
	require.NoError(t, err)
	s.AddRecent("/a")
	s.AddRecent("/b")
	s.AddRecent("/a")
	require.NoError(t, s.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "recent_folders:")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"/a", "/b"}, loaded.RecentFolders)
}

func TestAddRecentIsBounded(t *testing.T) {
	s := &Settings{}
	for i := 0; i < MaxRecent+5; i++ {
		s.AddRecent(fmt.Sprintf("/folder/%d", i))
	}
	require.Len(t, s.RecentFolders, MaxRecent)
	assert.Equal(t, fmt.Sprintf("/folder/%d", MaxRecent+4), s.RecentFolders[0])
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("recent_folders: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
