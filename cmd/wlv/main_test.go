package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xylographe/SE-WordListValidator/internal/config"
	"github.com/xylographe/SE-WordListValidator/internal/settings"
	"github.com/xylographe/SE-WordListValidator/internal/workcopy"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{SettingsFile: filepath.Join(t.TempDir(), "settings.yaml")}
}

func run(t *testing.T, cfg config.Config, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := runWithArgs(context.Background(), args, &stdout, &stderr, cfg)
	return code, stdout.String(), stderr.String()
}

func TestHelp(t *testing.T) {
	for _, arg := range []string{"-help", "-?"} {
		code, _, stderr := run(t, testConfig(t), arg)
		assert.Equal(t, 0, code, arg)
		assert.Contains(t, stderr, "Usage: wlv -validate", arg)
	}
}

func TestMissingArguments(t *testing.T) {
	code, _, stderr := run(t, testConfig(t))
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Usage:")

	code, _, _ = run(t, testConfig(t), "-bogus")
	assert.Equal(t, 2, code)
}

func TestValidateFolder(t *testing.T) {
	dir := t.TempDir()
	user := filepath.Join(dir, "en_US_user.xml")
	names := filepath.Join(dir, "en_names.xml")
	require.NoError(t, os.WriteFile(user, []byte("<words><word>b</word><word>a</word><word>a</word></words>"), 0o644))
	require.NoError(t, os.WriteFile(names, []byte("<names><name>Al</name></names>\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.xml"), []byte("<x/>"), 0o644))

	cfg := testConfig(t)
	reportPath := filepath.Join(t.TempDir(), "report.md")
	dumpPath := filepath.Join(t.TempDir(), "model.txt")
	code, stdout, _ := run(t, cfg, "-validate", "-verbose", "-no-color", "-workers", "2", "-report", reportPath, "-dump", dumpPath, dir)
	require.Equal(t, 0, code, stdout)

	assert.Contains(t, stdout, "INFO:    Validating folder "+dir)
	assert.Contains(t, stdout, "VERBOSE: line 1 column")
	assert.Contains(t, stdout, "Removed duplicate »a«")
	assert.Contains(t, stdout, "INFO:    Updated en_US_user.xml")
	assert.NotContains(t, stdout, "notes.xml")
	// names before user, following the kind order
	assert.Less(t, strings.Index(stdout, "en_names.xml"), strings.Index(stdout, "en_US_user.xml"))

	got, err := os.ReadFile(user)
	require.NoError(t, err)
	assert.Equal(t, "<words>\n  <word>a</word>\n  <word>b</word>\n</words>\n", string(got))
	assert.NoFileExists(t, workcopy.PathFor(user))

	md, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "2 file(s) validated, 0 failed.")

	dump, err := os.ReadFile(dumpPath)
	require.NoError(t, err)
	assert.Contains(t, string(dump), "# en_names.xml")

	prefs, err := settings.Load(cfg.SettingsFile)
	require.NoError(t, err)
	assert.Equal(t, []string{dir}, prefs.RecentFolders)

	code, stdout, _ = run(t, cfg, "-recent")
	assert.Equal(t, 0, code)
	assert.Equal(t, dir+"\n", stdout)
}

func TestValidateFailures(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "en_OCRFixReplaceList.xml")
	input := "<OCRFixReplaceList><Words/></OCRFixReplaceList>"
	require.NoError(t, os.WriteFile(bad, []byte(input), 0o644))

	code, stdout, _ := run(t, testConfig(t), "-validate", "-no-color", dir, filepath.Join(dir, "missing"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout, "ERROR:   en_OCRFixReplaceList.xml: line 1 column")
	assert.Contains(t, stdout, "ERROR:   Folder not found: ")

	got, err := os.ReadFile(bad)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}
