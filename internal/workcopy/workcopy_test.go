package workcopy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOriginal(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "en_US_user.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPathFor(t *testing.T) {
	assert.Equal(t, "/d/en_names.SE\u2011WLV.xml", PathFor("/d/en_names.xml"))
	assert.True(t, IsWorkingCopy("/d/en_names.SE\u2011WLV.xml"))
	assert.False(t, IsWorkingCopy("/d/en_names.xml"))
}

func TestOpenCreatesCopy(t *testing.T) {
	orig := writeOriginal(t, "<words/>")
	c, err := Open(orig)
	require.NoError(t, err)

	data, err := c.Read()
	require.NoError(t, err)
	assert.Equal(t, "<words/>", string(data))

	modified, err := c.Modified()
	require.NoError(t, err)
	assert.False(t, modified)
}

func TestOpenReusesIdenticalCopy(t *testing.T) {
	orig := writeOriginal(t, "<words/>")
	require.NoError(t, os.WriteFile(PathFor(orig), []byte("<words/>"), 0o644))

	_, err := Open(orig)
	assert.NoError(t, err)
}

func TestOpenRefusesStaleCopy(t *testing.T) {
	orig := writeOriginal(t, "<words/>")
	require.NoError(t, os.WriteFile(PathFor(orig), []byte("<words><word>x</word></words>"), 0o644))

	_, err := Open(orig)
	assert.ErrorIs(t, err, ErrStaleCopy)
}

func TestAcceptAndReject(t *testing.T) {
	orig := writeOriginal(t, "<words></words>")
	c, err := Open(orig)
	require.NoError(t, err)

	require.NoError(t, c.Write([]byte("<words/>\n")))
	modified, err := c.Modified()
	require.NoError(t, err)
	assert.True(t, modified)

	require.NoError(t, c.Accept(false))
	got, err := os.ReadFile(orig)
	require.NoError(t, err)
	assert.Equal(t, "<words/>\n", string(got))

	require.NoError(t, c.Reject())
	_, err = os.Stat(c.Path)
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, c.Reject())
}

func TestAcceptDetectsModifiedOriginal(t *testing.T) {
	orig := writeOriginal(t, "<words/>")
	c, err := Open(orig)
	require.NoError(t, err)
	require.NoError(t, c.Write([]byte("<words/>\n")))

	require.NoError(t, os.WriteFile(orig, []byte("<words><word>edited</word></words>"), 0o644))
	assert.ErrorIs(t, c.Accept(false), ErrOriginalModified)

	require.NoError(t, c.Accept(true))
	got, err := os.ReadFile(orig)
	require.NoError(t, err)
	assert.Equal(t, "<words/>\n", string(got))
}
