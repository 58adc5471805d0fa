package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"CRUSADER_DB_PATH", "CRUSADER_DEBUG", "CRUSADER_HINTS"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	t.Setenv("HOME", t.TempDir())

	s, err := Load()
	require.NoError(t, err)

	assert.False(t, s.Debug)
	assert.True(t, s.Hints)
	assert.True(t, strings.HasSuffix(s.DBPath, filepath.Join(".crusader", "database.db")),
		"unexpected default db path: %s", s.DBPath)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("CRUSADER_DB_PATH", "/tmp/crusader-test.db")
	t.Setenv("CRUSADER_DEBUG", "true")
	t.Setenv("CRUSADER_HINTS", "false")

	s, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/crusader-test.db", s.DBPath)
	assert.True(t, s.Debug)
	assert.False(t, s.Hints)
}
