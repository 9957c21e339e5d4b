package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAppConfig_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := ParseAppConfig()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, ".ctxbroker"), c.RuntimePath)
	assert.Equal(t, 10, c.HistorySize)
	assert.Equal(t, PersistenceJSON, c.Persistence)
	assert.Equal(t, 30*time.Second, c.ExternalAgentTimeout)
	assert.True(t, c.EnableCLI)
	assert.False(t, c.IsTelegramSelected())
	assert.Equal(t, filepath.Join(home, ".ctxbroker", "directory.json"), c.GetDirectoryPath())
}

func TestParseAppConfig_Overrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CTXBROKER_RUNTIME_PATH", dir)
	t.Setenv("HISTORY_SIZE", "3")
	t.Setenv("PERSISTENCE", "sqlite")
	t.Setenv("EXTERNAL_AGENT_TIMEOUT", "5s")

	c, err := ParseAppConfig()
	require.NoError(t, err)

	assert.Equal(t, dir, c.GetRuntimePath())
	assert.Equal(t, 3, c.GetHistorySize())
	assert.Equal(t, PersistenceSQLite, c.Persistence)
	assert.Equal(t, 5*time.Second, c.ExternalAgentTimeout)
	assert.Equal(t, filepath.Join(dir, "ctxbroker.db"), c.GetDatabasePath())
	assert.Equal(t, dir, GetRuntimePath())
}

func TestParseAppConfig_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PERSISTENCE", "redis"},
		{"HISTORY_SIZE", "0"},
		{"HISTORY_SIZE", "many"},
		{"EXTERNAL_AGENT_TIMEOUT", "-1s"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv("CTXBROKER_RUNTIME_PATH", t.TempDir())
			t.Setenv(tt.key, tt.value)

			_, err := ParseAppConfig()
			assert.Error(t, err)
		})
	}
}
