package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	for _, k := range []string{"ORGADMIN_DATA_SOURCE", "ORGADMIN_DOWNLOAD_DIR", "ORGADMIN_HISTORY_DB", "ORGADMIN_LOG_LEVEL", "ORGADMIN_ADDR", "ORGADMIN_FETCH_TIMEOUT", "ORGADMIN_DEFER_NESTED_EXPORT", "ORGADMIN_UNIQUE_IDS"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	c, err := Load()
	require.NoError(t, err)

	home, _ := os.UserHomeDir()
	assert.Equal(t, "./data", c.DataSource)
	assert.Equal(t, filepath.Join(home, "Downloads"), c.DownloadDir)
	assert.Equal(t, filepath.Join(home, ".orgadmin", "history.db"), c.HistoryDB)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "127.0.0.1:8080", c.Addr)
	assert.Equal(t, 10*time.Second, c.FetchTimeout)
	assert.False(t, c.DeferNestedExport)
	assert.False(t, c.UniqueIDs)
	assert.NoError(t, c.Validate())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("ORGADMIN_DATA_SOURCE", "https://example.test/data")
	t.Setenv("ORGADMIN_DOWNLOAD_DIR", "/tmp/out")
	t.Setenv("ORGADMIN_FETCH_TIMEOUT", "3s")
	t.Setenv("ORGADMIN_DEFER_NESTED_EXPORT", "true")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://example.test/data", c.DataSource)
	assert.Equal(t, "/tmp/out", c.DownloadDir)
	assert.Equal(t, 3*time.Second, c.FetchTimeout)
	assert.True(t, c.DeferNestedExport)
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("ORGADMIN_LOG_LEVEL", "")
	os.Unsetenv("ORGADMIN_LOG_LEVEL")

	f := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(f, []byte("ORGADMIN_LOG_LEVEL=debug\n"), 0644))

	c, err := Load(f, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Setenv("ORGADMIN_FETCH_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := Config{DataSource: "./data", DownloadDir: "./out", FetchTimeout: time.Second}
	require.NoError(t, valid.Validate())

	c := valid
	c.DataSource = ""
	assert.Error(t, c.Validate())

	c = valid
	c.FetchTimeout = 0
	assert.Error(t, c.Validate())

	c = valid
	c.DownloadDir = "data/"
	assert.ErrorContains(t, c.Validate(), "must differ from the data source")
}
