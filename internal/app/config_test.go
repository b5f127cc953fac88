package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `log:
  level: "debug"
  production: false
database:
  type: "sqlite"
  path: "storage/test/notes.sqlite3"
sync:
  enabled: true
  base-url: "https://api.propline.test"
  timeout: "30s"
app:
  save-debounce-delay: "500ms"
  orphan-prune-enable: true
`

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeTestConfig(t, testConfigYAML)

	cfg, realpath, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, path, realpath)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.False(t, cfg.Log.Production)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "storage/test/notes.sqlite3", cfg.Database.Path)
	assert.Equal(t, "https://api.propline.test", cfg.Sync.BaseURL)
	assert.True(t, cfg.App.OrphanPruneEnable)

	// 未出现在文件中的字段取默认值
	assert.Equal(t, 10, cfg.Database.MaxIdleConns)
	assert.Equal(t, 100, cfg.Database.MaxOpenConns)
	assert.Equal(t, "0 3 * * *", cfg.App.OrphanPruneSpec)

	assert.Equal(t, 500*time.Millisecond, cfg.GetDebounceConfig().Delay)
	assert.Equal(t, 30*time.Second, cfg.GetSyncTimeout())
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeTestConfig(t, "log: [unclosed")
	_, _, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.True(t, cfg.Log.Production)
	assert.True(t, cfg.Sync.Enabled)
	assert.Equal(t, 2*time.Second, cfg.GetDebounceConfig().Delay)
	assert.Equal(t, 15*time.Second, cfg.GetSyncTimeout())
	assert.False(t, cfg.App.OrphanPruneEnable)
}

func TestSaveRoundTrip(t *testing.T) {
	path := writeTestConfig(t, testConfigYAML)

	cfg, _, err := LoadConfig(path)
	require.NoError(t, err)

	cfg.Sync.BaseURL = "https://api.propline.example"
	require.NoError(t, cfg.Save())

	reloaded, _, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "https://api.propline.example", reloaded.Sync.BaseURL)
}
