package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/asset-store-fs/internal/domain"
)

func TestLoadConfig_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9191
asset_store:
  base_dir: ` + filepath.Join(dir, "contents") + `
  pattern: /:uid/:filename
  layout: legacy_flat
  skip_existing: true
  asset_folder_prefix_key: v3/assets
queue:
  database_path: ` + filepath.Join(dir, "assets.db") + `
  check_interval: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9191, config.Server.Port)
	assert.Equal(t, filepath.Join(dir, "contents"), config.AssetStore.BaseDir)
	assert.Equal(t, "/:uid/:filename", config.AssetStore.Pattern)
	assert.Equal(t, domain.LayoutLegacyFlat, config.AssetStore.Layout)
	assert.True(t, config.AssetStore.SkipExisting)
	assert.Equal(t, "v3/assets", config.AssetStore.AssetFolderPrefixKey)
	assert.Equal(t, 2*time.Second, config.Queue.CheckInterval)
	// untouched sections keep defaults
	assert.Equal(t, "info", config.Logging.Level)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 9191\n"), 0644))
	t.Setenv("ASSETSTORE_SERVER_PORT", "9292")
	t.Setenv("ASSETSTORE_ASSET_STORE_BASE_DIR", filepath.Join(dir, "env-contents"))

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9292, config.Server.Port)
	assert.Equal(t, filepath.Join(dir, "env-contents"), config.AssetStore.BaseDir)
}

func TestLoadConfig_InvalidPattern(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("asset_store:\n  pattern: /static/files\n"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidPattern)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("ASSET_ROOT", "/srv/assets")

	assert.Equal(t, filepath.Join(home, "data"), expandPath("~/data"))
	assert.Equal(t, home+"/.asset-store/assets.db", expandPath("$HOME/.asset-store/assets.db"))
	assert.Equal(t, "/srv/assets/en-us", expandPath("$ASSET_ROOT/en-us"))
	assert.Equal(t, "", expandPath(""))
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*domain.Config)
		wantErr bool
	}{
		{"defaults", func(c *domain.Config) {}, false},
		{"bad port", func(c *domain.Config) { c.Server.Port = 0 }, true},
		{"no base dir", func(c *domain.Config) { c.AssetStore.BaseDir = "" }, true},
		{"unknown layout", func(c *domain.Config) { c.AssetStore.Layout = "nested" }, true},
		{"no database", func(c *domain.Config) { c.Queue.DatabasePath = "" }, true},
		{"zero interval", func(c *domain.Config) { c.Queue.CheckInterval = 0 }, true},
		{"mirror without bucket", func(c *domain.Config) { c.Mirror.Enabled = true }, true},
		{"mirror with bucket", func(c *domain.Config) {
			c.Mirror.Enabled = true
			c.Mirror.Bucket = "assets"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := domain.DefaultConfig()
			tt.modify(config)
			err := validateConfig(config)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	config := domain.DefaultConfig()
	config.AssetStore.BaseDir = filepath.Join(t.TempDir(), "contents")
	config.Queue.DatabasePath = filepath.Join(t.TempDir(), "assets.db")
	config.Server.Port = 9393

	require.NoError(t, SaveConfig(config, path))
	assert.FileExists(t, path)

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 9393, loaded.Server.Port)
	assert.Equal(t, config.AssetStore.BaseDir, loaded.AssetStore.BaseDir)
}
