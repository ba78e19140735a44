package config_test

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cursorcrm/birthday-office/internal/config"
)

func TestLoad_MissingFileWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "birthday-office.yaml")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, config.DefaultListenAddr, cfg.Listen)
	assert.Equal(t, config.DefaultRefreshCron, cfg.RefreshCron)
	assert.Equal(t, config.DefaultLanguage, cfg.Language)
	assert.Equal(t, config.SortAsc, cfg.SortOrder)

	info, err := os.Stat(path)
	require.NoError(t, err, "first run must leave a config template behind")
	if runtime.GOOS != "windows" {
		assert.Equal(t, config.FilePermUserRW, info.Mode().Perm())
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	_, err := config.Load("")
	assert.Error(t, err)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "birthday-office.yaml")

	want := &config.FileConfig{
		Listen: "0.0.0.0:9090",
		Registry: config.RegistryConfig{
			BaseURL: "https://xyz.supabase.co",
			User:    "back-office",
		},
		RefreshCron: "0 * * * *",
		Language:    "en",
		SortOrder:   config.SortDesc,
	}
	require.NoError(t, config.Save(path, want))

	got, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestLoad_NormalizesPartialConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	require.NoError(t, os.WriteFile(path, []byte("registry:\n  base_url: https://xyz.supabase.co\n"), 0600))

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://xyz.supabase.co", cfg.Registry.BaseURL)
	assert.Equal(t, config.DefaultListenAddr, cfg.Listen, "missing fields fall back to defaults")
	assert.Equal(t, config.DefaultLanguage, cfg.Language)
	assert.Equal(t, config.SortAsc, cfg.SortOrder)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad-values.yaml")
	require.NoError(t, os.WriteFile(path, []byte("language: fr\nsort_order: sideways\n"), 0600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultLanguage, cfg.Language)
	assert.Equal(t, config.SortAsc, cfg.SortOrder)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unclosed\n"), 0600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestSave_NilConfig(t *testing.T) {
	err := config.Save(filepath.Join(t.TempDir(), "x.yaml"), nil)
	assert.Error(t, err)
}
