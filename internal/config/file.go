package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// RegistryConfig describes the hosted client-registry backend this process
// pulls its roster from.
type RegistryConfig struct {
	// BaseURL is the root of the hosted backend (e.g. "https://xyz.supabase.co").
	BaseURL string `yaml:"base_url"`

	// User is an optional account identifier. The matching service key is
	// never stored in this file; it lives in the OS keyring (see registry.Credentials).
	User string `yaml:"user"`
}

// FileConfig is the top-level YAML application configuration.
type FileConfig struct {
	// Listen is the HTTP listen address for the back-office API.
	Listen string `yaml:"listen"`

	// Registry points at the client roster source.
	Registry RegistryConfig `yaml:"registry"`

	// RefreshCron is a cron-style schedule (e.g. "*/30 * * * *") driving
	// periodic roster re-synchronization.
	RefreshCron string `yaml:"refresh"`

	// Language selects the report/export locale ("es" or "en").
	Language string `yaml:"language"`

	// SortOrder is the initial day-of-month sort for list views ("asc"/"desc").
	SortOrder string `yaml:"sort_order"`
}

// DefaultFileConfig returns an in-memory default configuration.
func DefaultFileConfig() *FileConfig {
	return &FileConfig{
		Listen:      DefaultListenAddr,
		RefreshCron: DefaultRefreshCron,
		Language:    DefaultLanguage,
		SortOrder:   SortAsc,
	}
}

// Normalize fills in missing/zero values with defaults so partially-filled
// configs still behave correctly.
func (c *FileConfig) Normalize() {
	if c.Listen == "" {
		c.Listen = DefaultListenAddr
	}
	if c.RefreshCron == "" {
		c.RefreshCron = DefaultRefreshCron
	}
	switch c.Language {
	case "es", "en":
	default:
		c.Language = DefaultLanguage
	}
	switch c.SortOrder {
	case SortAsc, SortDesc:
	default:
		c.SortOrder = SortAsc
	}
}

// Load loads configuration from the given YAML path.
//
// If the file does not exist, a default config is written there (0600) and
// returned, so a first run leaves a template behind for the operator.
func Load(path string) (*FileConfig, error) {
	if path == "" {
		return nil, errors.New(ErrConfigPathEmpty)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultFileConfig()
			if err := Save(path, cfg); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.Normalize()

	return &cfg, nil
}

// Save writes the configuration atomically (temp file + rename, 0600).
func Save(path string, cfg *FileConfig) error {
	if path == "" {
		return errors.New(ErrConfigPathEmpty)
	}
	if cfg == nil {
		return errors.New(ErrConfigNil)
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, DirPermUserRWX); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".birthday-office-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, FilePermUserRW); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
