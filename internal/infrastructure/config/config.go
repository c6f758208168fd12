// Package config loads the server configuration from the data directory.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/tfaber/taskd/pkg/storage"
	"gopkg.in/yaml.v3"
)

// Defaults used when the config file is absent or a field is unset.
const (
	DefaultAddr          = "127.0.0.1:8420"
	DefaultWatchDebounce = 500 * time.Millisecond
)

// Config is the server configuration, stored as .taskd/config.yaml.
type Config struct {
	// Addr is the listen address of the API server.
	Addr string `yaml:"addr"`
	// Watch enables reloading when the registry document is rewritten
	// externally.
	Watch bool `yaml:"watch"`
	// WatchDebounce coalesces rapid file events into one reload.
	WatchDebounce time.Duration `yaml:"watch_debounce"`
	// LogFile, when set, receives rotated JSON logs in addition to
	// stderr. Relative names resolve inside the data directory.
	LogFile string `yaml:"log_file"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Addr:          DefaultAddr,
		WatchDebounce: DefaultWatchDebounce,
	}
}

// Load reads the configuration from root/.taskd/config.yaml. A missing
// file yields the defaults; unset fields fall back to them as well.
func Load(root string) (*Config, error) {
	repo := storage.NewFilesystemRepository(root)
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.WatchDebounce <= 0 {
		cfg.WatchDebounce = DefaultWatchDebounce
	}

	return cfg, nil
}

// Save writes the configuration to root/.taskd/config.yaml.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	repo := storage.NewFilesystemRepository(root)
	path, err := repo.ResolvePath(storage.ConfigFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}
