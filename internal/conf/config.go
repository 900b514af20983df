// Package conf loads and holds the engine's configuration: sample rate,
// voice pool size, streaming tunables, and logging — bound through Viper the
// same way the teacher's internal/conf package binds BirdNET-Go's settings.
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/viper"
)

//go:embed config.yaml
var configFiles embed.FS

// Settings is the root configuration struct, unmarshaled from config.yaml,
// environment variables, and CLI flags (in that order of increasing
// precedence, per Viper's standard resolution order).
type Settings struct {
	Debug bool // true to enable debug-level logging

	Engine struct {
		SampleRate int    `mapstructure:"sample_rate"` // engine sample rate in Hz; 0 falls back to 48000 at load time (spec.md §3 invariant 4)
		MaxVoices  int    `mapstructure:"max_voices"`  // polyphonic voice pool size; spec.md §4.5 fixes this at 16
		ChunkPath  string `mapstructure:"chunk_path"`  // path to an AUDI chunk file to load at startup, if any
	}

	Streaming struct {
		ChunkSize          int `mapstructure:"chunk_size"`           // samples per streaming chunk; not read by the engine, which always uses each descriptor's own chunk_size
		PrefetchQueueDepth int `mapstructure:"prefetch_queue_depth"` // capacity of the background prefetch request queue
	}

	Logging struct {
		DefaultLevel string `mapstructure:"default_level"` // debug, info, warn, error
		Console      struct {
			Enabled bool
			Level   string
		}
	}
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads configuration from disk (or writes a default config.yaml if
// none exists), applies environment variable overrides, and unmarshals the
// result into a Settings value.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := bindEnvVars(); err != nil {
		// Environment binding issues are warnings, not fatal: fall through
		// with whatever bindings succeeded.
		fmt.Fprintln(os.Stderr, err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	applySettingsDefaults(settings)

	settingsInstance = settings
	return settings, nil
}

// applySettingsDefaults fills in zero-value fields that must never reach
// the engine as zero (spec.md §3 invariant 4 and §4.5 MAX_VOICES).
func applySettingsDefaults(s *Settings) {
	if s.Engine.SampleRate == 0 {
		s.Engine.SampleRate = DefaultSampleRate
	}
	if s.Engine.MaxVoices == 0 {
		s.Engine.MaxVoices = MaxVoices
	}
	if s.Streaming.ChunkSize == 0 {
		s.Streaming.ChunkSize = DefaultStreamChunkSize
	}
	if s.Streaming.PrefetchQueueDepth == 0 {
		s.Streaming.PrefetchQueueDepth = DefaultPrefetchQueueDepth
	}
}

func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := defaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return createDefaultConfig(configPaths[0])
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig writes the embedded default config.yaml to the first
// candidate config directory and reads it back in.
func createDefaultConfig(dir string) error {
	defaultConfig, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return fmt.Errorf("error reading embedded default config: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	configPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(configPath, defaultConfig, 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	return viper.ReadInConfig()
}

// defaultConfigPaths returns candidate directories to search for
// config.yaml, current directory first.
func defaultConfigPaths() ([]string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return []string{"."}, nil //nolint:nilerr // no home dir is not fatal, just narrows the search
	}
	return []string{".", filepath.Join(home, ".config", "audiograph")}, nil
}

// GetSettings returns the most recently loaded settings instance, or nil if
// Load has not been called yet.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}
