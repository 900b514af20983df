// env.go - environment variable configuration and validation for audiograph
package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding holds metadata for an environment variable binding.
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns all environment variable bindings with validation.
func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", "AUDIOGRAPH_DEBUG", nil}, // bool validation handled by viper

		{"engine.sample_rate", "AUDIOGRAPH_SAMPLE_RATE", validateEnvSampleRate},
		{"engine.max_voices", "AUDIOGRAPH_MAX_VOICES", validateEnvMaxVoices},
		{"engine.chunk_path", "AUDIOGRAPH_CHUNK_PATH", validateEnvPath},

		{"streaming.chunk_size", "AUDIOGRAPH_STREAM_CHUNK_SIZE", validateEnvPositiveInt},
		{"streaming.prefetch_queue_depth", "AUDIOGRAPH_PREFETCH_QUEUE_DEPTH", validateEnvPositiveInt},

		{"logging.default_level", "AUDIOGRAPH_LOG_LEVEL", validateEnvLogLevel},
	}
}

// bindEnvVars sets up environment variable bindings with validation.
func bindEnvVars() error {
	bindings := getEnvBindings()
	var warnings []string

	for _, binding := range bindings {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate != nil {
			if envValue := os.Getenv(binding.EnvVar); envValue != "" {
				if err := binding.Validate(envValue); err != nil {
					warnings = append(warnings, fmt.Sprintf("invalid %s value %q: %v", binding.EnvVar, envValue, err))
				}
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

func validateEnvSampleRate(value string) error {
	rate, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid sample rate: %w", err)
	}
	if rate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", rate)
	}
	return nil
}

func validateEnvMaxVoices(value string) error {
	voices, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid max voices: %w", err)
	}
	if voices <= 0 || voices > 256 {
		return fmt.Errorf("max voices must be between 1 and 256, got %d", voices)
	}
	return nil
}

func validateEnvPositiveInt(value string) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid integer: %w", err)
	}
	if n <= 0 {
		return fmt.Errorf("value must be positive, got %d", n)
	}
	return nil
}

func validateEnvLogLevel(value string) error {
	switch value {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("must be one of: debug, info, warn, error")
	}
}

func validateEnvPath(value string) error {
	if strings.Contains(value, "..") {
		return fmt.Errorf("path traversal not allowed")
	}
	return nil
}
