// conf/defaults.go default values for settings
package conf

import "github.com/spf13/viper"

// setDefaultConfig sets default values for the configuration, mirrored by
// config.yaml for operators who want to see every knob in one file.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	// Engine configuration
	viper.SetDefault("engine.sample_rate", DefaultSampleRate)
	viper.SetDefault("engine.max_voices", MaxVoices)
	viper.SetDefault("engine.chunk_path", "")

	// Streaming configuration
	viper.SetDefault("streaming.chunk_size", DefaultStreamChunkSize)
	viper.SetDefault("streaming.prefetch_queue_depth", DefaultPrefetchQueueDepth)

	// Logging configuration
	viper.SetDefault("logging.default_level", "info")
	viper.SetDefault("logging.console.enabled", true)
	viper.SetDefault("logging.console.level", "info")
}
