// root.go viper root command code
package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/forgecraft/audiograph/cmd/bench"
	"github.com/forgecraft/audiograph/cmd/render"
	"github.com/forgecraft/audiograph/internal/buildinfo"
	"github.com/forgecraft/audiograph/internal/conf"
)

// RootCommand creates and returns the root command. build carries the
// ldflags-injected version/date plus the host's SystemID, surfaced by the
// "version" subcommand.
func RootCommand(settings *conf.Settings, build *buildinfo.Context) *cobra.Command {
	// Create the root command
	rootCmd := &cobra.Command{
		Use:   "audiograph",
		Short: "Audio node-graph engine CLI",
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		log.Printf("error setting up flags: %v\n", err)
	}

	renderCmd := render.Command(settings)
	benchCmd := bench.Command(settings)
	versionCmd := versionCommand(build)

	rootCmd.AddCommand(renderCmd, benchCmd, versionCmd)

	return rootCmd
}

// versionCommand prints the binary's build metadata.
func versionCommand(build *buildinfo.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("version:    %s\n", build.GetVersion())
			fmt.Printf("build date: %s\n", build.GetBuildDate())
			fmt.Printf("host:       %s\n", build.GetSystemID())
			return nil
		},
	}
}

// setupFlags defines flags that are global to the command line interface.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Engine.ChunkPath, "chunk", viper.GetString("engine.chunk_path"), "Path to an AUDI chunk file to load")
	rootCmd.PersistentFlags().IntVar(&settings.Engine.SampleRate, "sample-rate", viper.GetInt("engine.sample_rate"), "Engine sample rate in Hz")
	rootCmd.PersistentFlags().IntVar(&settings.Engine.MaxVoices, "max-voices", viper.GetInt("engine.max_voices"), "Polyphonic voice pool size")

	// Bind flags to the viper settings
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
