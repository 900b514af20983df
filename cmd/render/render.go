// Package render implements the "render" subcommand: load an AUDI chunk,
// drive the graph processor for a fixed duration, and write the result to a
// WAV file. This stands in for the host's live audio callback, which is out
// of scope for this module (spec.md §1 non-goals).
package render

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/forgecraft/audiograph/internal/conf"
	"github.com/forgecraft/audiograph/internal/graph"
	"github.com/forgecraft/audiograph/internal/metrics"
	"github.com/forgecraft/audiograph/internal/stream"
)

var (
	outPath  string
	duration float64
	channels int
)

// Command returns the "render" cobra command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render an AUDI chunk to a WAV file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(settings)
		},
	}

	if err := setupFlags(cmd); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().StringVarP(&outPath, "out", "o", "render.wav", "Path to write the rendered WAV file")
	cmd.Flags().Float64VarP(&duration, "duration", "n", 2.0, "Render duration in seconds")
	cmd.Flags().IntVarP(&channels, "channels", "c", 1, "Output channel count")

	return viper.BindPFlags(cmd.Flags())
}

func runRender(settings *conf.Settings) error {
	if settings.Engine.ChunkPath == "" {
		return fmt.Errorf("no chunk path set: pass --chunk")
	}

	data, err := os.ReadFile(settings.Engine.ChunkPath)
	if err != nil {
		return fmt.Errorf("reading chunk file: %w", err)
	}

	m, err := metrics.NewEngineMetrics(prometheus.NewRegistry())
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}

	pool := stream.NewPool(settings.Streaming.PrefetchQueueDepth, m)
	defer pool.Close()

	sampleRate := uint32(settings.Engine.SampleRate)
	proc := graph.NewProcessor(sampleRate, pool)
	if err := proc.Load(data); err != nil {
		return fmt.Errorf("loading chunk: %w", err)
	}

	frames := int(duration * float64(sampleRate))
	out := make([]float32, frames*channels)
	proc.Process(out, frames, channels)

	return writeWav(outPath, out, int(sampleRate), channels)
}

func writeWav(path string, samples []float32, sampleRate, numChannels int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	enc := wav.NewEncoder(f, sampleRate, 32, numChannels, 1)

	buf := &audio.Float32Buffer{
		Data:           samples,
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: numChannels},
		SourceBitDepth: 32,
	}

	if err := enc.Write(buf.AsIntBuffer()); err != nil {
		return fmt.Errorf("writing samples: %w", err)
	}

	return enc.Close()
}
