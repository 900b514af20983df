// Package bench implements the "bench" subcommand: load an AUDI chunk and
// repeatedly drive the graph processor's Process callback, reporting
// latency percentiles. Grounded on the teacher's cmd/benchmark package
// (batch-inference timing loop + formatted results table), replacing
// BirdNET inference timing with graph-callback timing.
package bench

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/forgecraft/audiograph/internal/conf"
	"github.com/forgecraft/audiograph/internal/cpuspec"
	"github.com/forgecraft/audiograph/internal/graph"
	"github.com/forgecraft/audiograph/internal/metrics"
	"github.com/forgecraft/audiograph/internal/stream"
)

var (
	frameSize  int
	iterations int
)

// Command returns the "bench" cobra command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark graph processing latency",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(settings)
		},
	}

	if err := setupFlags(cmd); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
		os.Exit(1)
	}

	return cmd
}

func setupFlags(cmd *cobra.Command) error {
	cmd.Flags().IntVar(&frameSize, "frames", 512, "Frames per Process call")
	cmd.Flags().IntVar(&iterations, "iterations", 1000, "Number of Process calls to time")

	return viper.BindPFlags(cmd.Flags())
}

func runBench(settings *conf.Settings) error {
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

	proc := graph.NewProcessor(uint32(settings.Engine.SampleRate), pool)
	if err := proc.Load(data); err != nil {
		return fmt.Errorf("loading chunk: %w", err)
	}

	printHostDiagnostics()

	out := make([]float32, frameSize)
	durations := make([]time.Duration, 0, iterations)

	for i := 0; i < iterations; i++ {
		start := time.Now()
		proc.Process(out, frameSize, 1)
		durations = append(durations, time.Since(start))
	}

	printResults(durations, frameSize, settings.Engine.SampleRate)
	return nil
}

// printHostDiagnostics reports the host CPU/memory state a latency run was
// taken under, so a percentile regression can be told apart from a noisy
// host (thermal throttling, memory pressure from another process).
func printHostDiagnostics() {
	spec := cpuspec.Detect()
	fmt.Printf("CPU:            %s (%d logical cores, %d recommended workers)\n",
		spec.BrandName, spec.LogicalCores, spec.OptimalWorkers())

	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		fmt.Printf("CPU load:       %.1f%%\n", pct[0])
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		fmt.Printf("Host memory:    %.1f%% used (%d MiB available)\n",
			vm.UsedPercent, vm.Available/(1024*1024))
	}
}

func printResults(durations []time.Duration, frameSize, sampleRate int) {
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	callbackBudget := time.Duration(float64(frameSize) / float64(sampleRate) * float64(time.Second))

	fmt.Printf("Iterations:     %d\n", len(durations))
	fmt.Printf("Frames/call:    %d (callback budget %v)\n", frameSize, callbackBudget)
	fmt.Printf("p50:            %v\n", percentile(durations, 0.50))
	fmt.Printf("p95:            %v\n", percentile(durations, 0.95))
	fmt.Printf("p99:            %v\n", percentile(durations, 0.99))
	fmt.Printf("max:            %v\n", durations[len(durations)-1])
}

func percentile(sorted []time.Duration, p float64) time.Duration {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}
