package graph_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgecraft/audiograph/internal/graph"
)

// TestSineOscillatorToAmplifier is scenario S1: a 480 Hz sine oscillator
// feeding an amplifier (amplitude=1) with no outgoing connection, the
// engine's chosen output sink.
func TestSineOscillatorToAmplifier(t *testing.T) {
	freqHash := graph.NameHash("frequency")
	b := newChunkBuilder(48_000)
	b.addParam(freqHash, 480, 0, 20_000)
	b.addNode(1, uint32(graph.NodeOscillator), 1, 1, 0, 1)
	b.addNode(2, uint32(graph.NodeAmplifier), 2, 1, 0, 0)
	b.addConnection(1, 0, 2, 0, 1)

	proc := graph.NewProcessor(48_000, nil)
	require.NoError(t, proc.Load(b.build()))

	out := make([]float32, 4*2)
	proc.Process(out, 4, 2)

	want := []float64{0, math.Pi / 50, 2 * math.Pi / 50, 3 * math.Pi / 50}
	for i, w := range want {
		expected := float32(math.Sin(w))
		assert.InDelta(t, expected, out[i*2], 1e-4)
		assert.InDelta(t, expected, out[i*2+1], 1e-4)
	}
}

// TestAmplifierIdentityWithoutModulation covers the algebraic law: amplitude
// 1 and no input-1 connection is the identity on input 0 (spec §8).
func TestAmplifierIdentityWithoutModulation(t *testing.T) {
	freqHash := graph.NameHash("frequency")
	b := newChunkBuilder(48_000)
	b.addParam(freqHash, 480, 0, 20_000)
	b.addNode(1, uint32(graph.NodeOscillator), 1, 1, 0, 1)
	b.addNode(2, uint32(graph.NodeAmplifier), 2, 1, 0, 0)
	b.addConnection(1, 0, 2, 0, 1)

	oscOnly := graph.NewProcessor(48_000, nil)
	require.NoError(t, oscOnly.Load(b.build()))
	ampOut := make([]float32, 8)
	oscOnly.Process(ampOut, 8, 1)

	for i, v := range ampOut {
		assert.InDelta(t, float32(math.Sin(float64(i)*math.Pi/50)), v, 1e-4)
		assert.GreaterOrEqual(t, v, float32(-1.0001))
		assert.LessOrEqual(t, v, float32(1.0001))
	}
}

// TestProcessWritesExactlyFramesTimesChannels is invariant 4 in spec §8.
func TestProcessWritesExactlyFramesTimesChannels(t *testing.T) {
	b := newChunkBuilder(48_000)
	b.addNode(1, uint32(graph.NodeAmplifier), 0, 1, 0, 0)

	proc := graph.NewProcessor(48_000, nil)
	require.NoError(t, proc.Load(b.build()))

	frames, channels := 16, 2
	out := make([]float32, frames*channels+4) // extra tail must stay untouched
	for i := range out {
		out[i] = 99
	}
	proc.Process(out[:frames*channels], frames, channels)

	for i := frames * channels; i < len(out); i++ {
		assert.Equal(t, float32(99), out[i])
	}
}

// TestCurrentTimeAdvancesBySampleCount is invariant 5 in spec §8.
func TestCurrentTimeAdvancesBySampleCount(t *testing.T) {
	b := newChunkBuilder(48_000)
	b.addNode(1, uint32(graph.NodeAmplifier), 0, 1, 0, 0)

	proc := graph.NewProcessor(48_000, nil)
	require.NoError(t, proc.Load(b.build()))

	out := make([]float32, 480)
	proc.Process(out, 480, 1)
	assert.InDelta(t, float32(0.01), proc.CurrentTime(), 1e-6)
}

// TestLoadMetadataDoesNotReplaceLoadedGraph confirms LoadMetadata is a pure
// inspection: it never mutates a Processor's currently loaded graph.
func TestLoadMetadataDoesNotReplaceLoadedGraph(t *testing.T) {
	b := newChunkBuilder(48_000)
	b.addNode(1, uint32(graph.NodeAmplifier), 0, 1, 0, 0)
	loaded := b.build()

	proc := graph.NewProcessor(48_000, nil)
	require.NoError(t, proc.Load(loaded))

	other := newChunkBuilder(48_000)
	other.addNode(1, uint32(graph.NodeOscillator), 1, 1, 0, 0)
	other.addNode(2, uint32(graph.NodeOscillator), 1, 1, 0, 0)

	meta, err := proc.LoadMetadata(other.build())
	require.NoError(t, err)
	assert.EqualValues(t, 2, meta.NodeCount)

	out := make([]float32, 4)
	proc.Process(out, 4, 1)
	for _, v := range out {
		assert.Equal(t, float32(0), v) // still the single silent amplifier from loaded
	}
}

// TestMissingOutputNodeFallsBackToNodeOne covers spec §4.2's default
// output-selection rule.
func TestMissingOutputNodeFallsBackToNodeOne(t *testing.T) {
	ampHash := graph.NameHash("amplitude")
	b := newChunkBuilder(48_000)
	b.addParam(ampHash, 0.5, 0, 10)
	b.addNode(1, uint32(graph.NodeParameter), 0, 1, 0, 1)

	proc := graph.NewProcessor(48_000, nil)
	require.NoError(t, proc.Load(b.build()))

	out := make([]float32, 4)
	proc.Process(out, 4, 1)
	for _, v := range out {
		assert.Equal(t, float32(0.5), v)
	}
}
