package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgecraft/audiograph/internal/graph"
)

func buildConstToDistortionToAmp(t *testing.T, constValue, drive float32) *graph.Processor {
	t.Helper()
	constHash := graph.NameHash("const")
	driveHash := graph.NameHash("drive")

	b := newChunkBuilder(48_000)
	b.addParam(constHash, constValue, -1, 1)
	b.addParam(driveHash, drive, 0, 10)
	b.addNode(1, uint32(graph.NodeParameter), 0, 1, 0, 1)
	b.addNode(2, uint32(graph.NodeDistortion), 1, 1, 1, 1)
	b.addNode(3, uint32(graph.NodeAmplifier), 1, 1, 0, 0)
	b.addConnection(1, 0, 2, 0, 1)
	b.addConnection(2, 0, 3, 0, 1)

	proc := graph.NewProcessor(48_000, nil)
	require.NoError(t, proc.Load(b.build()))
	return proc
}

// TestHardClipScenario is S3: input 0.4, drive=2 -> driven 0.8 -> output
// 0.8; input 0.7, drive=2 -> driven 1.4 -> output 1.0.
func TestHardClipScenario(t *testing.T) {
	proc := buildConstToDistortionToAmp(t, 0.4, 2)
	out := make([]float32, 1)
	proc.Process(out, 1, 1)
	assert.InDelta(t, float32(0.8), out[0], 1e-5)

	proc2 := buildConstToDistortionToAmp(t, 0.7, 2)
	out2 := make([]float32, 1)
	proc2.Process(out2, 1, 1)
	assert.InDelta(t, float32(1.0), out2[0], 1e-5)
}
