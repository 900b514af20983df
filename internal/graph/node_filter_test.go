package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgecraft/audiograph/internal/graph"
)

// TestLowpassPassesDCAtNyquist covers the algebraic law: lowpass at cutoff
// >= sample_rate/2 passes a unit-DC input unchanged after steady state
// (gain = 1 +/- 1%, spec §8).
func TestLowpassPassesDCAtNyquist(t *testing.T) {
	dcHash := graph.NameHash("dc")
	cutoffHash := graph.NameHash("cutoff")

	b := newChunkBuilder(48_000)
	b.addParam(dcHash, 1, -1, 1)
	b.addParam(cutoffHash, 24_000, 20, 20_000)
	b.addNode(1, uint32(graph.NodeParameter), 0, 1, 0, 1)
	b.addNode(2, uint32(graph.NodeFilter), 2, 1, 1, 1)
	b.addNode(3, uint32(graph.NodeAmplifier), 1, 1, 0, 0)
	b.addConnection(1, 0, 2, 0, 1)
	b.addConnection(2, 0, 3, 0, 1)

	proc := graph.NewProcessor(48_000, nil)
	require.NoError(t, proc.Load(b.build()))

	out := make([]float32, 2000)
	proc.Process(out, 2000, 1)

	assert.InDelta(t, float32(1.0), out[len(out)-1], 0.01)
}
