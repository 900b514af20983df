package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgecraft/audiograph/internal/graph"
)

func TestDecodeTooSmall(t *testing.T) {
	_, err := graph.Decode([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestDecodeBadArity(t *testing.T) {
	b := newChunkBuilder(48_000)
	b.addNode(1, 0, 0, 1, 0, 0)
	data := b.build()
	// Truncate so the declared node doesn't fit.
	_, err := graph.Decode(data[:headerLen+10])
	require.Error(t, err)
}

func TestDecodeSampleRateZeroSubstitutesDefault(t *testing.T) {
	b := newChunkBuilder(0)
	data := b.build()
	model, err := graph.Decode(data)
	require.NoError(t, err)
	assert.EqualValues(t, graph.DefaultSampleRate, model.SampleRate)
}

func TestDecodeWavetableBoundsCheck(t *testing.T) {
	hash := graph.NameHash("kick")
	b := newChunkBuilder(48_000)
	b.addWavetable(hash, 1, []byte{0, 1, 2, 3}, 16)
	data := b.build()
	// Corrupt the data_size field of the wavetable to escape the chunk.
	corrupt := append([]byte(nil), data...)
	offset := headerLen + 36 // data_size field within the single wavetable record
	for i := 0; i < 8; i++ {
		corrupt[offset+i] = 0xFF
	}
	_, err := graph.Decode(corrupt)
	require.Error(t, err)
}

func TestDecodeParametersPreserveOrderAndLastWriteWins(t *testing.T) {
	hash := graph.NameHash("gain")
	b := newChunkBuilder(48_000)
	b.addParam(hash, 1, 0, 1)
	b.addParam(hash, 2, 0, 1) // last-write-wins for the global map
	data := b.build()

	model, err := graph.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, float32(2), model.ParamValue(1))
}

func TestDecodeMetadataReportsShapeWithoutSamples(t *testing.T) {
	b := newChunkBuilder(44_100)
	b.addNode(1, 0, 0, 1, 0, 0)
	b.addWavetable(graph.NameHash("kick"), 1, []byte{0, 1, 2, 3}, 16)
	data := b.build()

	meta, err := graph.DecodeMetadata(data)
	require.NoError(t, err)
	assert.EqualValues(t, 44_100, meta.SampleRate)
	assert.EqualValues(t, 1, meta.NodeCount)
	assert.EqualValues(t, 1, meta.WavetableCount)
	assert.Len(t, meta.Nodes, 1)
}

func TestDecodeMetadataStillValidatesWavetableBounds(t *testing.T) {
	hash := graph.NameHash("kick")
	b := newChunkBuilder(48_000)
	b.addWavetable(hash, 1, []byte{0, 1, 2, 3}, 16)
	data := b.build()
	corrupt := append([]byte(nil), data...)
	offset := headerLen + 36
	for i := 0; i < 8; i++ {
		corrupt[offset+i] = 0xFF
	}
	_, err := graph.DecodeMetadata(corrupt)
	require.Error(t, err)
}
