package voice_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forgecraft/audiograph/internal/graph"
	"github.com/forgecraft/audiograph/internal/voice"
)

// buildConstantAmpPatch assembles a minimal AUDI chunk: a Parameter node
// holding a constant "amp" value feeding an Amplifier with no modulation, so
// every active voice contributes exactly ampValue to the mix (spec.md §6
// wire layout; avoids the Parameter node's gate-hash one-shot special case
// since "amp" isn't "gate").
func buildConstantAmpPatch(sampleRate uint32, ampValue float32) []byte {
	const (
		headerLen       = 28
		nodeRecLen      = 24
		connRecLen      = 20
		wavetableRecLen = 44
		paramRecLen     = 20
		streamingRecLen = 44
	)

	le := binary.LittleEndian
	ampHash := graph.NameHash("amp")

	var body bytes.Buffer

	// node 1: Parameter
	_ = binary.Write(&body, le, uint32(1))                         // id
	_ = binary.Write(&body, le, uint32(graph.NodeParameter))       // type
	_ = binary.Write(&body, le, uint32(0))                         // inputs
	_ = binary.Write(&body, le, uint32(1))                         // outputs
	_ = binary.Write(&body, le, uint32(0))                         // param_offset
	_ = binary.Write(&body, le, uint32(1))                         // param_count
	// node 2: Amplifier
	_ = binary.Write(&body, le, uint32(2))
	_ = binary.Write(&body, le, uint32(graph.NodeAmplifier))
	_ = binary.Write(&body, le, uint32(1))
	_ = binary.Write(&body, le, uint32(1))
	_ = binary.Write(&body, le, uint32(0))
	_ = binary.Write(&body, le, uint32(0))

	// connection: node 1 output 0 -> node 2 input 0
	_ = binary.Write(&body, le, uint32(1))
	_ = binary.Write(&body, le, uint32(0))
	_ = binary.Write(&body, le, uint32(2))
	_ = binary.Write(&body, le, uint32(0))
	_ = binary.Write(&body, le, float32(1))

	// parameter: "amp"
	_ = binary.Write(&body, le, ampHash)
	_ = binary.Write(&body, le, ampValue)
	_ = binary.Write(&body, le, float32(0))
	_ = binary.Write(&body, le, float32(1))

	var out bytes.Buffer
	_ = binary.Write(&out, le, uint32(2)) // node_count
	_ = binary.Write(&out, le, uint32(1)) // connection_count
	_ = binary.Write(&out, le, uint32(1)) // parameter_count
	_ = binary.Write(&out, le, uint32(0)) // pattern_count
	_ = binary.Write(&out, le, uint32(0)) // wavetable_count
	_ = binary.Write(&out, le, uint32(0)) // streaming_count
	_ = binary.Write(&out, le, sampleRate)
	out.Write(body.Bytes())

	return out.Bytes()
}

// TestPolyphonic3NoteGateSequence is scenario S5: gate 1->0->1->0->1 with
// 100-sample gaps allocates exactly three voices, whose ages stay ordered
// oldest-to-newest, summing with 1/sqrt(3) scaling.
func TestPolyphonic3NoteGateSequence(t *testing.T) {
	sampleRate := uint32(48_000)
	p := voice.NewPool(sampleRate, nil, nil)
	require.NoError(t, p.Load(buildConstantAmpPatch(sampleRate, 1)))

	gap := make([]float32, 100)

	p.SetParameter(graph.HashGate, 1)
	p.Process(gap, 100, 1)
	p.SetParameter(graph.HashGate, 0)
	p.Process(gap, 100, 1)

	p.SetParameter(graph.HashGate, 1)
	p.Process(gap, 100, 1)
	p.SetParameter(graph.HashGate, 0)
	p.Process(gap, 100, 1)

	p.SetParameter(graph.HashGate, 1)

	out := make([]float32, 10)
	p.Process(out, 10, 1)

	assert.Equal(t, 3, p.ActiveCount())
	assert.True(t, p.VoiceActiveForTest(0))
	assert.True(t, p.VoiceActiveForTest(1))
	assert.True(t, p.VoiceActiveForTest(2))

	age0 := p.VoiceAgeForTest(0)
	age1 := p.VoiceAgeForTest(1)
	age2 := p.VoiceAgeForTest(2)
	assert.Greater(t, age0, age1)
	assert.Greater(t, age1, age2)

	expected := float32(3.0 / 1.7320508) // three voices of 1.0 each, summed and scaled by 1/sqrt(3)
	for _, v := range out {
		assert.InDelta(t, expected, v, 0.01)
	}
}

// TestVoiceStealingReusesOldestWhenAllActive covers: once all MaxVoices are
// active, a further rising edge steals the oldest (index 0), forcing its
// gate to 0 and resetting its state before retriggering.
func TestVoiceStealingReusesOldestWhenAllActive(t *testing.T) {
	sampleRate := uint32(48_000)
	p := voice.NewPool(sampleRate, nil, nil)
	require.NoError(t, p.Load(buildConstantAmpPatch(sampleRate, 1)))

	buf := make([]float32, 10)
	for i := 0; i < voice.MaxVoices; i++ {
		p.SetParameter(graph.HashGate, 1)
		p.Process(buf, 10, 1)
		p.SetParameter(graph.HashGate, 0)
		p.Process(buf, 10, 1)
	}
	assert.Equal(t, voice.MaxVoices, p.ActiveCount())

	p.SetParameter(graph.HashGate, 1)
	p.Process(buf, 10, 1)

	assert.Equal(t, voice.MaxVoices, p.ActiveCount())
	assert.Less(t, p.VoiceAgeForTest(0), p.VoiceAgeForTest(1))
}
