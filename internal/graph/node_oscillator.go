package graph

import "math"

const twoPi = 2 * math.Pi

// Waveform identifies an Oscillator's shape (spec §4.3).
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSquare
	WaveSaw
	WaveTriangle
	WaveNoise
)

var (
	hashFrequency = NameHash("frequency")
	hashWaveform  = NameHash("waveform")
)

// processOscillator generates one of five waveforms, phase-accumulated in
// radians and additively frequency-modulated by input 0 (spec §4.3
// "Oscillator").
func (m *GraphModel) processOscillator(n *Node, st *NodeState, in []resolvedConnection, frames int) {
	baseFreq := m.nodeParam(n, hashFrequency, 440)
	waveform := int(m.nodeParam(n, hashWaveform, 0))

	for f := 0; f < frames; f++ {
		freq := baseFreq + m.sumInput(in, 0, f)
		phase := st.Phase

		var v float32
		switch Waveform(waveform) {
		case WaveSquare:
			if phase < math.Pi {
				v = 1
			} else {
				v = -1
			}
		case WaveSaw:
			v = float32(2*phase/twoPi - 1)
		case WaveTriangle:
			if phase < math.Pi {
				v = float32(2*phase/math.Pi - 1)
			} else {
				v = float32(1 - 2*(phase-math.Pi)/math.Pi)
			}
		case WaveNoise:
			v = st.RNG.Float32()*2 - 1
		default: // WaveSine
			v = float32(math.Sin(phase))
		}

		st.Output[f] = v

		st.Phase += twoPi * float64(freq) / float64(m.SampleRate)
		if st.Phase >= twoPi {
			st.Phase -= twoPi
		}
	}
}
