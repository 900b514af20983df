package graph

import "math"

// Filter type values (spec §4.3 "Biquad Filter").
type FilterType int

const (
	FilterLowpass FilterType = iota
	FilterHighpass
	FilterBandpass
)

var (
	hashCutoff    = NameHash("cutoff")
	hashResonance = NameHash("resonance")
	hashFilterType = NameHash("type")
)

// processFilter implements a Robert Bristow-Johnson cookbook biquad, input
// 0 the audio signal, input 1 additive cutoff modulation clamped to
// [20, 20_000] Hz before recomputing coefficients every sample (spec §4.3
// "Biquad Filter").
func (m *GraphModel) processFilter(n *Node, st *NodeState, in []resolvedConnection, frames int) {
	baseCutoff := m.nodeParam(n, hashCutoff, 1000)
	q := m.nodeParam(n, hashResonance, 0.707)
	if q <= 0 {
		q = 0.707
	}
	filterType := FilterType(int(m.nodeParam(n, hashFilterType, 0)))

	for f := 0; f < frames; f++ {
		cutoff := baseCutoff + m.sumInput(in, 1, f)
		if cutoff < 20 {
			cutoff = 20
		} else if cutoff > 20_000 {
			cutoff = 20_000
		}

		omega := twoPi * float64(cutoff) / float64(m.SampleRate)
		sinw, cosw := math.Sin(omega), math.Cos(omega)
		alpha := sinw / (2 * float64(q))

		var b0, b1, b2, a0, a1, a2 float64
		switch filterType {
		case FilterHighpass:
			b0 = (1 + cosw) / 2
			b1 = -(1 + cosw)
			b2 = (1 + cosw) / 2
			a0 = 1 + alpha
			a1 = -2 * cosw
			a2 = 1 - alpha
		case FilterBandpass:
			b0 = alpha
			b1 = 0
			b2 = -alpha
			a0 = 1 + alpha
			a1 = -2 * cosw
			a2 = 1 - alpha
		default: // FilterLowpass
			b0 = (1 - cosw) / 2
			b1 = 1 - cosw
			b2 = (1 - cosw) / 2
			a0 = 1 + alpha
			a1 = -2 * cosw
			a2 = 1 - alpha
		}
		b0, b1, b2, a1, a2 = b0/a0, b1/a0, b2/a0, a1/a0, a2/a0

		x := m.sumInput(in, 0, f)
		y := float32(b0)*x + float32(b1)*st.X1 + float32(b2)*st.X2 - float32(a1)*st.Y1 - float32(a2)*st.Y2

		st.X2, st.X1 = st.X1, x
		st.Y2, st.Y1 = st.Y1, y

		st.Output[f] = y
	}
}
