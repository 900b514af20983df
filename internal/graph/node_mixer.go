package graph

import "strconv"

var hashMasterGain = NameHash("master_gain")

// processMixer sums each input (scaled by connection strength) times its
// per-input gain_i parameter, then scales by master_gain (spec §4.3
// "Mixer").
func (m *GraphModel) processMixer(n *Node, st *NodeState, in []resolvedConnection, frames int) {
	masterGain := m.nodeParam(n, hashMasterGain, 1)

	gains := make([]float32, n.InputCount)
	for i := range gains {
		gains[i] = m.nodeParam(n, NameHash("gain_"+strconv.Itoa(i)), 1)
	}

	for f := 0; f < frames; f++ {
		var sum float32
		for i := uint32(0); i < n.InputCount; i++ {
			sum += m.sumInput(in, i, f) * gains[i]
		}
		st.Output[f] = sum * masterGain
	}
}
