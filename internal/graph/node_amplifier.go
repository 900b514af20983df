package graph

var hashAmplitude = NameHash("amplitude")

// processAmplifier computes sum(input0) * amplitude * sum(input1, default
// 1.0 when unconnected) (spec §4.3 "Amplifier"). Input 1 is typically an
// envelope's modulation signal.
func (m *GraphModel) processAmplifier(n *Node, st *NodeState, in []resolvedConnection, frames int) {
	amplitude := m.nodeParam(n, hashAmplitude, 1)
	mod1Connected := hasInput(in, 1)

	for f := 0; f < frames; f++ {
		mod := float32(1)
		if mod1Connected {
			mod = m.sumInput(in, 1, f)
		}
		st.Output[f] = m.sumInput(in, 0, f) * amplitude * mod
	}
}
