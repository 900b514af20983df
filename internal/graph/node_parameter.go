package graph

// processParameter outputs its private slice[0] value as a constant across
// the buffer, except when that parameter's hash is FNV-1a("gate"): then it
// emits a one-shot trigger, 1.0 while absolute time < 0.1s, else 0.0 (spec
// §4.3 "Parameter", preserved bit-for-bit per spec §9 open question).
func (m *GraphModel) processParameter(n *Node, st *NodeState, _ []resolvedConnection, frames int) {
	if n.ParamCount == 0 {
		for f := 0; f < frames; f++ {
			st.Output[f] = 0
		}
		return
	}

	idx := int(n.ParamOffset)
	hash := m.paramDefault[idx].NameHash
	value := m.ParamValue(idx)

	if hash != HashGate {
		for f := 0; f < frames; f++ {
			st.Output[f] = value
		}
		return
	}

	startTime := m.CurrentTime
	for f := 0; f < frames; f++ {
		t := startTime + float32(f)/float32(m.SampleRate)
		if t < 0.1 {
			st.Output[f] = 1
		} else {
			st.Output[f] = 0
		}
	}
}
