package graph

// evalNode dispatches to the node processor matching Nodes[idx].Type,
// writing exactly `frames` samples into states[idx].Output (spec §4.3).
// A single switch over a tagged NodeType, not an interface chain per node
// instance (spec §9 design note).
func (m *GraphModel) evalNode(idx, frames int) {
	n := &m.Nodes[idx]
	st := &m.states[idx]
	in := m.incomingFor(n.ID)

	switch n.Type {
	case NodeOscillator:
		m.processOscillator(n, st, in, frames)
	case NodeAmplifier:
		m.processAmplifier(n, st, in, frames)
	case NodeParameter:
		m.processParameter(n, st, in, frames)
	case NodeMixer:
		m.processMixer(n, st, in, frames)
	case NodeEnvelope:
		m.processEnvelope(n, st, in, frames)
	case NodeFilter:
		m.processFilter(n, st, in, frames)
	case NodeDistortion:
		m.processDistortion(n, st, in, frames)
	case NodeSampler:
		m.processSampler(n, st, in, frames)
	case NodeStreamingSampler:
		m.processStreamingSampler(n, st, in, frames)
	default:
		for f := 0; f < frames; f++ {
			st.Output[f] = 0
		}
	}
}

// incomingFor returns every connection targeting destNode, resolved with
// the source node's state index so the per-frame sum never looks up the
// node map again.
func (m *GraphModel) incomingFor(destNode uint32) []resolvedConnection {
	var out []resolvedConnection
	for _, c := range m.Connections {
		if c.DestNode != destNode {
			continue
		}
		srcIdx := m.nodeAt(c.SourceNode)
		if srcIdx < 0 {
			continue
		}
		out = append(out, resolvedConnection{srcIdx: srcIdx, input: c.DestInput, strength: c.Strength})
	}
	return out
}

type resolvedConnection struct {
	srcIdx   int
	input    uint32
	strength float32
}

// sumInput sums source.output[frame]*strength across every connection in
// in[] targeting inputIndex (spec §4.3: "sums source.output_buffer[i] *
// connection.strength across all incoming connections").
func (m *GraphModel) sumInput(in []resolvedConnection, inputIndex uint32, frame int) float32 {
	var sum float32
	for _, rc := range in {
		if rc.input != inputIndex {
			continue
		}
		src := m.states[rc.srcIdx].Output
		if frame < len(src) {
			sum += src[frame] * rc.strength
		}
	}
	return sum
}

// hasInput reports whether any connection in in[] targets inputIndex, used
// by nodes whose default behavior differs when an input is unconnected
// (e.g. Amplifier's modulation input defaults to 1.0).
func hasInput(in []resolvedConnection, inputIndex uint32) bool {
	for _, rc := range in {
		if rc.input == inputIndex {
			return true
		}
	}
	return false
}
