package graph

var hashSampleIndexStream = hashSampleIndex // same parameter name as Sampler

// processStreamingSampler mirrors processSampler but reads from a
// background-prefetched stream.Stream instead of an embedded Wavetable
// (spec §4.3 "StreamingSampler").
func (m *GraphModel) processStreamingSampler(n *Node, st *NodeState, in []resolvedConnection, frames int) {
	sampleIdx := int(m.nodeParam(n, hashSampleIndexStream, 0))
	pitch := m.nodeParam(n, hashPitch, 1)
	startPosition := m.nodeParam(n, hashStartPosition, 0)

	if sampleIdx < 0 || sampleIdx >= len(m.streamInsts) || m.streamInsts[sampleIdx] == nil {
		for f := 0; f < frames; f++ {
			st.Output[f] = 0
		}
		return
	}
	src := m.streamInsts[sampleIdx]
	totalSamples := float64(0)
	if sampleIdx < len(m.Streams) {
		totalSamples = float64(m.Streams[sampleIdx].TotalSamples)
	}

	for f := 0; f < frames; f++ {
		trigger := m.sumInput(in, 0, f)
		if st.LastTrigger < 0.5 && trigger >= 0.5 {
			st.Position = startPosition * totalSamples
			st.IsPlaying = true
		}
		st.LastTrigger = trigger

		if !st.IsPlaying || totalSamples == 0 {
			st.Output[f] = 0
			continue
		}

		finalPitch := pitch + m.sumInput(in, 1, f)
		st.Output[f] = src.SampleAt(st.Position)

		st.Position += float64(finalPitch)
		if st.Position >= totalSamples {
			st.IsPlaying = false
		}
	}
}
