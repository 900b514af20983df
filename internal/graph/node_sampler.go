package graph

var (
	hashSampleIndex   = NameHash("sample_index")
	hashPitch         = NameHash("pitch")
	hashStartPosition = NameHash("start_position")
	hashLoop          = NameHash("loop")
)

// processSampler plays back an embedded Wavetable, triggered by a rising
// edge on input 0 and pitch-modulated by input 1 (spec §4.3 "Sampler").
// Wavetable descriptors carry no sample_rate field (spec §3), so the
// source/engine sample-rate ratio in "playback rate = finalPitch *
// source_sr/engine_sr" is taken as 1 (see DESIGN.md).
func (m *GraphModel) processSampler(n *Node, st *NodeState, in []resolvedConnection, frames int) {
	sampleIdx := int(m.nodeParam(n, hashSampleIndex, 0))
	pitch := m.nodeParam(n, hashPitch, 1)
	startPosition := m.nodeParam(n, hashStartPosition, 0)
	loop := m.nodeParam(n, hashLoop, 0) >= 0.5

	var wt *Wavetable
	if sampleIdx >= 0 && sampleIdx < len(m.Wavetables) {
		wt = &m.Wavetables[sampleIdx]
	}

	sampleLength := 0.0
	if wt != nil && wt.ChannelCount > 0 {
		sampleLength = float64(len(wt.Samples) / int(wt.ChannelCount))
	}

	for f := 0; f < frames; f++ {
		trigger := m.sumInput(in, 0, f)
		if st.LastTrigger < 0.5 && trigger >= 0.5 {
			st.Position = startPosition * sampleLength
			st.IsPlaying = true
		}
		st.LastTrigger = trigger

		if !st.IsPlaying || wt == nil || sampleLength == 0 {
			st.Output[f] = 0
			continue
		}

		finalPitch := pitch + m.sumInput(in, 1, f)
		st.Output[f] = sampleAtMono(wt, st.Position)

		st.Position += float64(finalPitch)

		if st.Position >= sampleLength {
			loopStart, loopEnd := float64(wt.LoopStart), float64(wt.LoopEnd)
			if loop && loopEnd > loopStart {
				span := loopEnd - loopStart
				st.Position = loopStart + mod64(st.Position-loopEnd, span)
			} else {
				st.IsPlaying = false
			}
		}
	}
}

// sampleAtMono linearly interpolates the wavetable at a fractional sample
// position, downmixing stereo sources to mono by averaging channels (spec
// §4.3 "Stereo sources are downmixed to mono by averaging").
func sampleAtMono(wt *Wavetable, position float64) float32 {
	channels := int(wt.ChannelCount)
	if channels == 0 {
		channels = 1
	}
	frameCount := len(wt.Samples) / channels
	if frameCount == 0 {
		return 0
	}

	i0 := int(position)
	i1 := i0 + 1
	frac := float32(position - float64(i0))

	return lerp(frameAt(wt, channels, i0, frameCount), frameAt(wt, channels, i1, frameCount), frac)
}

func frameAt(wt *Wavetable, channels, index, frameCount int) float32 {
	if index < 0 || index >= frameCount {
		return 0
	}
	if channels == 1 {
		return wt.Samples[index]
	}
	var sum float32
	for c := 0; c < channels; c++ {
		sum += wt.Samples[index*channels+c]
	}
	return sum / float32(channels)
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// mod64 is a floating-point modulo that always returns a non-negative
// result, used to wrap a loop position (spec §4.3 "wrap position via
// loop_start + ((position − loop_end) mod (loop_end − loop_start))").
func mod64(x, m float64) float64 {
	if m == 0 {
		return 0
	}
	r := x - m*float64(int(x/m))
	if r < 0 {
		r += m
	}
	return r
}
