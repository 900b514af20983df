package graph

import "math"

// Distortion shaper values (spec §4.3 "Distortion").
type DistortionType int

const (
	DistortHardClip DistortionType = iota
	DistortSoftClip
	DistortFoldback
	DistortBitCrush
	DistortOverdrive
	DistortBeeper
)

var (
	hashDrive = NameHash("drive")
	hashMix   = NameHash("mix")
)

const beeperFreq = 237 // Hz buzz envelope (spec §4.3 "Beeper")

// processDistortion computes driven = input*drive, shapes it per the
// selected type, then crossfades dry/wet by mix (spec §4.3 "Distortion").
func (m *GraphModel) processDistortion(n *Node, st *NodeState, in []resolvedConnection, frames int) {
	drive := m.nodeParam(n, hashDrive, 1)
	mix := m.nodeParam(n, hashMix, 1)
	dtype := DistortionType(int(m.nodeParam(n, hashFilterType, 0)))

	for f := 0; f < frames; f++ {
		dry := m.sumInput(in, 0, f)
		driven := dry * drive

		var wet float32
		switch dtype {
		case DistortSoftClip:
			wet = float32(math.Tanh(float64(driven)))
		case DistortFoldback:
			wet = foldback(driven)
		case DistortBitCrush:
			wet = bitCrush4(driven)
		case DistortOverdrive:
			if driven >= 0 {
				wet = float32(1 - math.Exp(-float64(driven)))
			} else {
				wet = float32(-1 + math.Exp(0.7*float64(driven)))
			}
		case DistortBeeper:
			wet = m.beeperShape(st, driven, f)
		default: // DistortHardClip
			wet = hardClip(driven)
		}

		st.Output[f] = dry*(1-mix) + wet*mix
	}
}

func hardClip(x float32) float32 {
	switch {
	case x > 1:
		return 1
	case x < -1:
		return -1
	default:
		return x
	}
}

func foldback(x float32) float32 {
	for x > 1 || x < -1 {
		switch {
		case x > 1:
			x = 2 - x
		case x < -1:
			x = -2 - x
		}
	}
	return x
}

// bitCrush4 quantizes x to steps of 1/16 (4 bits per unit). round(x*16)/16 is already an
// exact multiple of 1/16, so a second application is a no-op — this is the
// form that satisfies the idempotency law in spec §8 ("BitCrush is
// idempotent at matching bit depths").
func bitCrush4(x float32) float32 {
	return float32(math.Round(float64(x)*16)) / 16
}

// beeperShape is a 1-bit shaper with hysteresis (dead zone ±0.1 holds the
// previous state), modulated by a 237 Hz buzz envelope at 5% depth (spec
// §4.3 "Beeper").
func (m *GraphModel) beeperShape(st *NodeState, x float32, frame int) float32 {
	switch {
	case x > 0.1:
		st.BeeperState = 1
	case x < -0.1:
		st.BeeperState = -1
	}

	buzzPhase := twoPi * beeperFreq * float64(m.CurrentTime) + twoPi*beeperFreq*float64(frame)/float64(m.SampleRate)
	buzz := float32(math.Sin(buzzPhase)) * 0.05

	return st.BeeperState * (1 - 0.05) + buzz
}
