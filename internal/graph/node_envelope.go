package graph

var (
	hashAttack  = NameHash("attack")
	hashDecay   = NameHash("decay")
	hashSustain = NameHash("sustain")
	hashRelease = NameHash("release")
)

// processEnvelope drives an Attack/Decay/Sustain/Release state machine off
// input 0's gate signal (spec §4.3 "Envelope (ADSR)"). A duration of 0
// jumps straight to the next phase (spec §9 "guard against division by
// zero").
func (m *GraphModel) processEnvelope(n *Node, st *NodeState, in []resolvedConnection, frames int) {
	attack := m.nodeParam(n, hashAttack, 0.01)
	decay := m.nodeParam(n, hashDecay, 0.1)
	sustain := m.nodeParam(n, hashSustain, 0.5)
	release := m.nodeParam(n, hashRelease, 0.2)
	dt := float32(1) / float32(m.SampleRate)

	for f := 0; f < frames; f++ {
		gate := m.sumInput(in, 0, f)

		if st.EnvLastGate <= 0.5 && gate > 0.5 {
			st.EnvPhase = envAttack
			st.EnvTime = 0
		} else if st.EnvLastGate > 0.5 && gate <= 0.5 && st.EnvPhase != envOff {
			st.EnvPhase = envRelease
			st.EnvTime = 0
			st.ReleaseStart = st.EnvLevel
		}
		st.EnvLastGate = gate

		switch st.EnvPhase {
		case envAttack:
			if attack <= 0 {
				st.EnvLevel = 1
				st.EnvPhase = envDecay
				st.EnvTime = 0
			} else {
				st.EnvTime += dt
				st.EnvLevel = st.EnvTime / attack
				if st.EnvTime >= attack {
					st.EnvLevel = 1
					st.EnvPhase = envDecay
					st.EnvTime = 0
				}
			}
		case envDecay:
			if decay <= 0 {
				st.EnvLevel = sustain
				st.EnvPhase = envSustain
			} else {
				st.EnvTime += dt
				st.EnvLevel = 1 + (sustain-1)*(st.EnvTime/decay)
				if st.EnvTime >= decay {
					st.EnvLevel = sustain
					st.EnvPhase = envSustain
				}
			}
		case envSustain:
			st.EnvLevel = sustain
		case envRelease:
			if release <= 0 {
				st.EnvLevel = 0
				st.EnvPhase = envOff
			} else {
				st.EnvTime += dt
				st.EnvLevel = st.ReleaseStart * (1 - st.EnvTime/release)
				if st.EnvTime >= release {
					st.EnvLevel = 0
					st.EnvPhase = envOff
				}
			}
		default: // envOff
			st.EnvLevel = 0
		}

		st.Output[f] = st.EnvLevel
	}
}
