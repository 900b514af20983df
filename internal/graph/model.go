// Package graph implements the AUDI chunk decoder, in-memory graph model,
// topological scheduler, and node DSP processors (spec.md §3-4.3). The graph
// is a node-id-indexed array plus a parallel NodeState scratch array — no
// pointer graph, no cycles in ownership (spec.md §9 design note).
package graph

import (
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/forgecraft/audiograph/internal/stream"
)

// DefaultSampleRate is substituted for a chunk that declares sample_rate=0
// (spec §3 invariant 4).
const DefaultSampleRate = 48_000

// ADSR phases (spec §4.3 Envelope).
type envelopePhase int

const (
	envOff envelopePhase = iota
	envAttack
	envDecay
	envSustain
	envRelease
)

// NodeState is the per-node scratch state created once and reused across
// Process calls (spec §3 "Per-node scratch state"). It is a single struct
// rather than nine per-kind types: every node carries the same parallel
// slot, and the scheduler only reads the fields relevant to its NodeType.
type NodeState struct {
	Output []float32 // resized to the requested frame count

	// Oscillator
	Phase float64
	RNG   *rand.Rand

	// Biquad filter delay line
	X1, X2, Y1, Y2 float32

	// Envelope (ADSR)
	EnvPhase     envelopePhase
	EnvTime      float32
	EnvLevel     float32
	EnvLastGate  float32
	ReleaseStart float32

	// Sampler / StreamingSampler
	Position    float64
	IsPlaying   bool
	LastTrigger float32

	// Beeper distortion hysteresis state
	BeeperState float32
}

// paramIndex resolves a node's private parameter slot by hash, falling
// back to the global name_hash -> index map (spec §3 "Node" / §4.1).
type paramIndex struct {
	global map[uint64]int // name_hash -> index into Parameters, last-write-wins
}

// GraphModel is the decoded, runtime-mutable graph: nodes, connections,
// parameters, wavetables, and streaming descriptors, plus the per-node
// scratch state and cached topological order.
type GraphModel struct {
	SampleRate  uint32
	CurrentTime float32

	Nodes       []Node
	nodeIndex   map[uint32]int // node id -> index into Nodes
	Connections []Connection
	Wavetables  []Wavetable
	Streams     []StreamingAudio
	streamInsts []*stream.Stream // parallel to Streams, registered against the Processor's shared pool

	// Parameters are stored as atomic bit patterns so set_parameter never
	// blocks the audio thread (spec §5, §9 design note).
	paramDefault []Parameter
	paramValues  []atomic.Uint32
	params       paramIndex

	states []NodeState

	order      []int // cached topological order, indices into Nodes
	orderValid bool

	mu sync.RWMutex // guards structural fields during load(); steady-state reads are lock-free
}

func newGraphModel(sampleRate uint32) *GraphModel {
	return &GraphModel{SampleRate: sampleRate}
}

// loadDecoded installs freshly decoded tables into the model. Called only
// from Decode; Processor.Load takes the mutex separately when swapping an
// existing model for a new one.
func (m *GraphModel) loadDecoded(nodes []Node, conns []Connection, wavetables []Wavetable, params []Parameter, streams []StreamingAudio) {
	m.Nodes = nodes
	m.Connections = conns
	m.Wavetables = wavetables
	m.Streams = streams
	m.paramDefault = params

	m.nodeIndex = make(map[uint32]int, len(nodes))
	for i, n := range nodes {
		m.nodeIndex[n.ID] = i
	}

	m.paramValues = make([]atomic.Uint32, len(params))
	m.params.global = make(map[uint64]int, len(params))
	for i, p := range params {
		m.paramValues[i].Store(float32bits(p.CurrentValue))
		m.params.global[p.NameHash] = i // last-write-wins (spec §4.1)
	}

	m.states = make([]NodeState, len(nodes))
	for i := range m.states {
		m.states[i].RNG = rand.New(rand.NewPCG(uint64(i)+1, uint64(i)*2+1))
	}

	m.order = nil
	m.orderValid = false
	m.CurrentTime = 0
}

// attachStreams registers every StreamingAudio descriptor against the
// Processor's shared prefetch pool, creating one stream.Stream per
// descriptor. Called once after loadDecoded by Processor.Load.
func (m *GraphModel) attachStreams(pool *stream.Pool) {
	m.streamInsts = make([]*stream.Stream, len(m.Streams))
	if pool == nil {
		return
	}
	for i, sd := range m.Streams {
		m.streamInsts[i] = pool.Register(stream.Descriptor{
			NameHash:     sd.NameHash,
			DataOffset:   sd.DataOffset,
			TotalSamples: sd.TotalSamples,
			ChunkSize:    sd.ChunkSize,
			SampleRate:   sd.SampleRate,
			ChannelCount: sd.ChannelCount,
			BitDepth:     sd.BitDepth,
			Format:       sd.Format,
			FilePath:     sd.FilePath,
		})
	}
}

// SetStreamFilePath sets the backing file path for the streamIndex'th
// StreamingAudio descriptor (spec §6 "set_file_path(stream_index, path)").
func (m *GraphModel) SetStreamFilePath(streamIndex int, path string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if streamIndex < 0 || streamIndex >= len(m.streamInsts) {
		return
	}
	m.streamInsts[streamIndex].SetFilePath(path)
}

// nodeAt returns the index of a node by id, or -1 if absent.
func (m *GraphModel) nodeAt(id uint32) int {
	idx, ok := m.nodeIndex[id]
	if !ok {
		return -1
	}
	return idx
}

// ParamValue reads the current value of the parameter at global index idx.
func (m *GraphModel) ParamValue(idx int) float32 {
	return float32frombits(m.paramValues[idx].Load())
}

// setParamValueAt clamps and stores value into the parameter at index idx.
func (m *GraphModel) setParamValueAt(idx int, value float32) {
	def := m.paramDefault[idx]
	if value < def.MinValue {
		value = def.MinValue
	} else if value > def.MaxValue {
		value = def.MaxValue
	}
	m.paramValues[idx].Store(float32bits(value))
}

// SetParameter writes value (clamped to [min,max]) to every parameter slot
// whose name hash matches. Unknown hashes are silently ignored (spec §7).
func (m *GraphModel) SetParameter(hash uint64, value float32) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for i, p := range m.paramDefault {
		if p.NameHash == hash {
			m.setParamValueAt(i, value)
		}
	}
}

// nodeParam resolves a node's parameter by hash: first its private slice,
// then the global map (spec §3 "Node").
func (m *GraphModel) nodeParam(n *Node, hash uint64, fallback float32) float32 {
	for i := uint32(0); i < n.ParamCount; i++ {
		idx := int(n.ParamOffset + i)
		if idx >= len(m.paramDefault) {
			break
		}
		if m.paramDefault[idx].NameHash == hash {
			return m.ParamValue(idx)
		}
	}
	if idx, ok := m.params.global[hash]; ok {
		return m.ParamValue(idx)
	}
	return fallback
}

// nodeParamIndex is like nodeParam but returns the resolved index (or -1),
// for processors that need to detect the special-cased "gate" hash.
func (m *GraphModel) nodeParamIndex(n *Node, hash uint64) int {
	for i := uint32(0); i < n.ParamCount; i++ {
		idx := int(n.ParamOffset + i)
		if idx >= len(m.paramDefault) {
			break
		}
		if m.paramDefault[idx].NameHash == hash {
			return idx
		}
	}
	if idx, ok := m.params.global[hash]; ok {
		return idx
	}
	return -1
}
