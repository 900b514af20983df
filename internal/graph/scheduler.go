package graph

import (
	"sync"

	"github.com/forgecraft/audiograph/internal/stream"
)

// Processor is the collaborator-facing engine instance (spec §6 "Processor
// API"): new(sample_rate), load(bytes), set_parameter, process, current_time.
type Processor struct {
	sampleRate uint32
	pool       *stream.Pool

	mu    sync.RWMutex // guards swapping model on Load; Process holds RLock only while reading the model pointer
	model *GraphModel
}

// NewProcessor creates a Processor with no graph loaded; Process is a no-op
// (writes silence) until Load succeeds. pool backs every StreamingSampler
// node's chunk prefetching (spec §4.4); pass nil to disable streaming.
func NewProcessor(sampleRate uint32, pool *stream.Pool) *Processor {
	if sampleRate == 0 {
		sampleRate = DefaultSampleRate
	}
	return &Processor{sampleRate: sampleRate, pool: pool, model: newGraphModel(sampleRate)}
}

// Load decodes bytes and atomically replaces the current graph (spec §3
// "Lifecycle"). Prior state is preserved if decoding fails before any
// mutation; loadDecoded only runs once decoding has fully succeeded.
func (p *Processor) Load(data []byte) error {
	model, err := Decode(data)
	if err != nil {
		return err
	}
	model.attachStreams(p.pool)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.model = model
	return nil
}

// LoadMetadata inspects a chunk's node/connection/parameter shape and
// validates that every wavetable payload and streaming descriptor record fits
// in the chunk without decoding sample data or replacing the loaded graph. Grounded on
// the original node-graph engine's metadata-only load path, used by a
// caller (a preview UI, an asset pipeline) that needs to know a chunk's
// node count or sample rate before paying the cost of a full Load.
func (p *Processor) LoadMetadata(data []byte) (*ChunkMetadata, error) {
	return DecodeMetadata(data)
}

// SetStreamFilePath sets the backing file path for a StreamingSampler's
// source stream (spec §6 "set_file_path(stream_index, path)").
func (p *Processor) SetStreamFilePath(streamIndex int, path string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	p.model.SetStreamFilePath(streamIndex, path)
}

// SetParameter writes value to every parameter slot matching hash, clamped
// to its declared range. Safe to call from any thread at any time.
func (p *Processor) SetParameter(hash uint64, value float32) {
	p.mu.RLock()
	model := p.model
	p.mu.RUnlock()
	model.SetParameter(hash, value)
}

// CurrentTime returns the graph's running time in seconds.
func (p *Processor) CurrentTime() float32 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.model.CurrentTime
}

// Process writes frames*channels interleaved float samples to out, fanning
// the selected output node's mono buffer identically across every channel
// (spec §4.2 "Output selection").
func (p *Processor) Process(out []float32, frames, channels int) {
	p.mu.RLock()
	model := p.model
	p.mu.RUnlock()

	model.process(out, frames, channels)
}

func (m *GraphModel) process(out []float32, frames, channels int) {
	needed := frames * channels
	for i := 0; i < needed && i < len(out); i++ {
		out[i] = 0
	}

	if len(m.Nodes) == 0 {
		m.advanceTime(frames)
		return
	}

	if !m.orderValid {
		m.order = m.buildOrder()
		m.orderValid = true
	}

	for _, idx := range m.order {
		st := &m.states[idx]
		if cap(st.Output) < frames {
			st.Output = make([]float32, frames)
		} else {
			st.Output = st.Output[:frames]
		}
		m.evalNode(idx, frames)
	}

	outIdx := m.selectOutputNode()
	if outIdx >= 0 {
		src := m.states[outIdx].Output
		for f := 0; f < frames; f++ {
			v := float32(0)
			if f < len(src) {
				v = src[f]
			}
			for c := 0; c < channels; c++ {
				pos := f*channels + c
				if pos < len(out) {
					out[pos] = v
				}
			}
		}
	}

	m.advanceTime(frames)
}

func (m *GraphModel) advanceTime(frames int) {
	if m.SampleRate == 0 {
		return
	}
	m.CurrentTime += float32(frames) / float32(m.SampleRate)
	if idx, ok := m.params.global[HashTime]; ok {
		m.setParamValueAt(idx, m.CurrentTime)
	}
}

// buildOrder computes a post-order DFS topological order over Nodes,
// visiting a node only after everything that feeds it. Cycles are broken
// silently by the seen/visiting sets (spec §4.2 "Ordering").
func (m *GraphModel) buildOrder() []int {
	incoming := make(map[int][]int, len(m.Nodes)) // dest idx -> source idxs
	for _, c := range m.Connections {
		srcIdx := m.nodeAt(c.SourceNode)
		dstIdx := m.nodeAt(c.DestNode)
		if srcIdx < 0 || dstIdx < 0 {
			continue
		}
		incoming[dstIdx] = append(incoming[dstIdx], srcIdx)
	}

	order := make([]int, 0, len(m.Nodes))
	seen := make([]bool, len(m.Nodes))
	visiting := make([]bool, len(m.Nodes))

	var visit func(idx int)
	visit = func(idx int) {
		if seen[idx] || visiting[idx] {
			return // cycle: drop this edge silently
		}
		visiting[idx] = true
		for _, src := range incoming[idx] {
			visit(src)
		}
		visiting[idx] = false
		if !seen[idx] {
			seen[idx] = true
			order = append(order, idx)
		}
	}

	for idx := range m.Nodes {
		visit(idx)
	}
	return order
}

// selectOutputNode returns the index of the Amplifier node with no
// outgoing connection, falling back to node id=1, or -1 if neither exists
// (spec §4.2 "Output selection").
func (m *GraphModel) selectOutputNode() int {
	hasOutgoing := make(map[uint32]bool, len(m.Connections))
	for _, c := range m.Connections {
		hasOutgoing[c.SourceNode] = true
	}
	for i, n := range m.Nodes {
		if n.Type == NodeAmplifier && !hasOutgoing[n.ID] {
			return i
		}
	}
	return m.nodeAt(1)
}
