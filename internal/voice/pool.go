package voice

import (
	"math"
	"sync"

	"github.com/forgecraft/audiograph/internal/applog"
	"github.com/forgecraft/audiograph/internal/graph"
	"github.com/forgecraft/audiograph/internal/metrics"
	"github.com/forgecraft/audiograph/internal/stream"
)

// Pool is the polyphonic wrapper API (spec.md §6 "Polyphonic wrapper API"):
// identical surface to graph.Processor, backed by MaxVoices independent
// graph processors instead of one.
type Pool struct {
	sampleRate uint32
	streamPool *stream.Pool
	metrics    *metrics.EngineMetrics

	mu        sync.Mutex
	voices    [MaxVoices]*voice
	graphData []byte

	gateOwner int // index into voices of the voice currently tied to "gate", -1 if none
	lastGate  float32
}

// NewPool builds MaxVoices idle voices, each wrapping its own graph.Processor.
// streamPool backs every voice's StreamingSampler nodes; m records
// active-voice-count and voice-steal metrics. Both may be nil.
func NewPool(sampleRate uint32, streamPool *stream.Pool, m *metrics.EngineMetrics) *Pool {
	if sampleRate == 0 {
		sampleRate = graph.DefaultSampleRate
	}
	p := &Pool{
		sampleRate: sampleRate,
		streamPool: streamPool,
		metrics:    m,
		gateOwner:  -1,
	}
	for i := range p.voices {
		p.voices[i] = newVoice(sampleRate, streamPool)
	}
	return p
}

// Load decodes data once to validate it, then loads it into every voice's
// processor. A voice already mid-note is silently cut: Load replaces the
// whole pool's patch, there is no per-voice crossfade.
func (p *Pool) Load(data []byte) error {
	if _, err := graph.Decode(data); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.graphData = data
	for i, v := range p.voices {
		if err := v.processor.Load(data); err != nil {
			return err
		}
		p.voices[i].active = false
		p.voices[i].age = 0
		p.voices[i].releaseAge = 0
		p.voices[i].lastGate = 0
	}
	p.gateOwner = -1
	p.lastGate = 0
	return nil
}

// SetParameter routes "gate" through rising/falling-edge voice allocation
// (spec §4.5 "Set-parameter routing") and broadcasts every other hash to
// every currently active voice.
func (p *Pool) SetParameter(hash uint64, value float32) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if hash != graph.HashGate {
		for _, v := range p.voices {
			if v.active {
				v.processor.SetParameter(hash, value)
			}
		}
		return
	}

	rising := p.lastGate <= 0.5 && value > 0.5
	falling := p.lastGate > 0.5 && value <= 0.5
	p.lastGate = value

	switch {
	case rising:
		idx := p.allocateVoiceLocked()
		v := p.voices[idx]
		v.active = true
		v.age = 0
		v.releaseAge = 0
		v.lastGate = value
		v.processor.SetParameter(hash, value)
		p.gateOwner = idx
	case falling:
		if p.gateOwner >= 0 {
			v := p.voices[p.gateOwner]
			v.lastGate = value
			v.processor.SetParameter(hash, value)
			p.gateOwner = -1
		}
	}
}

// allocateVoiceLocked picks the first inactive voice, or steals the oldest
// active voice (spec §4.5 "Voice stealing"): resets its state and forces
// gate=0 before the caller re-triggers it. p.mu must be held.
func (p *Pool) allocateVoiceLocked() int {
	for i, v := range p.voices {
		if !v.active {
			return i
		}
	}

	oldest := 0
	for i, v := range p.voices {
		if v.age > p.voices[oldest].age {
			oldest = i
		}
	}

	v := p.voices[oldest]
	v.processor.SetParameter(graph.HashGate, 0)
	if p.graphData != nil {
		_ = v.processor.Load(p.graphData)
	}
	v.id = newVoice(p.sampleRate, p.streamPool).id

	if p.metrics != nil {
		p.metrics.RecordVoiceSteal()
	}
	applog.For("voice").Warn("stole oldest active voice", "voice_index", oldest, "voice_id", v.id, "age_samples", v.age)

	return oldest
}

// SetStreamFilePath forwards to every voice's processor (spec §6
// "set_file_path"); every voice shares the same streaming sources.
func (p *Pool) SetStreamFilePath(streamIndex int, path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, v := range p.voices {
		v.processor.SetStreamFilePath(streamIndex, path)
	}
}

// ActiveCount returns the number of currently active voices.
func (p *Pool) ActiveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activeCountLocked()
}

func (p *Pool) activeCountLocked() int {
	n := 0
	for _, v := range p.voices {
		if v.active {
			n++
		}
	}
	return n
}

// Process runs every active voice, sums its output into out, and scales the
// sum by 1/sqrt(active_count) for equal-power mixdown (spec §4.5
// "Mixdown"). Voices whose release tail has expired are deactivated before
// the next call's mixdown.
func (p *Pool) Process(out []float32, frames, channels int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	needed := frames * channels
	for i := 0; i < needed && i < len(out); i++ {
		out[i] = 0
	}

	scratch := make([]float32, needed)
	activeCount := 0

	for i, v := range p.voices {
		if !v.active {
			continue
		}
		activeCount++

		for j := range scratch {
			scratch[j] = 0
		}
		v.processor.Process(scratch, frames, channels)
		for j := 0; j < needed && j < len(out); j++ {
			out[j] += scratch[j]
		}

		v.age += uint64(frames)
		if v.lastGate < 0.5 {
			v.releaseAge += uint64(frames)
			if v.releaseAge > uint64(p.sampleRate)/20 {
				v.active = false
				if p.gateOwner == i {
					p.gateOwner = -1
				}
			}
		}
	}

	if activeCount > 1 {
		scale := float32(1.0 / math.Sqrt(float64(activeCount)))
		for j := 0; j < needed && j < len(out); j++ {
			out[j] *= scale
		}
	}

	if p.metrics != nil {
		p.metrics.SetActiveVoices(activeCount)
	}
}

// VoiceActiveForTest and VoiceAgeForTest expose per-slot allocator state for
// tests; production callers only need ActiveCount and Process's mixed
// output.
func (p *Pool) VoiceActiveForTest(idx int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.voices[idx].active
}

func (p *Pool) VoiceAgeForTest(idx int) uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.voices[idx].age
}
