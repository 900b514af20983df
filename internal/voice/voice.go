// Package voice wraps N independent graph.Processor instances into a
// polyphonic mixer with gate-edge voice allocation and oldest-voice
// stealing (spec.md §4.5 "Polyphonic Processor").
package voice

import (
	"github.com/google/uuid"

	"github.com/forgecraft/audiograph/internal/graph"
	"github.com/forgecraft/audiograph/internal/stream"
)

// MaxVoices is the fixed polyphonic voice pool size.
const MaxVoices = 16

// voice is one slot in the pool: an independent graph processor plus the
// bookkeeping the allocator needs to pick a target on gate events and to
// find the oldest voice when every slot is busy.
type voice struct {
	id        uuid.UUID
	processor *graph.Processor

	active     bool
	age        uint64 // samples since allocation
	releaseAge uint64 // samples since last_gate dropped below 0.5
	lastGate   float32
}

func newVoice(sampleRate uint32, pool *stream.Pool) *voice {
	return &voice{
		id:        uuid.New(),
		processor: graph.NewProcessor(sampleRate, pool),
	}
}
