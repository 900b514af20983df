// conf/consts.go hard-coded engine constants
package conf

const (
	// DefaultSampleRate is the configured engine sample rate's default and
	// replaces a configured value of 0; it equals the rate the graph decoder
	// substitutes for a chunk that declares sample_rate=0 (spec.md §3
	// invariant 4).
	DefaultSampleRate = 48_000

	// MaxVoices is the fixed polyphonic voice pool size (spec.md §4.5).
	MaxVoices = 16

	// DefaultStreamChunkSize is the default for Settings.Streaming.ChunkSize;
	// streams always use their descriptor's own chunk_size.
	DefaultStreamChunkSize = 1024

	// DefaultPrefetchQueueDepth bounds the background prefetch worker's
	// request queue (spec.md §4.4).
	DefaultPrefetchQueueDepth = 32
)
