package stream

import (
	"sync"

	"github.com/forgecraft/audiograph/internal/applog"
	"github.com/forgecraft/audiograph/internal/metrics"
)

type prefetchRequest struct {
	stream     *Stream
	chunkIndex uint32
}

// Pool owns every Stream registered from a loaded graph and the single
// background worker that services their prefetch requests (spec §4.4
// "Prefetch worker": "a single background worker owns a FIFO ... pushed by
// the scheduler"). Requests are a buffered channel rather than a condition
// variable + hand-rolled slice: the worker still blocks when idle (channel
// receive) and the audio thread's send never blocks past the channel's
// capacity (spec §5 "the audio thread never blocks").
type Pool struct {
	mu      sync.Mutex
	streams []*Stream

	requests chan prefetchRequest
	stopCh   chan struct{}
	wg       sync.WaitGroup

	metrics *metrics.EngineMetrics
}

// NewPool starts the background prefetch worker. queueDepth bounds the
// pending-request channel (conf.Settings.Streaming.PrefetchQueueDepth).
func NewPool(queueDepth int, m *metrics.EngineMetrics) *Pool {
	if queueDepth <= 0 {
		queueDepth = 32
	}
	p := &Pool{
		requests: make(chan prefetchRequest, queueDepth),
		stopCh:   make(chan struct{}),
		metrics:  m,
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Register creates a Stream for desc and adds it to the pool.
func (p *Pool) Register(desc Descriptor) *Stream {
	p.mu.Lock()
	defer p.mu.Unlock()
	slot := len(p.streams)
	s := newStream(desc, p, slot)
	p.streams = append(p.streams, s)
	return s
}

// requestPrefetch enqueues a non-blocking prefetch request; a full queue
// drops the request with a warning log (the next chunk-boundary crossing will fall
// back to a synchronous load, per spec §4.4).
func (p *Pool) requestPrefetch(s *Stream, chunkIndex uint32) {
	if s.nextReady.Load() {
		return // already holding an unconsumed prefetched chunk
	}
	select {
	case p.requests <- prefetchRequest{stream: s, chunkIndex: chunkIndex}:
		if p.metrics != nil {
			p.metrics.SetPrefetchQueueDepth(len(p.requests))
		}
	default:
		applog.For("stream").Warn("prefetch queue full, dropping request", "chunk_index", chunkIndex)
	}
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case req := <-p.requests:
			p.service(req)
		case <-p.stopCh:
			p.drain()
			return
		}
	}
}

// drain services every request already buffered in p.requests without
// blocking, so a request queued right before Close is still honored instead
// of being silently dropped by select's pseudo-random case choice.
func (p *Pool) drain() {
	for {
		select {
		case req := <-p.requests:
			p.service(req)
		default:
			return
		}
	}
}

func (p *Pool) service(req prefetchRequest) {
	if p.metrics != nil {
		p.metrics.SetPrefetchQueueDepth(len(p.requests))
	}
	samples, err := req.stream.readChunk(req.chunkIndex)
	if err != nil {
		applog.For("stream").Error("prefetch chunk read failed", "chunk_index", req.chunkIndex, "error", err)
		return
	}
	if p.metrics != nil {
		p.metrics.RecordChunkRead()
	}

	raw := float32ToBytes(samples)
	_, _ = req.stream.nextBuf.Write(raw)
	req.stream.nextReady.Store(true)
}

// Close stops the prefetch worker. run() drains every request already
// buffered in p.requests before it returns, then Close joins it (spec §5
// "Dropping the processor joins the prefetch worker after draining its
// queue").
func (p *Pool) Close() {
	close(p.stopCh)
	p.wg.Wait()
}
