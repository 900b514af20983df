// Package stream implements the chunked disk-streaming sampler subsystem
// (spec.md §4.4): on-demand chunked PCM/float read-ahead from a file path,
// with a single background prefetch worker shared by every registered
// stream. Grounded on the teacher's use of github.com/smallnest/ringbuffer
// as the byte-level handoff between a producer goroutine and a consumer
// that must never block (internal/myaudio's analysis ring buffers).
package stream

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"sync/atomic"

	"github.com/smallnest/ringbuffer"

	"github.com/forgecraft/audiograph/internal/apperr"
	"github.com/forgecraft/audiograph/internal/applog"
)

// Descriptor mirrors the fields of an AUDI chunk's StreamingAudio record
// needed to drive a Stream (spec §3 "StreamingAudio").
type Descriptor struct {
	NameHash     uint64
	DataOffset   uint64
	TotalSamples uint32
	ChunkSize    uint32
	SampleRate   uint32
	ChannelCount uint32
	BitDepth     uint32
	Format       uint32 // 1 = float, else PCM
	FilePath     string
}

// Stream is one streaming sampler's runtime state: file handle, chunk
// geometry, and the current/next-prefetched sample buffers (spec §4.4
// "Per-stream state").
type Stream struct {
	desc Descriptor

	mu      sync.Mutex // guards file handle, current buffer, chunk index
	file    *os.File
	opened  bool
	failed  bool
	current []float32 // decoded current chunk, interleaved if stereo

	currentChunkIndex uint32
	nextReady         atomic.Bool
	nextBuf           *ringbuffer.RingBuffer // raw f32 bytes for the next-prefetched chunk

	pool     *Pool
	poolSlot int
}

func newStream(desc Descriptor, pool *Pool, slot int) *Stream {
	bytesPerChunk := int(desc.ChunkSize) * int(desc.ChannelCount) * 4 // decoded as f32 regardless of source bit depth
	if bytesPerChunk <= 0 {
		bytesPerChunk = 4
	}
	return &Stream{
		desc:     desc,
		nextBuf:  ringbuffer.New(bytesPerChunk),
		pool:     pool,
		poolSlot: slot,
	}
}

// SetFilePath updates the backing file path, clearing any cached
// open-failure state so the next read retries (spec §4.4 "Failure").
func (s *Stream) SetFilePath(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file != nil {
		_ = s.file.Close()
	}
	s.desc.FilePath = path
	s.file = nil
	s.opened = false
	s.failed = false
	s.current = nil
	s.nextReady.Store(false)
}

func (s *Stream) totalFrames() int {
	if s.desc.ChannelCount == 0 {
		return int(s.desc.TotalSamples)
	}
	return int(s.desc.TotalSamples) / int(s.desc.ChannelCount)
}

// ensureOpen lazily opens the backing file, caching failure so repeated
// reads don't retry a missing file on every call (spec §4.4 "Failure": "a
// missing file on first open emits a log and silences the stream").
func (s *Stream) ensureOpen() error {
	if s.opened {
		return nil
	}
	if s.failed {
		return fmt.Errorf("stream file previously failed to open")
	}
	f, err := os.Open(s.desc.FilePath)
	if err != nil {
		s.failed = true
		applog.For("stream").Warn("failed to open streaming file, silencing stream",
			"path", s.desc.FilePath, "error", err)
		return err
	}
	s.file = f
	s.opened = true
	return nil
}

// readChunk reads and decodes one chunk worth of samples starting at
// chunkIndex (spec §4.4 "Chunk read"). A short read (end of file) is
// zero-filled for the remainder of the chunk.
func (s *Stream) readChunk(chunkIndex uint32) ([]float32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readChunkLocked(chunkIndex)
}

// readChunkLocked is readChunk for a caller that already holds s.mu.
func (s *Stream) readChunkLocked(chunkIndex uint32) ([]float32, error) {
	if err := s.ensureOpen(); err != nil {
		return make([]float32, int(s.desc.ChunkSize)*int(s.desc.ChannelCount)), nil
	}

	bytesPerSample := int(s.desc.BitDepth) / 8
	if bytesPerSample == 0 {
		bytesPerSample = 2
	}
	frameBytes := int(s.desc.ChannelCount) * bytesPerSample
	chunkBytes := int(s.desc.ChunkSize) * frameBytes
	offset := int64(s.desc.DataOffset) + int64(chunkIndex)*int64(chunkBytes)

	buf := make([]byte, chunkBytes)
	n, readErr := s.file.ReadAt(buf, offset)
	if readErr != nil && readErr != io.EOF {
		return nil, apperr.New(readErr).Component(apperr.ComponentStream).Category(apperr.CategoryStreaming).Build()
	}
	for i := n; i < len(buf); i++ {
		buf[i] = 0 // zero-fill short read remainder (spec §4.4)
	}

	return decodeChunkSamples(buf, s.desc.BitDepth, s.desc.Format)
}

// decodeChunkSamples decodes raw chunk bytes using the same per-bit-depth
// table as the embedded wavetable decoder (spec §4.1, reused by §4.4).
// Float sources (format 1) and 16- and 24-bit PCM are decoded; any other
// bit depth returns an error, and the stream keeps its previous buffer.
func decodeChunkSamples(payload []byte, bitDepth, format uint32) ([]float32, error) {
	if format == 1 { // float
		n := len(payload) / 4
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(payload[i*4 : i*4+4]))
		}
		return out, nil
	}

	switch bitDepth {
	case 16:
		n := len(payload) / 2
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			v := int16(binary.LittleEndian.Uint16(payload[i*2 : i*2+2]))
			out[i] = float32(v) / 32768
		}
		return out, nil
	case 24:
		n := len(payload) / 3
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			off := i * 3
			raw := uint32(payload[off]) | uint32(payload[off+1])<<8 | uint32(payload[off+2])<<16
			if raw&0x800000 != 0 {
				raw |= 0xFF000000
			}
			out[i] = float32(int32(raw)) / 8_388_608
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported streaming bit depth %d", bitDepth)
	}
}

// SampleAt returns the mono sample at a fractional absolute position,
// linearly interpolated, crossing chunk boundaries by swapping in the
// next-prefetched buffer (or loading synchronously, spec §4.4: "when the
// logical position crosses into the next chunk, synchronously (or eagerly,
// if prefetched) load that chunk and flip buffers").
func (s *Stream) SampleAt(position float64) float32 {
	totalFrames := s.totalFrames()
	if totalFrames == 0 {
		return 0
	}

	i0 := int(position)
	i1 := i0 + 1
	frac := float32(position - float64(i0))

	return lerp(s.frameAt(i0, totalFrames), s.frameAt(i1, totalFrames), frac)
}

func (s *Stream) frameAt(frameIdx, totalFrames int) float32 {
	if frameIdx < 0 || frameIdx >= totalFrames {
		return 0
	}

	chunkIndex := uint32(frameIdx) / s.desc.ChunkSize
	localIdx := int(uint32(frameIdx) % s.desc.ChunkSize)

	s.mu.Lock()
	if chunkIndex != s.currentChunkIndex || s.current == nil {
		s.loadChunkLocked(chunkIndex)
	}
	current := s.current
	s.mu.Unlock()

	return monoAt(current, int(s.desc.ChannelCount), localIdx)
}

// loadChunkLocked swaps in chunkIndex, preferring an already-prefetched
// buffer and falling back to a synchronous read. Caller holds s.mu.
func (s *Stream) loadChunkLocked(chunkIndex uint32) {
	if chunkIndex == s.currentChunkIndex+1 && s.nextReady.Load() {
		size := s.nextBuf.Length()
		raw := make([]byte, size)
		_, _ = s.nextBuf.Read(raw)
		s.current = bytesToFloat32(raw)
		s.nextReady.Store(false)
	} else {
		samples, err := s.readChunkLocked(chunkIndex)
		if err == nil {
			s.current = samples
		}
	}
	s.currentChunkIndex = chunkIndex
	if s.pool != nil {
		s.pool.requestPrefetch(s, chunkIndex+1)
	}
}

func monoAt(samples []float32, channels, localIdx int) float32 {
	if channels <= 0 {
		channels = 1
	}
	frameCount := len(samples) / channels
	if localIdx < 0 || localIdx >= frameCount {
		return 0
	}
	if channels == 1 {
		return samples[localIdx]
	}
	var sum float32
	for c := 0; c < channels; c++ {
		sum += samples[localIdx*channels+c]
	}
	return sum / float32(channels)
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

func bytesToFloat32(raw []byte) []float32 {
	out := make([]float32, len(raw)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4 : i*4+4]))
	}
	return out
}

func float32ToBytes(samples []float32) []byte {
	out := make([]byte, len(samples)*4)
	for i, v := range samples {
		binary.LittleEndian.PutUint32(out[i*4:i*4+4], math.Float32bits(v))
	}
	return out
}
