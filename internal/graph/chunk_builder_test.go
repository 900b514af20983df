package graph_test

import (
	"bytes"
	"encoding/binary"
)

// chunkBuilder assembles a minimal AUDI chunk byte blob for tests, mirroring
// the wire layout in spec.md §6 without depending on the graph package's
// unexported decode internals.
type chunkBuilder struct {
	nodes      []byteNode
	conns      []byteConnection
	params     []byteParameter
	wavetables []byteWavetable
	streams    []byteStreaming
	sampleRate uint32
}

type byteNode struct {
	id, typ, inputs, outputs, paramOffset, paramCount uint32
}

type byteConnection struct {
	srcNode, srcOut, dstNode, dstIn uint32
	strength                        float32
}

type byteParameter struct {
	nameHash              uint64
	def, min, max         float32
}

type byteWavetable struct {
	nameHash                         uint64
	channelCount                     uint32
	baseFrequency                    float32
	loopStart, loopEnd, bitDepth     uint32
	data                             []byte
}

type byteStreaming struct {
	nameHash                                          uint64
	totalSamples, chunkSize, sampleRate, channelCount  uint32
	bitDepth, format                                  uint32
	data                                               []byte
}

func newChunkBuilder(sampleRate uint32) *chunkBuilder {
	return &chunkBuilder{sampleRate: sampleRate}
}

func (b *chunkBuilder) addNode(id, typ, inputs, outputs, paramOffset, paramCount uint32) {
	b.nodes = append(b.nodes, byteNode{id, typ, inputs, outputs, paramOffset, paramCount})
}

func (b *chunkBuilder) addConnection(src, srcOut, dst, dstIn uint32, strength float32) {
	b.conns = append(b.conns, byteConnection{src, srcOut, dst, dstIn, strength})
}

func (b *chunkBuilder) addParam(nameHash uint64, def, min, max float32) {
	b.params = append(b.params, byteParameter{nameHash, def, min, max})
}

func (b *chunkBuilder) addWavetable(nameHash uint64, channels uint32, data []byte, bitDepth uint32) {
	b.wavetables = append(b.wavetables, byteWavetable{nameHash: nameHash, channelCount: channels, bitDepth: bitDepth, data: data})
}

func (b *chunkBuilder) addStreaming(nameHash uint64, totalSamples, chunkSize, sampleRate, channelCount, bitDepth, format uint32, data []byte) {
	b.streams = append(b.streams, byteStreaming{nameHash, totalSamples, chunkSize, sampleRate, channelCount, bitDepth, format, data})
}

func (b *chunkBuilder) build() []byte {
	var payload bytes.Buffer // trailing wavetable/streaming sample data, appended after the fixed arrays
	var body bytes.Buffer

	le := binary.LittleEndian

	for _, n := range b.nodes {
		_ = binary.Write(&body, le, n.id)
		_ = binary.Write(&body, le, n.typ)
		_ = binary.Write(&body, le, n.inputs)
		_ = binary.Write(&body, le, n.outputs)
		_ = binary.Write(&body, le, n.paramOffset)
		_ = binary.Write(&body, le, n.paramCount)
	}
	for _, c := range b.conns {
		_ = binary.Write(&body, le, c.srcNode)
		_ = binary.Write(&body, le, c.srcOut)
		_ = binary.Write(&body, le, c.dstNode)
		_ = binary.Write(&body, le, c.dstIn)
		_ = binary.Write(&body, le, c.strength)
	}

	// Wavetables come before parameters in the wire layout (spec §3/§6).
	dataBase := headerLen + len(b.nodes)*nodeRecLen + len(b.conns)*connRecLen +
		len(b.wavetables)*wavetableRecLen + len(b.params)*paramRecLen + len(b.streams)*streamingRecLen

	for _, w := range b.wavetables {
		offset := dataBase + payload.Len()
		_ = binary.Write(&body, le, w.nameHash)
		_ = binary.Write(&body, le, w.channelCount)
		_ = binary.Write(&body, le, w.baseFrequency)
		_ = binary.Write(&body, le, w.loopStart)
		_ = binary.Write(&body, le, w.loopEnd)
		_ = binary.Write(&body, le, w.bitDepth)
		_ = binary.Write(&body, le, uint64(offset))
		_ = binary.Write(&body, le, uint64(len(w.data)))
		payload.Write(w.data)
	}

	for _, p := range b.params {
		_ = binary.Write(&body, le, p.nameHash)
		_ = binary.Write(&body, le, p.def)
		_ = binary.Write(&body, le, p.min)
		_ = binary.Write(&body, le, p.max)
	}

	for _, s := range b.streams {
		_ = binary.Write(&body, le, s.nameHash)
		offset := uint64(dataBase + payload.Len())
		_ = binary.Write(&body, le, offset)
		_ = binary.Write(&body, le, s.totalSamples)
		_ = binary.Write(&body, le, s.chunkSize)
		_ = binary.Write(&body, le, s.sampleRate)
		_ = binary.Write(&body, le, s.channelCount)
		_ = binary.Write(&body, le, s.bitDepth)
		_ = binary.Write(&body, le, s.format)
		_ = binary.Write(&body, le, uint32(0)) // chunk_count, unused by the decoder
		payload.Write(s.data)
	}

	var out bytes.Buffer
	_ = binary.Write(&out, le, uint32(len(b.nodes)))
	_ = binary.Write(&out, le, uint32(len(b.conns)))
	_ = binary.Write(&out, le, uint32(len(b.params)))
	_ = binary.Write(&out, le, uint32(0)) // pattern_count
	_ = binary.Write(&out, le, uint32(len(b.wavetables)))
	_ = binary.Write(&out, le, uint32(len(b.streams)))
	_ = binary.Write(&out, le, b.sampleRate)
	out.Write(body.Bytes())
	out.Write(payload.Bytes())

	return out.Bytes()
}

const (
	headerLen        = 28
	nodeRecLen       = 24
	connRecLen       = 20
	wavetableRecLen  = 44
	paramRecLen      = 20
	streamingRecLen  = 44
)
