package graph

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/forgecraft/audiograph/internal/apperr"
)

const (
	headerSize           = 28 // 7 x u32
	nodeRecordSize       = 24 // 6 x u32
	connectionRecordSize = 20 // 4 x u32 + f32
	wavetableRecordSize  = 44 // u64 + u32 + f32 + u32*3 + u64*2
	parameterRecordSize  = 20 // u64 + f32*3
	streamingRecordSize  = 44 // u64*2 + u32*7
)

// chunkHeader mirrors the AUDI chunk's fixed leading record (spec §6).
type chunkHeader struct {
	NodeCount       uint32
	ConnectionCount uint32
	ParameterCount  uint32
	PatternCount    uint32
	SampleCount     uint32
	StreamingCount  uint32
	SampleRate      uint32
}

// Decode parses an AUDI chunk byte blob into a GraphModel. It fails closed:
// TooSmall if the header does not fit, BadArity if any declared count would
// push the cursor past end-of-chunk, BadPayload if a wavetable's payload
// escapes the chunk or declares an unsupported bit depth.
func Decode(data []byte) (*GraphModel, error) {
	if len(data) < headerSize {
		return nil, apperr.New(fmt.Errorf("chunk is %d bytes, need at least %d for header", len(data), headerSize)).
			Component(apperr.ComponentGraph).
			Category(apperr.CategoryTooSmall).
			Build()
	}

	hdr := chunkHeader{
		NodeCount:       binary.LittleEndian.Uint32(data[0:4]),
		ConnectionCount: binary.LittleEndian.Uint32(data[4:8]),
		ParameterCount:  binary.LittleEndian.Uint32(data[8:12]),
		PatternCount:    binary.LittleEndian.Uint32(data[12:16]),
		SampleCount:     binary.LittleEndian.Uint32(data[16:20]),
		StreamingCount:  binary.LittleEndian.Uint32(data[20:24]),
		SampleRate:      binary.LittleEndian.Uint32(data[24:28]),
	}

	cursor := headerSize

	nodes, cursor, err := decodeNodes(data, cursor, hdr.NodeCount)
	if err != nil {
		return nil, err
	}

	conns, cursor, err := decodeConnections(data, cursor, hdr.ConnectionCount)
	if err != nil {
		return nil, err
	}

	// Pattern records have no specified per-record size (spec §9 open
	// question) and are never read by any processor; they are treated as
	// zero-width and the count does not advance the cursor.

	wavetables, cursor, err := decodeWavetables(data, cursor, hdr.SampleCount)
	if err != nil {
		return nil, err
	}

	params, cursor, err := decodeParameters(data, cursor, hdr.ParameterCount)
	if err != nil {
		return nil, err
	}

	streams, _, err := decodeStreaming(data, cursor, hdr.StreamingCount)
	if err != nil {
		return nil, err
	}

	sampleRate := hdr.SampleRate
	if sampleRate == 0 {
		sampleRate = DefaultSampleRate
	}

	model := newGraphModel(sampleRate)
	model.loadDecoded(nodes, conns, wavetables, params, streams)
	return model, nil
}

func decodeNodes(data []byte, cursor int, count uint32) ([]Node, int, error) {
	end := cursor + int(count)*nodeRecordSize
	if end > len(data) {
		return nil, cursor, badArity("node", count, cursor, end, len(data))
	}
	nodes := make([]Node, count)
	for i := range nodes {
		off := cursor + i*nodeRecordSize
		nodes[i] = Node{
			ID:          binary.LittleEndian.Uint32(data[off : off+4]),
			Type:        NodeType(binary.LittleEndian.Uint32(data[off+4 : off+8])),
			InputCount:  binary.LittleEndian.Uint32(data[off+8 : off+12]),
			OutputCount: binary.LittleEndian.Uint32(data[off+12 : off+16]),
			ParamOffset: binary.LittleEndian.Uint32(data[off+16 : off+20]),
			ParamCount:  binary.LittleEndian.Uint32(data[off+20 : off+24]),
		}
	}
	return nodes, end, nil
}

func decodeConnections(data []byte, cursor int, count uint32) ([]Connection, int, error) {
	end := cursor + int(count)*connectionRecordSize
	if end > len(data) {
		return nil, cursor, badArity("connection", count, cursor, end, len(data))
	}
	conns := make([]Connection, count)
	for i := range conns {
		off := cursor + i*connectionRecordSize
		conns[i] = Connection{
			SourceNode:   binary.LittleEndian.Uint32(data[off : off+4]),
			SourceOutput: binary.LittleEndian.Uint32(data[off+4 : off+8]),
			DestNode:     binary.LittleEndian.Uint32(data[off+8 : off+12]),
			DestInput:    binary.LittleEndian.Uint32(data[off+12 : off+16]),
			Strength:     decodeFloat32(data[off+16 : off+20]),
		}
	}
	return conns, end, nil
}

func decodeParameters(data []byte, cursor int, count uint32) ([]Parameter, int, error) {
	end := cursor + int(count)*parameterRecordSize
	if end > len(data) {
		return nil, cursor, badArity("parameter", count, cursor, end, len(data))
	}
	params := make([]Parameter, count)
	for i := range params {
		off := cursor + i*parameterRecordSize
		params[i] = Parameter{
			NameHash:     binary.LittleEndian.Uint64(data[off : off+8]),
			DefaultValue: decodeFloat32(data[off+8 : off+12]),
			MinValue:     decodeFloat32(data[off+12 : off+16]),
			MaxValue:     decodeFloat32(data[off+16 : off+20]),
		}
		params[i].CurrentValue = params[i].DefaultValue
	}
	return params, end, nil
}

func decodeWavetables(data []byte, cursor int, count uint32) ([]Wavetable, int, error) {
	end := cursor + int(count)*wavetableRecordSize
	if end > len(data) {
		return nil, cursor, badArity("wavetable", count, cursor, end, len(data))
	}
	wavetables := make([]Wavetable, count)
	for i := range wavetables {
		off := cursor + i*wavetableRecordSize
		nameHash := binary.LittleEndian.Uint64(data[off : off+8])
		channelCount := binary.LittleEndian.Uint32(data[off+8 : off+12])
		baseFreq := decodeFloat32(data[off+12 : off+16])
		loopStart := binary.LittleEndian.Uint32(data[off+16 : off+20])
		loopEnd := binary.LittleEndian.Uint32(data[off+20 : off+24])
		bitDepth := binary.LittleEndian.Uint32(data[off+24 : off+28])
		dataOffset := binary.LittleEndian.Uint64(data[off+28 : off+36])
		dataSize := binary.LittleEndian.Uint64(data[off+36 : off+44])

		if dataOffset > uint64(len(data)) || dataSize > uint64(len(data))-dataOffset {
			return nil, cursor, apperr.New(fmt.Errorf("wavetable %d payload [%d,%d) escapes chunk of size %d", i, dataOffset, dataOffset+dataSize, len(data))).
				Component(apperr.ComponentGraph).
				Category(apperr.CategoryBadPayload).
				Context("wavetable_index", i).
				Build()
		}

		samples, err := decodeSamples(data[dataOffset:dataOffset+dataSize], bitDepth)
		if err != nil {
			return nil, cursor, apperr.New(err).
				Component(apperr.ComponentGraph).
				Category(apperr.CategoryBadPayload).
				Context("wavetable_index", i).
				Build()
		}

		wavetables[i] = Wavetable{
			NameHash:      nameHash,
			ChannelCount:  channelCount,
			BaseFrequency: baseFreq,
			LoopStart:     loopStart,
			LoopEnd:       loopEnd,
			BitDepth:      bitDepth,
			Samples:       samples,
		}
	}
	return wavetables, end, nil
}

func decodeStreaming(data []byte, cursor int, count uint32) ([]StreamingAudio, int, error) {
	end := cursor + int(count)*streamingRecordSize
	if end > len(data) {
		return nil, cursor, badArity("streaming descriptor", count, cursor, end, len(data))
	}
	streams := make([]StreamingAudio, count)
	for i := range streams {
		off := cursor + i*streamingRecordSize
		streams[i] = StreamingAudio{
			NameHash:     binary.LittleEndian.Uint64(data[off : off+8]),
			DataOffset:   binary.LittleEndian.Uint64(data[off+8 : off+16]),
			TotalSamples: binary.LittleEndian.Uint32(data[off+16 : off+20]),
			ChunkSize:    binary.LittleEndian.Uint32(data[off+20 : off+24]),
			SampleRate:   binary.LittleEndian.Uint32(data[off+24 : off+28]),
			ChannelCount: binary.LittleEndian.Uint32(data[off+28 : off+32]),
			BitDepth:     binary.LittleEndian.Uint32(data[off+32 : off+36]),
			Format:       binary.LittleEndian.Uint32(data[off+36 : off+40]),
			ChunkCount:   binary.LittleEndian.Uint32(data[off+40 : off+44]),
		}
	}
	return streams, end, nil
}

// decodeSamples decodes a raw byte payload into normalized f32 samples
// using the per-bit-depth table from spec §3: u8 -> (x-128)/128,
// i16 -> x/32768, i24 (sign-extended) -> x/8_388_608, f32 -> identity.
func decodeSamples(payload []byte, bitDepth uint32) ([]float32, error) {
	switch bitDepth {
	case 8:
		out := make([]float32, len(payload))
		for i, b := range payload {
			out[i] = (float32(b) - 128) / 128
		}
		return out, nil
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
	case 32:
		n := len(payload) / 4
		out := make([]float32, n)
		for i := 0; i < n; i++ {
			out[i] = decodeFloat32(payload[i*4 : i*4+4])
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown bit depth %d", bitDepth)
	}
}

func decodeFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

func badArity(kind string, count uint32, cursor, end, total int) error {
	return apperr.New(fmt.Errorf("%s count %d needs bytes [%d,%d) but chunk is %d bytes", kind, count, cursor, end, total)).
		Component(apperr.ComponentGraph).
		Category(apperr.CategoryBadArity).
		Build()
}

// ChunkMetadata summarizes an AUDI chunk without decoding any wavetable
// sample payload, mirroring the original node-graph engine's metadata-only
// load path (a streaming/preview caller inspects node and connection shape
// before committing to the cost of decoding every embedded sample).
type ChunkMetadata struct {
	SampleRate      uint32
	NodeCount       uint32
	ConnectionCount uint32
	ParameterCount  uint32
	WavetableCount  uint32
	StreamingCount  uint32
	Nodes           []Node
	Connections     []Connection
}

// DecodeMetadata parses an AUDI chunk's header, node, connection, and
// parameter records, validating that every declared wavetable's payload and
// every streaming descriptor record fit within the chunk, without decoding any
// sample data. It fails closed with the same error categories as Decode.
func DecodeMetadata(data []byte) (*ChunkMetadata, error) {
	if len(data) < headerSize {
		return nil, apperr.New(fmt.Errorf("chunk is %d bytes, need at least %d for header", len(data), headerSize)).
			Component(apperr.ComponentGraph).
			Category(apperr.CategoryTooSmall).
			Build()
	}

	hdr := chunkHeader{
		NodeCount:       binary.LittleEndian.Uint32(data[0:4]),
		ConnectionCount: binary.LittleEndian.Uint32(data[4:8]),
		ParameterCount:  binary.LittleEndian.Uint32(data[8:12]),
		PatternCount:    binary.LittleEndian.Uint32(data[12:16]),
		SampleCount:     binary.LittleEndian.Uint32(data[16:20]),
		StreamingCount:  binary.LittleEndian.Uint32(data[20:24]),
		SampleRate:      binary.LittleEndian.Uint32(data[24:28]),
	}

	cursor := headerSize

	nodes, cursor, err := decodeNodes(data, cursor, hdr.NodeCount)
	if err != nil {
		return nil, err
	}

	conns, cursor, err := decodeConnections(data, cursor, hdr.ConnectionCount)
	if err != nil {
		return nil, err
	}

	if err := validateWavetableBounds(data, cursor, hdr.SampleCount); err != nil {
		return nil, err
	}
	cursor += int(hdr.SampleCount) * wavetableRecordSize

	_, cursor, err = decodeParameters(data, cursor, hdr.ParameterCount)
	if err != nil {
		return nil, err
	}

	if _, _, err := decodeStreaming(data, cursor, hdr.StreamingCount); err != nil {
		return nil, err
	}

	sampleRate := hdr.SampleRate
	if sampleRate == 0 {
		sampleRate = DefaultSampleRate
	}

	return &ChunkMetadata{
		SampleRate:      sampleRate,
		NodeCount:       hdr.NodeCount,
		ConnectionCount: hdr.ConnectionCount,
		ParameterCount:  hdr.ParameterCount,
		WavetableCount:  hdr.SampleCount,
		StreamingCount:  hdr.StreamingCount,
		Nodes:           nodes,
		Connections:     conns,
	}, nil
}

// validateWavetableBounds checks that every wavetable record's declared
// payload falls within the chunk without materializing the decoded samples.
func validateWavetableBounds(data []byte, cursor int, count uint32) error {
	end := cursor + int(count)*wavetableRecordSize
	if end > len(data) {
		return badArity("wavetable", count, cursor, end, len(data))
	}
	for i := uint32(0); i < count; i++ {
		off := cursor + int(i)*wavetableRecordSize
		dataOffset := binary.LittleEndian.Uint64(data[off+28 : off+36])
		dataSize := binary.LittleEndian.Uint64(data[off+36 : off+44])
		if dataOffset > uint64(len(data)) || dataSize > uint64(len(data))-dataOffset {
			return apperr.New(fmt.Errorf("wavetable %d payload [%d,%d) escapes chunk of size %d", i, dataOffset, dataOffset+dataSize, len(data))).
				Component(apperr.ComponentGraph).
				Category(apperr.CategoryBadPayload).
				Context("wavetable_index", i).
				Build()
		}
	}
	return nil
}
