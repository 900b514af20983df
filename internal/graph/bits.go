package graph

import "math"

// float32bits and float32frombits adapt math.Float32bits/Float32frombits so
// atomic.Uint32 can store a float32 without tearing (spec §5 "parameter
// writes are individual 32-bit floats ... treated as relaxed atomic
// scalars").
func float32bits(f float32) uint32    { return math.Float32bits(f) }
func float32frombits(b uint32) float32 { return math.Float32frombits(b) }
