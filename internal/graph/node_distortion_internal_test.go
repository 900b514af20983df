package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHardClipIdempotent(t *testing.T) {
	for _, x := range []float32{-2, -1, -0.5, 0, 0.5, 1, 2} {
		once := hardClip(x)
		twice := hardClip(once)
		assert.Equal(t, once, twice)
	}
}

func TestBitCrushIdempotent(t *testing.T) {
	for _, x := range []float32{-0.97, -0.31, 0, 0.12, 0.6, 0.999} {
		once := bitCrush4(x)
		twice := bitCrush4(once)
		assert.Equal(t, once, twice)
	}
}

func TestFoldbackStaysInRange(t *testing.T) {
	for _, x := range []float32{3.4, -5.1, 0.2, 1.0, -1.0} {
		v := foldback(x)
		assert.GreaterOrEqual(t, v, float32(-1.0001))
		assert.LessOrEqual(t, v, float32(1.0001))
	}
}
