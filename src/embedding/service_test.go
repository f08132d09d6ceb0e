package embedding

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	out := Normalize([]float32{3, 4})
	assert.InDelta(t, 0.6, out[0], 1e-6)
	assert.InDelta(t, 0.8, out[1], 1e-6)

	var norm float64
	for _, v := range out {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)
}

func TestNormalizeZeroVector(t *testing.T) {
	out := Normalize([]float32{0, 0, 0})
	assert.Equal(t, []float32{0, 0, 0}, out)
}

func TestNormalizeIdempotent(t *testing.T) {
	once := Normalize([]float32{1, 2, 2})
	twice := Normalize(once)
	for i := range once {
		assert.InDelta(t, once[i], twice[i], 1e-6)
	}
}
