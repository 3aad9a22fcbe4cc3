package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApproach(t *testing.T) {
	assert.Equal(t, float32(0.3), Approach(0.5, 0.3, 0))
	assert.Equal(t, float32(0.75), Approach(0.5, 1, 0.5))

	// A factor close to 1 barely moves.
	v := Approach(0, 1, 0.9)
	assert.InDelta(t, 0.1, v, 1e-6)
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]float32{}))
	assert.Len(t, SliceToBytes([]float32{1, 2, 3}), 12)
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, float32(2), Coalesce[float32](0, 2))
	assert.Equal(t, 0, Coalesce(0, 0))
}
