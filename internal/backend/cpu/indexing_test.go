package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/gptgen/internal/tensor"
)

func TestEmbedding(t *testing.T) {
	backend := New()
	weight := tensor.MustFromSlice([]float32{
		0, 0,
		1, 1,
		2, 2,
		3, 3,
	}, tensor.Shape{4, 2})
	ids := tensor.MustFromSlice([]int32{3, 0, 1, 1}, tensor.Shape{2, 2})

	out, err := backend.Embedding(weight, ids)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2, 2}, out.Shape())
	assert.Equal(t, []float32{3, 3, 0, 0, 1, 1, 1, 1}, out.Data())
}

func TestEmbedding_OutOfRange(t *testing.T) {
	backend := New()
	weight := tensor.Zeros[float32](tensor.Shape{4, 2})

	tests := []struct {
		name  string
		ids   []int32
		index int
		value int
	}{
		{"too large", []int32{0, 4}, 1, 4},
		{"negative", []int32{-1, 0}, 0, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := tensor.MustFromSlice(tt.ids, tensor.Shape{1, 2})
			_, err := backend.Embedding(weight, ids)
			require.ErrorIs(t, err, tensor.ErrRange)

			var rangeErr *tensor.RangeError
			require.ErrorAs(t, err, &rangeErr)
			assert.Equal(t, tt.index, rangeErr.Index)
			assert.Equal(t, tt.value, rangeErr.Value)
			assert.Equal(t, 4, rangeErr.High)
		})
	}
}

func TestMaskedFill(t *testing.T) {
	backend := New()
	x := tensor.MustFromSlice([]float32{1, 2, 3, 4, 5, 6, 7, 8}, tensor.Shape{2, 1, 2, 2})
	mask := tensor.MustFromSlice([]float32{1, 0, 1, 1}, tensor.Shape{1, 1, 2, 2})

	out, err := backend.MaskedFill(x, mask, float32(math.Inf(-1)))
	require.NoError(t, err)

	data := out.Data()
	assert.True(t, math.IsInf(float64(data[1]), -1))
	assert.True(t, math.IsInf(float64(data[5]), -1))
	assert.Equal(t, float32(1), data[0])
	assert.Equal(t, float32(8), data[7])
}

func TestMaskedFill_ShapeMismatch(t *testing.T) {
	backend := New()
	x := tensor.Zeros[float32](tensor.Shape{1, 2, 3, 3})

	tests := []struct {
		name string
		mask tensor.Shape
	}{
		{"wrong seq", tensor.Shape{1, 1, 4, 4}},
		{"enlarges scores", tensor.Shape{2, 2, 3, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := backend.MaskedFill(x, tensor.Ones[float32](tt.mask), 0)
			assert.ErrorIs(t, err, tensor.ErrShape)
		})
	}
}
