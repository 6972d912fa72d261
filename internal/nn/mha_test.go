package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/gptgen/internal/backend/cpu"
	"github.com/born-ml/gptgen/internal/parallel"
	"github.com/born-ml/gptgen/internal/tensor"
)

func TestMultiHeadAttention_Shape(t *testing.T) {
	backend := cpu.New()
	mha := NewMultiHeadAttention(32, 4, false, testInit(1), backend)
	assert.Equal(t, 8, mha.HeadDim)

	x := randInput(tensor.Shape{2, 6, 32}, 2)
	out, weights, err := mha.ForwardWithWeights(x, nil)
	require.NoError(t, err)
	assert.Equal(t, x.Shape(), out.Shape())
	assert.Equal(t, tensor.Shape{2, 4, 6, 6}, weights.Shape())
}

func TestMultiHeadAttention_Parameters(t *testing.T) {
	backend := cpu.New()

	withoutBias := NewMultiHeadAttention(16, 2, false, testInit(1), backend)
	// WQ, WK, WV weights plus WO weight and bias.
	assert.Len(t, withoutBias.Parameters(), 5)
	assert.Equal(t, 4*16*16+16, CountParameters(withoutBias.Parameters()))

	withBias := NewMultiHeadAttention(16, 2, true, testInit(1), backend)
	assert.Len(t, withBias.Parameters(), 8)
	assert.Equal(t, "wq.bias", withBias.Parameters()[1].Name())
}

func TestMultiHeadAttention_MaskBroadcast(t *testing.T) {
	backend := cpu.New()
	mha := NewMultiHeadAttention(16, 2, true, testInit(1), backend)
	x := randInput(tensor.Shape{2, 4, 16}, 2)

	tests := []struct {
		name    string
		mask    tensor.Shape
		wantErr bool
	}{
		{"causal", tensor.Shape{1, 1, 4, 4}, false},
		{"per batch", tensor.Shape{2, 1, 4, 4}, false},
		{"full", tensor.Shape{2, 2, 4, 4}, false},
		{"2D", tensor.Shape{4, 4}, false},
		{"wrong seq", tensor.Shape{1, 1, 5, 5}, true},
		{"wrong heads", tensor.Shape{1, 3, 4, 4}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := mha.Forward(x, tensor.Ones[float32](tt.mask), ModeInference)
			if tt.wantErr {
				assert.ErrorIs(t, err, tensor.ErrShape)
				return
			}
			assert.NoError(t, err)
		})
	}
}

// An all-ones mask is equivalent to no mask.
func TestMultiHeadAttention_OnesMaskMatchesNil(t *testing.T) {
	backend := cpu.New()
	mha := NewMultiHeadAttention(16, 4, false, testInit(5), backend)
	x := randInput(tensor.Shape{1, 3, 16}, 6)

	plain, err := mha.Forward(x, nil, ModeInference)
	require.NoError(t, err)
	masked, err := mha.Forward(x, tensor.Ones[float32](tensor.Shape{1, 1, 3, 3}), ModeInference)
	require.NoError(t, err)
	assert.Equal(t, plain.Data(), masked.Data())
}

func TestMultiHeadAttention_ParallelMatchesSequential(t *testing.T) {
	par := cpu.New(cpu.WithParallel(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1}))
	seq := cpu.New(cpu.WithSequential())

	x := randInput(tensor.Shape{3, 8, 32}, 9)
	a, err := NewMultiHeadAttention(32, 4, true, testInit(7), par).Forward(x, nil, ModeInference)
	require.NoError(t, err)
	b, err := NewMultiHeadAttention(32, 4, true, testInit(7), seq).Forward(x, nil, ModeInference)
	require.NoError(t, err)

	assert.Equal(t, b.Data(), a.Data())
}

func TestMultiHeadAttention_InvalidHeads(t *testing.T) {
	assert.Panics(t, func() { NewMultiHeadAttention(10, 3, false, testInit(1), cpu.New()) })

	mha := NewMultiHeadAttention(8, 2, false, testInit(1), cpu.New())
	_, err := mha.Forward(tensor.Zeros[float32](tensor.Shape{1, 2, 6}), nil, ModeInference)
	assert.ErrorIs(t, err, tensor.ErrShape)
}
