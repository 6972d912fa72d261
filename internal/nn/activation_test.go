package nn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/gptgen/internal/backend/cpu"
	"github.com/born-ml/gptgen/internal/tensor"
)

func TestNewActivation(t *testing.T) {
	backend := cpu.New()

	gelu, err := NewActivation("gelu", backend)
	require.NoError(t, err)
	assert.Equal(t, "gelu", gelu.Name())

	relu, err := NewActivation("relu", backend)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 2}, relu.Forward(tensor.MustFromSlice([]float32{-1, 2}, tensor.Shape{2})).Data())

	_, err = NewActivation("silu", backend)
	assert.Error(t, err)
}

func TestFFN_Shape(t *testing.T) {
	backend := cpu.New()
	ffn := NewFFN(16, 64, NewGELU(backend), testInit(1), backend)

	x := randInput(tensor.Shape{2, 5, 16}, 2)
	out, err := ffn.Forward(x)
	require.NoError(t, err)
	assert.Equal(t, x.Shape(), out.Shape())

	params := ffn.Parameters()
	require.Len(t, params, 4)
	assert.Equal(t, "fc1.weight", params[0].Name())
	assert.Equal(t, tensor.Shape{64, 16}, params[0].Tensor().Shape())
	assert.Equal(t, 16*64+64+64*16+16, CountParameters(params))
}

func TestFFN_ZeroWeights(t *testing.T) {
	backend := cpu.New()
	zeroInit := func(shape tensor.Shape) *tensor.Tensor[float32] { return Zeros(shape) }
	ffn := NewFFN(4, 16, NewReLU(backend), zeroInit, backend)
	copy(ffn.Linear2.Bias().Tensor().Data(), []float32{1, 2, 3, 4})

	out, err := ffn.Forward(randInput(tensor.Shape{1, 3, 4}, 1))
	require.NoError(t, err)
	for row := 0; row < 3; row++ {
		assert.Equal(t, []float32{1, 2, 3, 4}, out.Data()[row*4:(row+1)*4])
	}
}

func TestDropout_Modes(t *testing.T) {
	backend := cpu.New()
	dropout := NewDropout(0.5, rand.New(rand.NewSource(1)), backend)
	x := tensor.Ones[float32](tensor.Shape{1000})

	// Inference: identity.
	out, err := dropout.Forward(x, ModeInference)
	require.NoError(t, err)
	assert.Equal(t, x.Data(), out.Data())

	// Training: survivors are scaled by 1/(1-p), the rest are zero.
	out, err = dropout.Forward(x, ModeTraining)
	require.NoError(t, err)
	kept := 0
	for _, v := range out.Data() {
		switch v {
		case 0:
		case 2:
			kept++
		default:
			t.Fatalf("unexpected dropout value %v", v)
		}
	}
	assert.InDelta(t, 500, kept, 60)
	assert.Empty(t, dropout.Parameters())
}

func TestDropout_InvalidRate(t *testing.T) {
	assert.Panics(t, func() { NewDropout(1, rand.New(rand.NewSource(1)), cpu.New()) })
}
