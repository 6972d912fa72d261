package nn

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/gptgen/internal/backend/cpu"
	"github.com/born-ml/gptgen/internal/tensor"
)

func testBlockConfig() TransformerConfig {
	return TransformerConfig{
		EmbedDim:   16,
		NumHeads:   4,
		FFNDim:     64,
		Dropout:    0.1,
		Activation: "gelu",
		NormEps:    1e-5,
	}
}

func newTestBlock(t *testing.T, seed int64) *TransformerBlock {
	t.Helper()
	block, err := NewTransformerBlock(testBlockConfig(), testInit(seed), rand.New(rand.NewSource(seed)), cpu.New())
	require.NoError(t, err)
	return block
}

func TestTransformerBlock_Forward(t *testing.T) {
	block := newTestBlock(t, 1)
	x := randInput(tensor.Shape{2, 5, 16}, 2)

	out, err := block.Forward(x, nil, ModeInference)
	require.NoError(t, err)
	assert.Equal(t, x.Shape(), out.Shape())

	// Post-norm: the output is the final LayerNorm's output (gamma=1, beta=0),
	// so every row is normalized.
	data := out.Data()
	for row := 0; row < 10; row++ {
		var sum float32
		for _, v := range data[row*16 : (row+1)*16] {
			sum += v
		}
		assert.InDelta(t, 0, sum/16, 1e-5)
	}
}

func TestTransformerBlock_InferenceIsDeterministic(t *testing.T) {
	block := newTestBlock(t, 1)
	x := randInput(tensor.Shape{1, 4, 16}, 3)

	a, err := block.Forward(x, nil, ModeInference)
	require.NoError(t, err)
	b, err := block.Forward(x, nil, ModeInference)
	require.NoError(t, err)
	assert.Equal(t, a.Data(), b.Data())

	// Training mode applies dropout and changes the result.
	c, err := block.Forward(x, nil, ModeTraining)
	require.NoError(t, err)
	assert.NotEqual(t, a.Data(), c.Data())
}

func TestTransformerBlock_Parameters(t *testing.T) {
	block := newTestBlock(t, 1)
	params := block.Parameters()

	// attn: 3 weights + wo weight/bias; ln1: 2; ffn: 4; ln2: 2
	assert.Len(t, params, 13)
	assert.Equal(t, "attn.wq.weight", params[0].Name())
	assert.Equal(t, "ln2.beta", params[len(params)-1].Name())

	want := 4*16*16 + 16 + 2*16 + (16*64 + 64 + 64*16 + 16) + 2*16
	assert.Equal(t, want, CountParameters(params))
}

func TestTransformerConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*TransformerConfig)
	}{
		{"zero embed", func(c *TransformerConfig) { c.EmbedDim = 0 }},
		{"indivisible", func(c *TransformerConfig) { c.NumHeads = 3 }},
		{"zero ffn", func(c *TransformerConfig) { c.FFNDim = 0 }},
		{"dropout one", func(c *TransformerConfig) { c.Dropout = 1 }},
		{"zero eps", func(c *TransformerConfig) { c.NormEps = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testBlockConfig()
			tt.modify(&cfg)
			assert.Error(t, cfg.Validate())

			_, err := NewTransformerBlock(cfg, testInit(1), rand.New(rand.NewSource(1)), cpu.New())
			assert.Error(t, err)
		})
	}

	cfg := testBlockConfig()
	cfg.Activation = "swish"
	_, err := NewTransformerBlock(cfg, testInit(1), rand.New(rand.NewSource(1)), cpu.New())
	assert.Error(t, err)
}

func TestSequential(t *testing.T) {
	b0 := newTestBlock(t, 1)
	b1 := newTestBlock(t, 2)
	stack := NewSequential(b0)
	stack.Add(b1)
	assert.Equal(t, 2, stack.Len())
	assert.Same(t, b1, stack.Block(1))

	x := randInput(tensor.Shape{1, 3, 16}, 4)
	out, err := stack.Forward(x, nil, ModeInference)
	require.NoError(t, err)

	// Same as applying the blocks by hand.
	h, err := b0.Forward(x, nil, ModeInference)
	require.NoError(t, err)
	h, err = b1.Forward(h, nil, ModeInference)
	require.NoError(t, err)
	assert.Equal(t, h.Data(), out.Data())

	params := stack.Parameters()
	assert.Equal(t, "0.attn.wq.weight", params[0].Name())
	assert.Equal(t, "1.attn.wq.weight", params[13].Name())
}

func TestSequential_PropagatesErrors(t *testing.T) {
	stack := NewSequential(newTestBlock(t, 1))
	_, err := stack.Forward(tensor.Zeros[float32](tensor.Shape{1, 3, 8}), nil, ModeInference)
	require.ErrorIs(t, err, tensor.ErrShape)
	assert.Contains(t, err.Error(), "block 0")
}
