package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/gptgen/internal/tensor"
)

// TransformerConfig defines the configuration for a Transformer Block.
type TransformerConfig struct {
	EmbedDim   int     // d_model: Embedding dimension (e.g., 768 for GPT-2)
	NumHeads   int     // Number of attention heads (e.g., 12 for GPT-2)
	FFNDim     int     // FFN hidden dimension (4 * EmbedDim = 3072 for GPT-2)
	Dropout    float32 // Dropout rate applied to both residual branches in training mode
	QKVBias    bool    // Bias on the query, key and value projections
	Activation string  // FFN activation: "gelu" or "relu"
	NormEps    float32 // LayerNorm epsilon (1e-5)
}

// Validate checks the block configuration.
func (c TransformerConfig) Validate() error {
	switch {
	case c.EmbedDim <= 0:
		return fmt.Errorf("embed_dim must be positive, got %d", c.EmbedDim)
	case c.NumHeads <= 0:
		return fmt.Errorf("num_heads must be positive, got %d", c.NumHeads)
	case c.EmbedDim%c.NumHeads != 0:
		return fmt.Errorf("embed_dim (%d) must be divisible by num_heads (%d)", c.EmbedDim, c.NumHeads)
	case c.FFNDim <= 0:
		return fmt.Errorf("ffn_dim must be positive, got %d", c.FFNDim)
	case c.Dropout < 0 || c.Dropout >= 1:
		return fmt.Errorf("dropout must be in [0, 1), got %v", c.Dropout)
	case c.NormEps <= 0:
		return fmt.Errorf("norm_eps must be positive, got %v", c.NormEps)
	}
	return nil
}

// TransformerBlock implements a post-norm transformer block.
//
// Architecture:
//
//	x → MHA → Dropout → + → LayerNorm → FFN → Dropout → + → LayerNorm → output
//	↑_________________|      ↑_____________________|
//	   (residual)                 (residual)
//
// That is:
//
//	X1 = LN1(X + Dropout(Attn(X, mask)))
//	X2 = LN2(X1 + Dropout(FFN(X1)))
//
// Example:
//
//	config := nn.TransformerConfig{
//	    EmbedDim:   768,
//	    NumHeads:   12,
//	    FFNDim:     3072,
//	    Activation: "gelu",
//	    NormEps:    1e-5,
//	}
//	block, err := nn.NewTransformerBlock(config, init, rng, backend)
//	output, err := block.Forward(x, nil, nn.ModeInference) // [batch, seq, 768] -> [batch, seq, 768]
type TransformerBlock struct {
	Config      TransformerConfig
	Attention   *MultiHeadAttention
	AttnDropout *Dropout
	AttnNorm    *LayerNorm
	FFN         *FFN
	FFNDropout  *Dropout
	FFNNorm     *LayerNorm
}

// NewTransformerBlock creates a new Transformer Block.
//
// Weights are drawn from init; rng drives dropout in training mode.
func NewTransformerBlock(config TransformerConfig, init Initializer, rng *rand.Rand, backend tensor.Backend) (*TransformerBlock, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("transformer block: %w", err)
	}
	act, err := NewActivation(config.Activation, backend)
	if err != nil {
		return nil, fmt.Errorf("transformer block: %w", err)
	}

	lr := &lockedRand{rng: rng}
	return &TransformerBlock{
		Config:      config,
		Attention:   NewMultiHeadAttention(config.EmbedDim, config.NumHeads, config.QKVBias, init, backend),
		AttnDropout: newDropout(config.Dropout, lr, backend),
		AttnNorm:    NewLayerNorm(config.EmbedDim, config.NormEps, backend),
		FFN:         NewFFN(config.EmbedDim, config.FFNDim, act, init, backend),
		FFNDropout:  newDropout(config.Dropout, lr, backend),
		FFNNorm:     NewLayerNorm(config.EmbedDim, config.NormEps, backend),
	}, nil
}

// Forward computes the transformer block output.
//
// Args:
//   - x: Input tensor [batch, seq, embed_dim]
//   - mask: Optional 0/1 attention mask, or nil
//   - mode: ModeInference disables dropout
//
// Returns the output [batch, seq, embed_dim].
func (t *TransformerBlock) Forward(x, mask *tensor.Tensor[float32], mode Mode) (*tensor.Tensor[float32], error) {
	backend := t.Attention.backend

	// 1. Attention -> Dropout -> Add residual -> Norm
	attnOut, err := t.Attention.Forward(x, mask, mode)
	if err != nil {
		return nil, fmt.Errorf("attention: %w", err)
	}
	if attnOut, err = t.AttnDropout.Forward(attnOut, mode); err != nil {
		return nil, err
	}
	if x, err = backend.Add(x, attnOut); err != nil {
		return nil, fmt.Errorf("attention residual: %w", err)
	}
	if x, err = t.AttnNorm.Forward(x); err != nil {
		return nil, err
	}

	// 2. FFN -> Dropout -> Add residual -> Norm
	ffnOut, err := t.FFN.Forward(x)
	if err != nil {
		return nil, err
	}
	if ffnOut, err = t.FFNDropout.Forward(ffnOut, mode); err != nil {
		return nil, err
	}
	if x, err = backend.Add(x, ffnOut); err != nil {
		return nil, fmt.Errorf("ffn residual: %w", err)
	}
	return t.FFNNorm.Forward(x)
}

// Parameters returns all trainable parameters.
//
// For GPT-2 768d/12h without QKV bias:
//   - Attention: 4 * 768*768 + 768 = 2,360,064
//   - FFN: 768*3072 + 3072 + 3072*768 + 768 = 4,722,432
//   - Two LayerNorms: 2 * 1536 = 3,072
func (t *TransformerBlock) Parameters() []*Parameter {
	params := make([]*Parameter, 0, 16)
	params = append(params, WithPrefix("attn", t.Attention.Parameters())...)
	params = append(params, WithPrefix("ln1", t.AttnNorm.Parameters())...)
	params = append(params, WithPrefix("ffn", t.FFN.Parameters())...)
	params = append(params, WithPrefix("ln2", t.FFNNorm.Parameters())...)
	return params
}

var (
	_ Block = (*TransformerBlock)(nil)
	_ Block = (*MultiHeadAttention)(nil)
	_ Block = (*Sequential)(nil)
)
