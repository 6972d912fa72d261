package nn

import (
	"fmt"

	"github.com/born-ml/gptgen/internal/tensor"
)

// MultiHeadAttention implements multi-head self-attention.
//
// Architecture:
//
//	MHA(X) = Concat(head_1, ..., head_h) * W_O
//	head_i = SDPA(X*W_Q_i, X*W_K_i, X*W_V_i)
//
// The Q, K and V projections carry a bias only when requested; the output
// projection always has one.
//
// Example:
//
//	mha := nn.NewMultiHeadAttention(768, 12, false, init, backend) // 768 dim, 12 heads
//	output, err := mha.Forward(x, nil, nn.ModeInference)
type MultiHeadAttention struct {
	WQ       *Linear // Query projection [embed_dim, embed_dim]
	WK       *Linear // Key projection [embed_dim, embed_dim]
	WV       *Linear // Value projection [embed_dim, embed_dim]
	WO       *Linear // Output projection [embed_dim, embed_dim]
	NumHeads int
	HeadDim  int
	EmbedDim int
	backend  tensor.Backend
}

// NewMultiHeadAttention creates a new multi-head attention module.
//
// The head dimension is computed as embedDim / numHeads:
//
//	mha := nn.NewMultiHeadAttention(768, 12, false, init, backend)
//	// embedDim=768, numHeads=12 -> headDim=64
func NewMultiHeadAttention(embedDim, numHeads int, qkvBias bool, init Initializer, backend tensor.Backend) *MultiHeadAttention {
	if numHeads <= 0 || embedDim%numHeads != 0 {
		panic(fmt.Sprintf("MultiHeadAttention: embed_dim (%d) must be divisible by num_heads (%d)", embedDim, numHeads))
	}

	return &MultiHeadAttention{
		WQ:       NewLinear(embedDim, embedDim, qkvBias, init, backend),
		WK:       NewLinear(embedDim, embedDim, qkvBias, init, backend),
		WV:       NewLinear(embedDim, embedDim, qkvBias, init, backend),
		WO:       NewLinear(embedDim, embedDim, true, init, backend),
		NumHeads: numHeads,
		HeadDim:  embedDim / numHeads,
		EmbedDim: embedDim,
		backend:  backend,
	}
}

// Forward computes multi-head self-attention.
//
// Args:
//   - x: Input tensor [batch, seq, embed_dim]
//   - mask: Optional 0/1 mask broadcastable to [batch, num_heads, seq, seq], or nil
//   - mode: unused by attention itself; accepted so MHA satisfies the same
//     calling convention as blocks
//
// Returns the output [batch, seq, embed_dim].
func (m *MultiHeadAttention) Forward(x, mask *tensor.Tensor[float32], _ Mode) (*tensor.Tensor[float32], error) {
	out, _, err := m.ForwardWithWeights(x, mask)
	return out, err
}

// ForwardWithWeights computes multi-head self-attention and also returns the
// attention weights [batch, num_heads, seq, seq] for inspection.
func (m *MultiHeadAttention) ForwardWithWeights(x, mask *tensor.Tensor[float32]) (*tensor.Tensor[float32], *tensor.Tensor[float32], error) {
	shape := x.Shape()
	if len(shape) != 3 || shape[2] != m.EmbedDim {
		return nil, nil, &tensor.ShapeError{Op: "multi-head attention", Expected: tensor.Shape{-1, -1, m.EmbedDim}, Actual: shape}
	}
	batch, seq := shape[0], shape[1]

	// 1. Project Q, K, V and split heads: [batch, num_heads, seq, head_dim]
	q, err := m.projectHeads(x, m.WQ, batch, seq)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	k, err := m.projectHeads(x, m.WK, batch, seq)
	if err != nil {
		return nil, nil, fmt.Errorf("key: %w", err)
	}
	v, err := m.projectHeads(x, m.WV, batch, seq)
	if err != nil {
		return nil, nil, fmt.Errorf("value: %w", err)
	}

	// 2. Scaled dot-product attention per head
	context, weights, err := ScaledDotProductAttention(m.backend, q, k, v, mask, 0)
	if err != nil {
		return nil, nil, err
	}

	// 3. Merge heads: [batch, num_heads, seq, head_dim] -> [batch, seq, embed_dim]
	context, err = m.backend.Transpose(context, 0, 2, 1, 3)
	if err != nil {
		return nil, nil, err
	}
	context, err = context.Reshape(batch, seq, m.EmbedDim)
	if err != nil {
		return nil, nil, err
	}

	// 4. Output projection
	output, err := m.WO.Forward(context)
	if err != nil {
		return nil, nil, fmt.Errorf("output projection: %w", err)
	}
	return output, weights, nil
}

// projectHeads applies a projection and splits the result into heads.
func (m *MultiHeadAttention) projectHeads(x *tensor.Tensor[float32], proj *Linear, batch, seq int) (*tensor.Tensor[float32], error) {
	projected, err := proj.Forward(x)
	if err != nil {
		return nil, err
	}
	// [batch, seq, embed_dim] -> [batch, seq, num_heads, head_dim] -> [batch, num_heads, seq, head_dim]
	split, err := projected.Reshape(batch, seq, m.NumHeads, m.HeadDim)
	if err != nil {
		return nil, err
	}
	return m.backend.Transpose(split, 0, 2, 1, 3)
}

// Parameters returns all trainable parameters (WQ, WK, WV, WO weights and biases).
func (m *MultiHeadAttention) Parameters() []*Parameter {
	params := make([]*Parameter, 0, 8)
	params = append(params, WithPrefix("wq", m.WQ.Parameters())...)
	params = append(params, WithPrefix("wk", m.WK.Parameters())...)
	params = append(params, WithPrefix("wv", m.WV.Parameters())...)
	params = append(params, WithPrefix("wo", m.WO.Parameters())...)
	return params
}
