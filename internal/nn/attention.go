package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/gptgen/internal/tensor"
)

// ScaledDotProductAttention computes attention with the scaled dot-product mechanism:
//
//	Attention(Q, K, V) = softmax(QK^T / sqrt(d_k)) * V
//
// Parameters:
//   - query: Query tensor [batch, heads, seq_q, head_dim]
//   - key: Key tensor [batch, heads, seq_k, head_dim]
//   - value: Value tensor [batch, heads, seq_k, head_dim]
//   - mask: Optional 0/1 mask broadcastable to [batch, heads, seq_q, seq_k], or nil.
//     Positions where mask == 0 receive -Inf before the softmax.
//   - scale: Scaling factor (0 for auto-compute as 1/sqrt(head_dim))
//
// Returns:
//   - output: Attended values [batch, heads, seq_q, head_dim]
//   - weights: Attention weights [batch, heads, seq_q, seq_k]
//
// A query row whose keys are all masked yields a *tensor.NumericalError.
func ScaledDotProductAttention(
	backend tensor.Backend,
	query, key, value *tensor.Tensor[float32],
	mask *tensor.Tensor[float32],
	scale float32,
) (*tensor.Tensor[float32], *tensor.Tensor[float32], error) {
	if err := validateAttentionInputs(query, key, value); err != nil {
		return nil, nil, err
	}

	if scale == 0 {
		scale = float32(1.0 / math.Sqrt(float64(query.Shape()[3])))
	}

	// 1. scores = Q @ K^T: [b, h, seq_q, d] @ [b, h, d, seq_k]
	kT, err := backend.Transpose(key, 0, 1, 3, 2)
	if err != nil {
		return nil, nil, err
	}
	scores, err := backend.BatchMatMul(query, kT)
	if err != nil {
		return nil, nil, fmt.Errorf("attention scores: %w", err)
	}

	// 2. Scale
	scores = backend.MulScalar(scores, scale)

	// 3. Mask
	if mask != nil {
		scores, err = backend.MaskedFill(scores, mask, float32(math.Inf(-1)))
		if err != nil {
			return nil, nil, fmt.Errorf("attention mask: %w", err)
		}
	}

	// 4. Softmax over keys
	weights, err := backend.Softmax(scores, -1)
	if err != nil {
		return nil, nil, fmt.Errorf("attention weights: %w", err)
	}

	// 5. weights @ V: [b, h, seq_q, seq_k] @ [b, h, seq_k, d]
	output, err := backend.BatchMatMul(weights, value)
	if err != nil {
		return nil, nil, fmt.Errorf("attention context: %w", err)
	}
	return output, weights, nil
}

func validateAttentionInputs(query, key, value *tensor.Tensor[float32]) error {
	q, k, v := query.Shape(), key.Shape(), value.Shape()
	if len(q) != 4 || len(k) != 4 || len(v) != 4 {
		return &tensor.ShapeError{Op: "attention", Expected: tensor.Shape{-1, -1, -1, -1}, Actual: q, Detail: "query, key and value must be 4D"}
	}
	if q[0] != k[0] || q[1] != k[1] || q[3] != k[3] {
		return &tensor.ShapeError{Op: "attention", Expected: q, Actual: k, Detail: "query/key mismatch"}
	}
	if !k.Equal(v) {
		return &tensor.ShapeError{Op: "attention", Expected: k, Actual: v, Detail: "key/value mismatch"}
	}
	return nil
}

// CausalMask returns a [1, 1, seqLen, seqLen] 0/1 mask where position i may
// attend to positions j <= i.
//
// The mask broadcasts over batch and heads:
//
//	mask := nn.CausalMask(16)
//	out, err := mha.Forward(x, mask, nn.ModeInference)
func CausalMask(seqLen int) *tensor.Tensor[float32] {
	mask := tensor.Zeros[float32](tensor.Shape{1, 1, seqLen, seqLen})
	data := mask.Data()
	for i := 0; i < seqLen; i++ {
		for j := 0; j <= i; j++ {
			data[i*seqLen+j] = 1
		}
	}
	return mask
}
