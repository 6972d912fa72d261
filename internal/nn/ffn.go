package nn

import (
	"fmt"

	"github.com/born-ml/gptgen/internal/tensor"
)

// FFN implements the position-wise Feed-Forward Network.
//
// Architecture:
//
//	FFN(x) = Linear2(Act(Linear1(x)))
//
// Where:
//   - Linear1: [embed_dim → ffn_dim] (expansion, with bias)
//   - Act: GELU by default, ReLU selectable
//   - Linear2: [ffn_dim → embed_dim] (projection back, with bias)
//
// GPT-2 uses ffn_dim = 4 * embed_dim.
//
// Example:
//
//	ffn := nn.NewFFN(768, 3072, nn.NewGELU(backend), init, backend)
//	output, err := ffn.Forward(x) // [batch, seq, 768] -> [batch, seq, 768]
type FFN struct {
	Linear1    *Linear // [embed_dim → ffn_dim]
	Linear2    *Linear // [ffn_dim → embed_dim]
	Activation Activation
}

// NewFFN creates a new Feed-Forward Network.
func NewFFN(embedDim, ffnDim int, act Activation, init Initializer, backend tensor.Backend) *FFN {
	return &FFN{
		Linear1:    NewLinear(embedDim, ffnDim, true, init, backend),
		Linear2:    NewLinear(ffnDim, embedDim, true, init, backend),
		Activation: act,
	}
}

// Forward computes the FFN output. The output shape equals the input shape.
func (f *FFN) Forward(x *tensor.Tensor[float32]) (*tensor.Tensor[float32], error) {
	hidden, err := f.Linear1.Forward(x)
	if err != nil {
		return nil, fmt.Errorf("ffn expand: %w", err)
	}
	hidden = f.Activation.Forward(hidden)
	out, err := f.Linear2.Forward(hidden)
	if err != nil {
		return nil, fmt.Errorf("ffn project: %w", err)
	}
	return out, nil
}

// Parameters returns the parameters of both linear layers.
func (f *FFN) Parameters() []*Parameter {
	params := make([]*Parameter, 0, 4)
	params = append(params, WithPrefix("fc1", f.Linear1.Parameters())...)
	params = append(params, WithPrefix("fc2", f.Linear2.Parameters())...)
	return params
}
