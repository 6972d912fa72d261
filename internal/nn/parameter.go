package nn

import (
	"github.com/born-ml/gptgen/internal/tensor"
)

// Parameter represents a learnable weight tensor of a layer.
//
// Example:
//
//	weight := nn.NewParameter("weight", weightTensor)
//	w := weight.Tensor()
type Parameter struct {
	name   string                  // Parameter name (e.g., "weight", "blocks.0.attn.wq.bias")
	tensor *tensor.Tensor[float32] // The parameter tensor
}

// NewParameter creates a new parameter.
func NewParameter(name string, t *tensor.Tensor[float32]) *Parameter {
	return &Parameter{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor[float32] {
	return p.tensor
}

// NumElements returns the number of scalar weights in the parameter.
func (p *Parameter) NumElements() int {
	return p.tensor.NumElements()
}

// WithPrefix returns params renamed to "prefix.name". The tensors are shared.
func WithPrefix(prefix string, params []*Parameter) []*Parameter {
	out := make([]*Parameter, len(params))
	for i, p := range params {
		out[i] = &Parameter{name: prefix + "." + p.name, tensor: p.tensor}
	}
	return out
}

// CountParameters returns the total number of scalar weights in params.
func CountParameters(params []*Parameter) int {
	n := 0
	for _, p := range params {
		n += p.NumElements()
	}
	return n
}
