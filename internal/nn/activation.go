package nn

import (
	"fmt"

	"github.com/born-ml/gptgen/internal/tensor"
)

// Activation is an element-wise non-linearity.
type Activation interface {
	Forward(x *tensor.Tensor[float32]) *tensor.Tensor[float32]
	Name() string
}

// GELU applies the Gaussian Error Linear Unit (tanh approximation).
//
// Used by GPT-2 in the feed-forward network.
type GELU struct {
	backend tensor.Backend
}

// NewGELU creates a new GELU activation.
func NewGELU(backend tensor.Backend) *GELU {
	return &GELU{backend: backend}
}

// Forward applies GELU element-wise.
func (g *GELU) Forward(x *tensor.Tensor[float32]) *tensor.Tensor[float32] {
	return g.backend.GELU(x)
}

// Name returns "gelu".
func (g *GELU) Name() string { return "gelu" }

// ReLU applies the Rectified Linear Unit activation: max(0, x).
type ReLU struct {
	backend tensor.Backend
}

// NewReLU creates a new ReLU activation.
func NewReLU(backend tensor.Backend) *ReLU {
	return &ReLU{backend: backend}
}

// Forward applies ReLU element-wise.
func (r *ReLU) Forward(x *tensor.Tensor[float32]) *tensor.Tensor[float32] {
	return r.backend.ReLU(x)
}

// Name returns "relu".
func (r *ReLU) Name() string { return "relu" }

// NewActivation returns the activation registered under name
// ("gelu" or "relu").
func NewActivation(name string, backend tensor.Backend) (Activation, error) {
	switch name {
	case "gelu":
		return NewGELU(backend), nil
	case "relu":
		return NewReLU(backend), nil
	default:
		return nil, fmt.Errorf("unknown activation %q (want gelu or relu)", name)
	}
}
