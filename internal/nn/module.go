// Package nn implements the layers of a decoder-only transformer.
//
// This package provides the building blocks composed by package gpt:
//   - Module and Block interfaces
//   - Parameter: named weight tensors
//   - Linear, Embedding, SinusoidalPositionalEncoding
//   - LayerNorm, Dropout, GELU and ReLU activations
//   - FFN, MultiHeadAttention, TransformerBlock
//   - Sequential: container for stacking blocks
//
// Layers never mutate their inputs or their parameters during Forward, so a
// built layer can serve concurrent forward passes.
package nn

import (
	"github.com/born-ml/gptgen/internal/tensor"
)

// Mode selects between inference and training behavior for layers that
// differ between the two (currently only Dropout).
type Mode int

const (
	// ModeInference disables dropout. This is the mode used for generation.
	ModeInference Mode = iota

	// ModeTraining enables inverted dropout.
	ModeTraining
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeInference:
		return "inference"
	case ModeTraining:
		return "training"
	default:
		return "unknown"
	}
}

// Module is the base interface for all neural network components.
//
// Parameters returns the trainable parameters of the module, including those
// of nested modules. Modules without parameters return an empty slice.
type Module interface {
	Parameters() []*Parameter
}

// Block is a sequence-to-sequence module that can be stacked in a
// Sequential. Input and output share the shape [batch, seq, embed_dim].
//
// mask is optional (nil means every position may attend to every position)
// and is forwarded to attention sub-layers unchanged.
type Block interface {
	Module
	Forward(x, mask *tensor.Tensor[float32], mode Mode) (*tensor.Tensor[float32], error)
}
