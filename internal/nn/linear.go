package nn

import (
	"fmt"

	"github.com/born-ml/gptgen/internal/tensor"
)

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [..., in_features]
//   - W is the weight matrix with shape [out_features, in_features]
//   - b is the optional bias vector with shape [out_features]
//   - y is the output tensor with shape [..., out_features]
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewLinear(768, 3072, true, nn.NormalInit(0.02, rng), backend)
//	output, err := layer.Forward(input) // [2, 16, 768] -> [2, 16, 3072]
type Linear struct {
	inFeatures  int
	outFeatures int
	weight      *Parameter // [out_features, in_features]
	bias        *Parameter // [out_features], nil when disabled
	backend     tensor.Backend
}

// NewLinear creates a new Linear layer.
//
// Weights are drawn from init. When bias is true the bias is initialized to
// zeros, otherwise the layer has no bias parameter.
func NewLinear(inFeatures, outFeatures int, bias bool, init Initializer, backend tensor.Backend) *Linear {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("Linear: features must be positive, got in=%d out=%d", inFeatures, outFeatures))
	}

	l := &Linear{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", init(tensor.Shape{outFeatures, inFeatures})),
		backend:     backend,
	}
	if bias {
		l.bias = NewParameter("bias", Zeros(tensor.Shape{outFeatures}))
	}
	return l
}

// Forward computes the output of the linear layer.
//
// Input of any rank >= 2 is flattened to [N, in_features] for the matrix
// product and reshaped back, so [batch, seq, in] maps to [batch, seq, out].
func (l *Linear) Forward(input *tensor.Tensor[float32]) (*tensor.Tensor[float32], error) {
	inputShape := input.Shape()
	if len(inputShape) < 2 || inputShape.Last() != l.inFeatures {
		expected := inputShape.Clone()
		if len(expected) > 0 {
			expected[len(expected)-1] = l.inFeatures
		}
		return nil, &tensor.ShapeError{Op: "linear", Expected: expected, Actual: inputShape}
	}

	input2D, err := input.Reshape(-1, l.inFeatures)
	if err != nil {
		return nil, err
	}

	// x @ W.T: [N, in] @ [out, in]ᵀ = [N, out]
	output, err := l.backend.MatMulTransB(input2D, l.weight.Tensor())
	if err != nil {
		return nil, fmt.Errorf("linear: %w", err)
	}

	if l.bias != nil {
		// [N, out] + [out] broadcasts over rows.
		output, err = l.backend.Add(output, l.bias.Tensor())
		if err != nil {
			return nil, fmt.Errorf("linear bias: %w", err)
		}
	}

	outShape := inputShape.Clone()
	outShape[len(outShape)-1] = l.outFeatures
	return output.Reshape(outShape...)
}

// Parameters returns the trainable parameters of this layer.
//
// Returns [weight, bias] if bias is present, otherwise [weight].
func (l *Linear) Parameters() []*Parameter {
	if l.bias != nil {
		return []*Parameter{l.weight, l.bias}
	}
	return []*Parameter{l.weight}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter, or nil if the layer has no bias.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Linear) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Linear) OutFeatures() int {
	return l.outFeatures
}
