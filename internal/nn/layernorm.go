package nn

import (
	"fmt"

	"github.com/born-ml/gptgen/internal/tensor"
)

// LayerNorm applies Layer Normalization over the last dimension.
//
// Formula: Y = gamma * (X - mean(X)) / sqrt(var(X) + eps) + beta
//
// Where:
//   - gamma is the learnable scale parameter [d_model], initialized to ones
//   - beta is the learnable shift parameter [d_model], initialized to zeros
//   - mean and variance are the population statistics of the last dimension
//   - eps is a small value to avoid division by zero (1e-5)
//
// Example:
//
//	layernorm := nn.NewLayerNorm(768, 1e-5, backend)
//	output, err := layernorm.Forward(hiddenStates) // [..., 768] -> [..., 768]
type LayerNorm struct {
	Gamma   *Parameter // learnable scale [d_model]
	Beta    *Parameter // learnable shift [d_model]
	Epsilon float32    // numerical stability constant
	backend tensor.Backend
}

// NewLayerNorm creates a new LayerNorm layer with gamma = 1 and beta = 0.
func NewLayerNorm(normalizedShape int, epsilon float32, backend tensor.Backend) *LayerNorm {
	return &LayerNorm{
		Gamma:   NewParameter("gamma", Ones(tensor.Shape{normalizedShape})),
		Beta:    NewParameter("beta", Zeros(tensor.Shape{normalizedShape})),
		Epsilon: epsilon,
		backend: backend,
	}
}

// Forward applies LayerNorm to the input tensor.
func (l *LayerNorm) Forward(x *tensor.Tensor[float32]) (*tensor.Tensor[float32], error) {
	xNorm, err := l.Normalize(x)
	if err != nil {
		return nil, err
	}

	// [..., d_model] * [d_model] broadcasts over the leading dimensions.
	scaled, err := l.backend.Mul(xNorm, l.Gamma.Tensor())
	if err != nil {
		return nil, fmt.Errorf("layer norm scale: %w", err)
	}
	out, err := l.backend.Add(scaled, l.Beta.Tensor())
	if err != nil {
		return nil, fmt.Errorf("layer norm shift: %w", err)
	}
	return out, nil
}

// Normalize returns (x - mean) / sqrt(var + eps) along the last dimension,
// before gamma and beta are applied.
//
// Algorithm:
//  1. mean = mean(x) along last dimension (keepdim)
//  2. centered = x - mean
//  3. variance = mean(centered^2) along last dimension (population)
//  4. normalized = centered * rsqrt(variance + eps)
func (l *LayerNorm) Normalize(x *tensor.Tensor[float32]) (*tensor.Tensor[float32], error) {
	if x.Shape().Last() != l.Gamma.NumElements() {
		expected := x.Shape().Clone()
		if len(expected) > 0 {
			expected[len(expected)-1] = l.Gamma.NumElements()
		}
		return nil, &tensor.ShapeError{Op: "layer norm", Expected: expected, Actual: x.Shape()}
	}

	mean, err := l.backend.MeanDim(x, -1, true)
	if err != nil {
		return nil, fmt.Errorf("layer norm mean: %w", err)
	}
	centered, err := l.backend.Sub(x, mean)
	if err != nil {
		return nil, fmt.Errorf("layer norm center: %w", err)
	}
	squared, err := l.backend.Mul(centered, centered)
	if err != nil {
		return nil, fmt.Errorf("layer norm square: %w", err)
	}
	variance, err := l.backend.MeanDim(squared, -1, true)
	if err != nil {
		return nil, fmt.Errorf("layer norm variance: %w", err)
	}

	rstd := l.backend.Rsqrt(l.backend.AddScalar(variance, l.Epsilon))
	out, err := l.backend.Mul(centered, rstd)
	if err != nil {
		return nil, fmt.Errorf("layer norm normalize: %w", err)
	}
	return out, nil
}

// Parameters returns the learnable parameters (gamma and beta).
func (l *LayerNorm) Parameters() []*Parameter {
	return []*Parameter{l.Gamma, l.Beta}
}
