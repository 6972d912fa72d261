package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/gptgen/internal/tensor"
)

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.Tensor[float32]) (*tensor.Tensor[float32], error) {
	return binaryOp("add", a, b, func(x, y float32) float32 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.Tensor[float32]) (*tensor.Tensor[float32], error) {
	return binaryOp("sub", a, b, func(x, y float32) float32 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.Tensor[float32]) (*tensor.Tensor[float32], error) {
	return binaryOp("mul", a, b, func(x, y float32) float32 { return x * y })
}

// AddScalar adds a scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.Tensor[float32], scalar float32) *tensor.Tensor[float32] {
	return unaryOp(x, func(v float32) float32 { return v + scalar })
}

// MulScalar multiplies every element by a scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.Tensor[float32], scalar float32) *tensor.Tensor[float32] {
	return unaryOp(x, func(v float32) float32 { return v * scalar })
}

// Rsqrt computes 1/sqrt(x) element-wise.
func (cpu *CPUBackend) Rsqrt(x *tensor.Tensor[float32]) *tensor.Tensor[float32] {
	return unaryOp(x, func(v float32) float32 {
		return float32(1 / math.Sqrt(float64(v)))
	})
}

func unaryOp(x *tensor.Tensor[float32], f func(float32) float32) *tensor.Tensor[float32] {
	out := tensor.Zeros[float32](x.Shape())
	dst, src := out.Data(), x.Data()
	for i, v := range src {
		dst[i] = f(v)
	}
	return out
}

// binaryOp applies f element-wise, broadcasting a and b to a common shape.
func binaryOp(
	op string,
	a, b *tensor.Tensor[float32],
	f func(x, y float32) float32,
) (*tensor.Tensor[float32], error) {
	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	out := tensor.Zeros[float32](outShape)
	dst, ad, bd := out.Data(), a.Data(), b.Data()

	// Fast path: identical shapes.
	if !needsBroadcast {
		for i := range dst {
			dst[i] = f(ad[i], bd[i])
		}
		return out, nil
	}

	aStrides := tensor.BroadcastStrides(a.Shape(), outShape)
	bStrides := tensor.BroadcastStrides(b.Shape(), outShape)
	idx := make([]int, len(outShape))
	ai, bi := 0, 0
	for i := range dst {
		dst[i] = f(ad[ai], bd[bi])

		// Advance the multi-index, carrying into outer dimensions.
		for d := len(outShape) - 1; d >= 0; d-- {
			idx[d]++
			ai += aStrides[d]
			bi += bStrides[d]
			if idx[d] < outShape[d] {
				break
			}
			ai -= aStrides[d] * outShape[d]
			bi -= bStrides[d] * outShape[d]
			idx[d] = 0
		}
	}
	return out, nil
}
