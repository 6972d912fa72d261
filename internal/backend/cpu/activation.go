package cpu

import (
	"math"

	"github.com/born-ml/gptgen/internal/parallel"
	"github.com/born-ml/gptgen/internal/tensor"
)

// sqrt(2/pi), used by the tanh approximation of GELU.
const geluCoeff = 0.7978845608028654

// Softmax computes softmax along the specified dimension.
// Softmax(x_i) = exp(x_i - max) / sum(exp(x_j - max)) for all j in dimension.
//
// A slice whose inputs are all -Inf has no defined distribution; Softmax
// reports it as a *tensor.NumericalError naming the first such slice.
func (cpu *CPUBackend) Softmax(x *tensor.Tensor[float32], dim int) (*tensor.Tensor[float32], error) {
	shape := x.Shape()
	dim, err := tensor.NormalizeDim(dim, len(shape))
	if err != nil {
		return nil, err
	}

	out := tensor.Zeros[float32](shape)
	src, dst := x.Data(), out.Data()

	dimSize := shape[dim]
	inner := shape[dim+1:].NumElements()
	outer := shape[:dim].NumElements()
	numRows := outer * inner
	degenerate := make([]bool, numRows)

	cpu.forRows(numRows, dimSize, func(row int) {
		base := (row/inner)*dimSize*inner + row%inner
		maxVal := float32(math.Inf(-1))
		for j := 0; j < dimSize; j++ {
			if v := src[base+j*inner]; v > maxVal {
				maxVal = v
			}
		}
		if math.IsInf(float64(maxVal), -1) {
			degenerate[row] = true
			return
		}

		var sum float32
		for j := 0; j < dimSize; j++ {
			e := float32(math.Exp(float64(src[base+j*inner] - maxVal)))
			dst[base+j*inner] = e
			sum += e
		}
		inv := 1 / sum
		for j := 0; j < dimSize; j++ {
			dst[base+j*inner] *= inv
		}
	})

	for row, bad := range degenerate {
		if bad {
			return nil, &tensor.NumericalError{
				Op:     "softmax",
				Row:    row,
				Reason: "all inputs are -Inf (fully masked)",
			}
		}
	}
	return out, nil
}

// GELU applies the Gaussian Error Linear Unit (tanh approximation):
// 0.5 * x * (1 + tanh(sqrt(2/pi) * (x + 0.044715 * x^3))).
func (cpu *CPUBackend) GELU(x *tensor.Tensor[float32]) *tensor.Tensor[float32] {
	return unaryOp(x, func(v float32) float32 {
		f := float64(v)
		return float32(0.5 * f * (1 + math.Tanh(geluCoeff*(f+0.044715*f*f*f))))
	})
}

// ReLU applies max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.Tensor[float32]) *tensor.Tensor[float32] {
	return unaryOp(x, func(v float32) float32 {
		if v > 0 {
			return v
		}
		return 0
	})
}

// forRows runs f over rows, splitting across goroutines when rows are
// numerous or long enough to amortize the fan-out.
func (cpu *CPUBackend) forRows(numRows, rowLen int, f func(row int)) {
	cfg := cpu.par
	if rowLen >= 1024 {
		cfg = cfg.WithMinChunkSize(1)
	}
	parallel.For(numRows, f, cfg)
}
