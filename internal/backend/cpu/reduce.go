package cpu

import (
	"github.com/born-ml/gptgen/internal/tensor"
)

// MeanDim computes the arithmetic mean along dim.
// With keepDim the reduced dimension is kept with size 1.
func (cpu *CPUBackend) MeanDim(x *tensor.Tensor[float32], dim int, keepDim bool) (*tensor.Tensor[float32], error) {
	shape := x.Shape()
	dim, err := tensor.NormalizeDim(dim, len(shape))
	if err != nil {
		return nil, err
	}

	out := tensor.Zeros[float32](reducedShape(shape, dim, keepDim))
	src, dst := x.Data(), out.Data()
	dimSize := shape[dim]
	inner := shape[dim+1:].NumElements()

	for row := range dst {
		base := (row/inner)*dimSize*inner + row%inner
		var sum float32
		for j := 0; j < dimSize; j++ {
			sum += src[base+j*inner]
		}
		dst[row] = sum / float32(dimSize)
	}
	return out, nil
}

// Argmax returns the index of the maximum value along dim.
// Ties resolve to the first (lowest) index.
func (cpu *CPUBackend) Argmax(x *tensor.Tensor[float32], dim int) (*tensor.Tensor[int32], error) {
	shape := x.Shape()
	dim, err := tensor.NormalizeDim(dim, len(shape))
	if err != nil {
		return nil, err
	}

	out := tensor.Zeros[int32](reducedShape(shape, dim, false))
	src, dst := x.Data(), out.Data()
	dimSize := shape[dim]
	inner := shape[dim+1:].NumElements()

	for row := range dst {
		base := (row/inner)*dimSize*inner + row%inner
		best := 0
		bestVal := src[base]
		for j := 1; j < dimSize; j++ {
			if v := src[base+j*inner]; v > bestVal {
				best, bestVal = j, v
			}
		}
		dst[row] = int32(best) //nolint:gosec // G115: dimension sizes fit in int32.
	}
	return out, nil
}

func reducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	out := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		switch {
		case i != dim:
			out = append(out, d)
		case keepDim:
			out = append(out, 1)
		}
	}
	return out
}
