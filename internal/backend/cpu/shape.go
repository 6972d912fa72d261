package cpu

import (
	"fmt"

	"github.com/born-ml/gptgen/internal/tensor"
)

// Transpose permutes the dimensions of x.
//
// With no axes, the last two dimensions are swapped. Otherwise axes must be a
// permutation of [0, rank).
func (cpu *CPUBackend) Transpose(x *tensor.Tensor[float32], axes ...int) (*tensor.Tensor[float32], error) {
	shape := x.Shape()
	rank := len(shape)

	if len(axes) == 0 {
		if rank < 2 {
			return nil, &tensor.ShapeError{Op: "transpose", Expected: tensor.Shape{-1, -1}, Actual: shape, Detail: "need at least 2 dimensions"}
		}
		axes = make([]int, rank)
		for i := range axes {
			axes[i] = i
		}
		axes[rank-1], axes[rank-2] = axes[rank-2], axes[rank-1]
	}

	if err := validatePermutation(axes, rank); err != nil {
		return nil, fmt.Errorf("transpose %v: %w", shape, err)
	}

	outShape := make(tensor.Shape, rank)
	for i, ax := range axes {
		outShape[i] = shape[ax]
	}
	out := tensor.Zeros[float32](outShape)

	// srcStrides[i] is the source stride of output dimension i.
	inStrides := x.Strides()
	srcStrides := make([]int, rank)
	for i, ax := range axes {
		srcStrides[i] = inStrides[ax]
	}

	src, dst := x.Data(), out.Data()
	idx := make([]int, rank)
	si := 0
	for i := range dst {
		dst[i] = src[si]
		for d := rank - 1; d >= 0; d-- {
			idx[d]++
			si += srcStrides[d]
			if idx[d] < outShape[d] {
				break
			}
			si -= srcStrides[d] * outShape[d]
			idx[d] = 0
		}
	}
	return out, nil
}

func validatePermutation(axes []int, rank int) error {
	if len(axes) != rank {
		return &tensor.RangeError{Op: "permute", What: "axis count", Index: -1, Value: len(axes), Low: rank, High: rank + 1}
	}
	seen := make([]bool, rank)
	for i, ax := range axes {
		if ax < 0 || ax >= rank {
			return &tensor.RangeError{Op: "permute", What: "axis", Index: i, Value: ax, Low: 0, High: rank}
		}
		if seen[ax] {
			return fmt.Errorf("permute: axis %d repeated: %w", ax, tensor.ErrShape)
		}
		seen[ax] = true
	}
	return nil
}
