package cpu

import (
	"github.com/born-ml/gptgen/internal/tensor"
)

// Embedding performs embedding lookup.
//
// weight: [num_embeddings, embedding_dim]
// indices: any shape of int32
// returns: indices.Shape() + [embedding_dim]
//
// Every index is checked before any row is copied; the first index outside
// [0, num_embeddings) is reported as a *tensor.RangeError.
func (cpu *CPUBackend) Embedding(weight *tensor.Tensor[float32], indices *tensor.Tensor[int32]) (*tensor.Tensor[float32], error) {
	wShape := weight.Shape()
	if len(wShape) != 2 {
		return nil, &tensor.ShapeError{Op: "embedding", Expected: tensor.Shape{-1, -1}, Actual: wShape, Detail: "weight must be 2D"}
	}
	numEmbed, dim := wShape[0], wShape[1]

	ids := indices.Data()
	for i, id := range ids {
		if id < 0 || int(id) >= numEmbed {
			return nil, &tensor.RangeError{
				Op:    "embedding",
				What:  "token id",
				Index: i,
				Value: int(id),
				Low:   0,
				High:  numEmbed,
			}
		}
	}

	outShape := append(indices.Shape().Clone(), dim)
	out := tensor.Zeros[float32](outShape)
	src, dst := weight.Data(), out.Data()
	for i, id := range ids {
		copy(dst[i*dim:(i+1)*dim], src[int(id)*dim:(int(id)+1)*dim])
	}
	return out, nil
}

// MaskedFill returns a copy of x with value written wherever mask == 0.
//
// mask must broadcast to exactly x's shape; a mask that would enlarge x, or
// cannot broadcast at all, is a *tensor.ShapeError.
func (cpu *CPUBackend) MaskedFill(x, mask *tensor.Tensor[float32], value float32) (*tensor.Tensor[float32], error) {
	outShape, _, err := tensor.BroadcastShapes(x.Shape(), mask.Shape())
	if err != nil || !outShape.Equal(x.Shape()) {
		return nil, &tensor.ShapeError{
			Op:       "masked fill",
			Expected: x.Shape(),
			Actual:   mask.Shape(),
			Detail:   "mask must broadcast to the scores shape",
		}
	}
	return binaryOp("masked fill", x, mask, func(v, m float32) float32 {
		if m == 0 {
			return value
		}
		return v
	})
}
