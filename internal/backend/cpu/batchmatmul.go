package cpu

import (
	"github.com/born-ml/gptgen/internal/parallel"
	"github.com/born-ml/gptgen/internal/tensor"
)

// BatchMatMul performs batched matrix multiplication for 3D/4D tensors.
// For 3D: [B, M, K] @ [B, K, N] -> [B, M, N]
// For 4D: [B, H, M, K] @ [B, H, K, N] -> [B, H, M, N]
//
// Leading dimensions must match exactly. Work is spread over the
// batch×heads grid; each matrix product runs on a single goroutine.
func (cpu *CPUBackend) BatchMatMul(a, b *tensor.Tensor[float32]) (*tensor.Tensor[float32], error) {
	aShape, bShape := a.Shape(), b.Shape()
	rank := len(aShape)
	if rank < 3 || len(bShape) != rank {
		return nil, &tensor.ShapeError{
			Op:       "batch matmul",
			Expected: aShape,
			Actual:   bShape,
			Detail:   "operands must share a rank of at least 3",
		}
	}
	for i := 0; i < rank-2; i++ {
		if aShape[i] != bShape[i] {
			return nil, &tensor.ShapeError{
				Op:       "batch matmul",
				Expected: aShape,
				Actual:   bShape,
				Detail:   "leading dimensions differ",
			}
		}
	}

	m, k := aShape[rank-2], aShape[rank-1]
	kAlt, n := bShape[rank-2], bShape[rank-1]
	if k != kAlt {
		return nil, &tensor.ShapeError{
			Op:       "batch matmul",
			Expected: tensor.Shape{k, n},
			Actual:   tensor.Shape{kAlt, n},
			Detail:   "inner dimensions differ",
		}
	}

	outShape := aShape.Clone()
	outShape[rank-1] = n
	out := tensor.Zeros[float32](outShape)

	batch := aShape[0]
	heads := aShape[1 : rank-2].NumElements() // 1 for 3D operands
	ad, bd, cd := a.Data(), b.Data(), out.Data()
	parallel.ForGrid(batch, heads, func(bi, h int) {
		i := bi*heads + h
		gemm(cd[i*m*n:(i+1)*m*n], ad[i*m*k:(i+1)*m*k], bd[i*k*n:(i+1)*k*n], m, k, n)
	}, cpu.par.WithMinChunkSize(1))

	return out, nil
}
