package cpu

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/born-ml/gptgen/internal/tensor"
)

// MatMul performs matrix multiplication.
// For 2D tensors: (M, K) @ (K, N) -> (M, N), computed with SGEMM.
func (cpu *CPUBackend) MatMul(a, b *tensor.Tensor[float32]) (*tensor.Tensor[float32], error) {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		return nil, &tensor.ShapeError{
			Op:       "matmul",
			Expected: tensor.Shape{-1, -1},
			Actual:   aShape,
			Detail:   "only 2D operands are supported",
		}
	}

	m, k := aShape[0], aShape[1]
	kAlt, n := bShape[0], bShape[1]
	if k != kAlt {
		return nil, &tensor.ShapeError{
			Op:       "matmul",
			Expected: tensor.Shape{k, n},
			Actual:   bShape,
			Detail:   "inner dimensions differ",
		}
	}

	out := tensor.Zeros[float32](tensor.Shape{m, n})
	gemm(out.Data(), a.Data(), b.Data(), m, k, n)
	return out, nil
}

// MatMulTransB computes a @ bᵀ for a [M, K] and b [N, K] without
// materializing the transpose. Linear layers store weights as [out, in].
func (cpu *CPUBackend) MatMulTransB(a, b *tensor.Tensor[float32]) (*tensor.Tensor[float32], error) {
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		return nil, &tensor.ShapeError{
			Op:       "matmul",
			Expected: tensor.Shape{-1, -1},
			Actual:   aShape,
			Detail:   "only 2D operands are supported",
		}
	}

	m, k := aShape[0], aShape[1]
	n, kAlt := bShape[0], bShape[1]
	if k != kAlt {
		return nil, &tensor.ShapeError{
			Op:       "matmul",
			Expected: tensor.Shape{n, k},
			Actual:   bShape,
			Detail:   "inner dimensions differ",
		}
	}

	out := tensor.Zeros[float32](tensor.Shape{m, n})
	blas32.Gemm(blas.NoTrans, blas.Trans, 1,
		blas32.General{Rows: m, Cols: k, Stride: k, Data: a.Data()},
		blas32.General{Rows: n, Cols: k, Stride: k, Data: b.Data()},
		0,
		blas32.General{Rows: m, Cols: n, Stride: n, Data: out.Data()},
	)
	return out, nil
}

// gemm computes c = a @ b for row-major a [m, k], b [k, n], c [m, n].
func gemm(c, a, b []float32, m, k, n int) {
	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
		blas32.General{Rows: m, Cols: k, Stride: k, Data: a},
		blas32.General{Rows: k, Cols: n, Stride: n, Data: b},
		0,
		blas32.General{Rows: m, Cols: n, Stride: n, Data: c},
	)
}
