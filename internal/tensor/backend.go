package tensor

// Backend defines the interface that compute backends implement.
// Backends handle the actual computation for tensor operations; layers in
// package nn only compose these calls.
//
// Every operation allocates its result and leaves its inputs untouched, so a
// set of parameter tensors can be shared by concurrent forward passes.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *Tensor[float32]) (*Tensor[float32], error)
	Sub(a, b *Tensor[float32]) (*Tensor[float32], error)
	Mul(a, b *Tensor[float32]) (*Tensor[float32], error)

	// Scalar and unary element-wise operations.
	AddScalar(x *Tensor[float32], scalar float32) *Tensor[float32]
	MulScalar(x *Tensor[float32], scalar float32) *Tensor[float32]
	Rsqrt(x *Tensor[float32]) *Tensor[float32] // 1/sqrt(x)

	// MatMul multiplies 2D matrices: [M, K] @ [K, N] -> [M, N].
	MatMul(a, b *Tensor[float32]) (*Tensor[float32], error)

	// MatMulTransB multiplies by a transposed right operand:
	// [M, K] @ [N, K]ᵀ -> [M, N].
	MatMulTransB(a, b *Tensor[float32]) (*Tensor[float32], error)

	// BatchMatMul multiplies matrices sharing leading dimensions:
	// [..., M, K] @ [..., K, N] -> [..., M, N].
	BatchMatMul(a, b *Tensor[float32]) (*Tensor[float32], error)

	// Transpose permutes dimensions. With no axes the last two are swapped.
	Transpose(x *Tensor[float32], axes ...int) (*Tensor[float32], error)

	// Softmax normalizes along dim. A slice whose inputs are all -Inf
	// yields a *NumericalError instead of NaNs.
	Softmax(x *Tensor[float32], dim int) (*Tensor[float32], error)

	// Reductions.
	MeanDim(x *Tensor[float32], dim int, keepDim bool) (*Tensor[float32], error)
	Argmax(x *Tensor[float32], dim int) (*Tensor[int32], error)

	// Embedding gathers rows of weight [V, D] for every index, producing
	// shape indices.Shape() + [D]. Indices outside [0, V) are a *RangeError.
	Embedding(weight *Tensor[float32], indices *Tensor[int32]) (*Tensor[float32], error)

	// MaskedFill returns x with value written wherever mask == 0.
	// mask must broadcast to x's shape.
	MaskedFill(x, mask *Tensor[float32], value float32) (*Tensor[float32], error)

	// Activation functions.
	GELU(x *Tensor[float32]) *Tensor[float32]
	ReLU(x *Tensor[float32]) *Tensor[float32]

	// Metadata
	Name() string
}
