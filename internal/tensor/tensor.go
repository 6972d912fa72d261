package tensor

import "fmt"

// Tensor is a dense, contiguous, row-major tensor of element type T.
//
// Layers never mutate their inputs; every operation allocates its result.
// Data exposes the backing slice for kernels and tests.
//
// Example:
//
//	x := tensor.Zeros[float32](tensor.Shape{2, 3})
//	x.Set(1.5, 0, 2)
//	v := x.At(0, 2) // 1.5
type Tensor[T DType] struct {
	shape   Shape
	strides []int
	data    []T
}

// Shape returns the tensor's shape.
func (t *Tensor[T]) Shape() Shape {
	return t.shape
}

// DType returns the tensor's data type.
func (t *Tensor[T]) DType() DataType {
	return inferDataType[T]()
}

// Rank returns the number of dimensions.
func (t *Tensor[T]) Rank() int {
	return len(t.shape)
}

// NumElements returns the total number of elements.
func (t *Tensor[T]) NumElements() int {
	return len(t.data)
}

// Strides returns the row-major strides of the tensor.
func (t *Tensor[T]) Strides() []int {
	return t.strides
}

// Data returns the backing slice of the tensor.
//
// WARNING: Modifications to the returned slice will modify the tensor.
func (t *Tensor[T]) Data() []T {
	return t.data
}

// At returns the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor[T]) At(indices ...int) T {
	return t.data[t.offset(indices)]
}

// Set sets the element at the given indices.
// Panics if indices are out of bounds.
func (t *Tensor[T]) Set(value T, indices ...int) {
	t.data[t.offset(indices)] = value
}

func (t *Tensor[T]) offset(indices []int) int {
	if len(indices) != len(t.shape) {
		panic(fmt.Sprintf("expected %d indices, got %d", len(t.shape), len(indices)))
	}
	offset := 0
	for i, idx := range indices {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("index %d out of bounds for dimension %d (size %d)", idx, i, t.shape[i]))
		}
		offset += idx * t.strides[i]
	}
	return offset
}

// Clone creates a deep copy of the tensor.
func (t *Tensor[T]) Clone() *Tensor[T] {
	data := make([]T, len(t.data))
	copy(data, t.data)
	return &Tensor[T]{
		shape:   t.shape.Clone(),
		strides: append([]int(nil), t.strides...),
		data:    data,
	}
}

// Reshape returns a view of the tensor with a new shape and the same data.
// One dimension may be -1, in which case it is inferred.
func (t *Tensor[T]) Reshape(dims ...int) (*Tensor[T], error) {
	shape := Shape(dims).Clone()
	infer := -1
	known := 1
	for i, d := range shape {
		switch {
		case d == -1 && infer < 0:
			infer = i
		case d <= 0:
			return nil, &ShapeError{Op: "reshape", Expected: t.shape, Actual: shape, Detail: "invalid dimension"}
		default:
			known *= d
		}
	}
	if infer >= 0 {
		if known == 0 || len(t.data)%known != 0 {
			return nil, &ShapeError{Op: "reshape", Expected: t.shape, Actual: shape, Detail: "cannot infer dimension"}
		}
		shape[infer] = len(t.data) / known
	}
	if shape.NumElements() != len(t.data) {
		return nil, &ShapeError{
			Op:       "reshape",
			Expected: t.shape,
			Actual:   shape,
			Detail:   fmt.Sprintf("element count %d vs %d", len(t.data), shape.NumElements()),
		}
	}
	return &Tensor[T]{shape: shape, strides: shape.ComputeStrides(), data: t.data}, nil
}

// String returns a human-readable representation of the tensor.
func (t *Tensor[T]) String() string {
	return fmt.Sprintf("Tensor[%s]%v", t.DType(), t.shape)
}
