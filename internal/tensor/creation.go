package tensor

import (
	"fmt"
	"math/rand"
)

// New allocates a zero-filled tensor, validating the shape.
func New[T DType](shape Shape) (*Tensor[T], error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &Tensor[T]{
		shape:   shape.Clone(),
		strides: shape.ComputeStrides(),
		data:    make([]T, shape.NumElements()),
	}, nil
}

// Zeros creates a tensor filled with zeros.
// Panics on an invalid shape; use New when the shape comes from user input.
//
// Example:
//
//	t := tensor.Zeros[float32](Shape{3, 4})
func Zeros[T DType](shape Shape) *Tensor[T] {
	t, err := New[T](shape)
	if err != nil {
		panic(err)
	}
	return t
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full[float32](Shape{3, 3}, 3.14)
func Full[T DType](shape Shape, value T) *Tensor[T] {
	t := Zeros[T](shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// Ones creates a tensor filled with ones.
func Ones[T DType](shape Shape) *Tensor[T] {
	return Full[T](shape, 1)
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice[T DType](data []T, shape Shape) (*Tensor[T], error) {
	if shape.NumElements() != len(data) {
		return nil, &ShapeError{
			Op:       "from slice",
			Expected: shape,
			Actual:   Shape{len(data)},
			Detail:   fmt.Sprintf("shape requires %d elements, got %d", shape.NumElements(), len(data)),
		}
	}
	t, err := New[T](shape)
	if err != nil {
		return nil, err
	}
	copy(t.data, data)
	return t, nil
}

// MustFromSlice is like FromSlice but panics on error.
func MustFromSlice[T DType](data []T, shape Shape) *Tensor[T] {
	t, err := FromSlice(data, shape)
	if err != nil {
		panic(err)
	}
	return t
}

// Randn creates a float32 tensor with values drawn from N(0, std²).
// Note: Uses math/rand (not crypto/rand) - appropriate for ML/statistical purposes.
func Randn(shape Shape, std float32, rng *rand.Rand) *Tensor[float32] {
	t := Zeros[float32](shape)
	for i := range t.data {
		t.data[i] = float32(rng.NormFloat64()) * std
	}
	return t
}

// wrap builds a tensor around existing data without copying.
func wrap[T DType](data []T, shape Shape) *Tensor[T] {
	return &Tensor[T]{shape: shape.Clone(), strides: shape.ComputeStrides(), data: data}
}

// Wrap builds a tensor around data without copying. The caller must not
// retain data for other purposes. Panics if len(data) does not match shape.
func Wrap[T DType](data []T, shape Shape) *Tensor[T] {
	if shape.NumElements() != len(data) {
		panic(fmt.Sprintf("wrap: shape %v requires %d elements, got %d", shape, shape.NumElements(), len(data)))
	}
	return wrap(data, shape)
}
