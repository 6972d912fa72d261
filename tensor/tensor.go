// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the tensors used by the model.
//
// The package re-exports the core types:
//   - Tensor[T]: contiguous row-major tensor of float32 or int32
//   - Backend: interface for compute implementations
//   - Shape, DataType: core type definitions
//   - ShapeError, RangeError, NumericalError: the error taxonomy
//
// Example:
//
//	ids := tensor.MustFromSlice([]int32{6109, 1110, 318, 534}, tensor.Shape{1, 4})
//	logits, err := model.Forward(ids, nil)
//	if errors.Is(err, tensor.ErrRange) {
//	    // a token id is outside the vocabulary
//	}
package tensor

import (
	"math/rand"

	"github.com/born-ml/gptgen/internal/tensor"
)

// DType is the constraint for tensor element types (float32, int32).
type DType = tensor.DType

// DataType represents runtime type information for tensors.
type DataType = tensor.DataType

// Supported data types.
const (
	Float32 = tensor.Float32
	Int32   = tensor.Int32
)

// Shape represents tensor dimensions.
type Shape = tensor.Shape

// Tensor is a contiguous row-major tensor with element type T.
type Tensor[T DType] = tensor.Tensor[T]

// Backend defines the operations compute backends implement.
type Backend = tensor.Backend

// New creates a zero-filled tensor, validating the shape.
func New[T DType](shape Shape) (*Tensor[T], error) {
	return tensor.New[T](shape)
}

// Zeros creates a tensor filled with zeros.
func Zeros[T DType](shape Shape) *Tensor[T] {
	return tensor.Zeros[T](shape)
}

// Ones creates a tensor filled with ones.
func Ones[T DType](shape Shape) *Tensor[T] {
	return tensor.Ones[T](shape)
}

// Full creates a tensor filled with value.
func Full[T DType](shape Shape, value T) *Tensor[T] {
	return tensor.Full(shape, value)
}

// FromSlice copies data into a new tensor of the given shape.
func FromSlice[T DType](data []T, shape Shape) (*Tensor[T], error) {
	return tensor.FromSlice(data, shape)
}

// MustFromSlice is like FromSlice but panics on error.
func MustFromSlice[T DType](data []T, shape Shape) *Tensor[T] {
	return tensor.MustFromSlice(data, shape)
}

// Randn creates a tensor of N(0, std²) samples drawn from rng.
func Randn(shape Shape, std float32, rng *rand.Rand) *Tensor[float32] {
	return tensor.Randn(shape, std, rng)
}
