// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/gptgen/internal/tensor"

// Sentinel errors wrapped by every tensor error.
var (
	ErrShape     = tensor.ErrShape
	ErrRange     = tensor.ErrRange
	ErrNumerical = tensor.ErrNumerical
)

// ShapeError describes a shape mismatch.
type ShapeError = tensor.ShapeError

// RangeError describes an index or length outside its valid range.
type RangeError = tensor.RangeError

// NumericalError describes a computation without a defined result, such as
// a softmax over a fully masked row.
type NumericalError = tensor.NumericalError
