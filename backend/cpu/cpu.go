// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend.
//
// Matrix products go through gonum's BLAS implementation; batch, head and
// row loops fan out across goroutines. Parallel and sequential execution
// produce bit-identical results.
//
// Basic usage:
//
//	backend := cpu.New()
//	model, err := gpt.New(gpt.GPT2SmallConfig(), backend)
package cpu

import (
	internalcpu "github.com/born-ml/gptgen/internal/backend/cpu"
	"github.com/born-ml/gptgen/internal/parallel"
	"github.com/born-ml/gptgen/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Option configures a Backend.
type Option = internalcpu.Option

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend. Parallel execution is on by default when
// more than one CPU is available.
func New(opts ...Option) *Backend {
	return internalcpu.New(opts...)
}

// WithWorkers sets the number of worker goroutines. n <= 1 runs sequentially.
func WithWorkers(n int) Option {
	if n <= 1 {
		return internalcpu.WithSequential()
	}
	cfg := parallel.DefaultConfig()
	cfg.Enabled = true
	cfg.NumWorkers = n
	return internalcpu.WithParallel(cfg)
}

// WithSequential disables parallel execution.
func WithSequential() Option {
	return internalcpu.WithSequential()
}
