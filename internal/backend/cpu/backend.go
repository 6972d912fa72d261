// Package cpu implements tensor.Backend on the CPU.
//
// Matrix products go through gonum's BLAS (blas32.Gemm); row-wise kernels
// such as softmax fan out over internal/parallel. Every output element is
// produced by exactly one goroutine in a fixed order, so results do not
// depend on the parallel configuration.
package cpu

import (
	"github.com/born-ml/gptgen/internal/parallel"
	"github.com/born-ml/gptgen/internal/tensor"
)

// CPUBackend implements tensor operations on CPU.
type CPUBackend struct {
	par parallel.Config
}

// Compile-time check that CPUBackend implements tensor.Backend.
var _ tensor.Backend = (*CPUBackend)(nil)

// Option configures a CPUBackend.
type Option func(*CPUBackend)

// WithParallel sets the parallel execution config.
func WithParallel(cfg parallel.Config) Option {
	return func(b *CPUBackend) {
		b.par = cfg
	}
}

// WithSequential disables goroutine fan-out entirely.
func WithSequential() Option {
	return WithParallel(parallel.Sequential())
}

// New creates a new CPU backend.
func New(opts ...Option) *CPUBackend {
	b := &CPUBackend{par: parallel.DefaultConfig()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Parallel returns the backend's parallel execution config.
func (cpu *CPUBackend) Parallel() parallel.Config {
	return cpu.par
}
