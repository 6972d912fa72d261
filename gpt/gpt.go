// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package gpt provides the public API for building decoder-only transformer
// language models.
//
// A Model maps token ids [batch, seq] to next-token logits
// [batch, seq, vocab]: token embedding, sinusoidal positional encoding,
// a stack of post-norm transformer blocks and a vocabulary projection.
//
// Example:
//
//	model, err := gpt.New(gpt.GPT2SmallConfig(), cpu.New(), gpt.WithSeed(123))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ids := tensor.MustFromSlice([]int32{6109, 1110, 318, 534}, tensor.Shape{1, 4})
//	logits, err := model.Forward(ids, nil) // [1, 4, 50257]
package gpt

import (
	"github.com/born-ml/gptgen/internal/gpt"
	"github.com/born-ml/gptgen/internal/nn"
	"github.com/born-ml/gptgen/tensor"
)

// Config holds the model hyperparameters.
type Config = gpt.Config

// Model is a decoder-only transformer language model.
type Model = gpt.Model

// Option configures model construction.
type Option = gpt.Option

// Mode selects inference or training behaviour for ForwardMode.
type Mode = nn.Mode

// Forward modes.
const (
	ModeInference = nn.ModeInference
	ModeTraining  = nn.ModeTraining
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = gpt.ErrInvalidConfig

// GPT2SmallConfig returns the GPT-2 small (124M) hyperparameters.
func GPT2SmallConfig() Config {
	return gpt.GPT2SmallConfig()
}

// TinyConfig returns a small configuration for tests and experiments.
func TinyConfig() Config {
	return gpt.TinyConfig()
}

// LoadConfig reads a YAML or JSON configuration file and validates it.
func LoadConfig(path string) (Config, error) {
	return gpt.LoadConfig(path)
}

// ParseConfig parses a YAML or JSON configuration and validates it.
func ParseConfig(data []byte) (Config, error) {
	return gpt.ParseConfig(data)
}

// WithSeed sets the seed for weight initialisation and dropout.
func WithSeed(seed int64) Option {
	return gpt.WithSeed(seed)
}

// New builds a model with randomly initialised weights.
func New(cfg Config, backend tensor.Backend, opts ...Option) (*Model, error) {
	return gpt.New(cfg, backend, opts...)
}

// CausalMask returns a [1, 1, seqLen, seqLen] lower-triangular mask that can
// be passed to Model.Forward.
func CausalMask(seqLen int) *tensor.Tensor[float32] {
	return nn.CausalMask(seqLen)
}
