// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package gpt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/gptgen/backend/cpu"
	"github.com/born-ml/gptgen/gpt"
	"github.com/born-ml/gptgen/tensor"
)

func TestNew(t *testing.T) {
	model, err := gpt.New(gpt.TinyConfig(), cpu.New(), gpt.WithSeed(5))
	require.NoError(t, err)

	ids := tensor.MustFromSlice([]int32{1, 2, 3}, tensor.Shape{1, 3})
	logits, err := model.Forward(ids, gpt.CausalMask(3))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{1, 3, gpt.TinyConfig().VocabSize}, logits.Shape())

	same, err := model.ForwardMode(ids, gpt.CausalMask(3), gpt.ModeInference)
	require.NoError(t, err)
	assert.Equal(t, logits.Data(), same.Data())
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := gpt.TinyConfig()
	cfg.EmbedDim = 30
	_, err := gpt.New(cfg, cpu.New())
	assert.ErrorIs(t, err, gpt.ErrInvalidConfig)
}

func TestParseConfig(t *testing.T) {
	cfg, err := gpt.ParseConfig([]byte(`{"vocab_size": 10, "context_length": 8, "emb_dim": 8, "n_heads": 2, "n_layers": 1}`))
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.VocabSize)
	assert.Equal(t, "gelu", cfg.Activation)
}
