package gpt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresets_Valid(t *testing.T) {
	require.NoError(t, GPT2SmallConfig().Validate())
	require.NoError(t, TinyConfig().Validate())

	cfg := GPT2SmallConfig()
	assert.Equal(t, 64, cfg.HeadDim())
	assert.Equal(t, 3072, cfg.FFNDim())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero vocab", func(c *Config) { c.VocabSize = 0 }},
		{"zero context", func(c *Config) { c.ContextLength = 0 }},
		{"negative embed", func(c *Config) { c.EmbedDim = -768 }},
		{"zero heads", func(c *Config) { c.NumHeads = 0 }},
		{"zero layers", func(c *Config) { c.NumLayers = 0 }},
		{"indivisible heads", func(c *Config) { c.EmbedDim = 770 }},
		{"dropout one", func(c *Config) { c.DropoutRate = 1 }},
		{"negative dropout", func(c *Config) { c.DropoutRate = -0.1 }},
		{"negative eps", func(c *Config) { c.LayerNormEps = -1 }},
		{"unknown activation", func(c *Config) { c.Activation = "tanh" }},
		{"unknown init", func(c *Config) { c.Init = "kaiming" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GPT2SmallConfig()
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestConfig_WithDefaults(t *testing.T) {
	cfg := Config{VocabSize: 10, ContextLength: 4, EmbedDim: 8, NumHeads: 2, NumLayers: 1}
	assert.Error(t, cfg.Validate(), "activation and eps are required after defaults")

	d := cfg.WithDefaults()
	require.NoError(t, d.Validate())
	assert.Equal(t, "gelu", d.Activation)
	assert.Equal(t, float32(1e-5), d.LayerNormEps)
	assert.Equal(t, float32(0.02), d.InitStd)
	assert.Equal(t, "normal", d.Init)
	assert.Empty(t, cfg.Activation, "WithDefaults returns a copy")
}

func TestLoadConfig_YAML(t *testing.T) {
	cfg, err := LoadConfig("testdata/tiny.yaml")
	require.NoError(t, err)

	assert.Equal(t, Config{
		VocabSize:     100,
		ContextLength: 8,
		EmbedDim:      16,
		NumHeads:      2,
		NumLayers:     1,
		QKVBias:       true,
		Activation:    "relu",
		LayerNormEps:  1e-5,
		FinalNorm:     true,
		Init:          "normal",
		InitStd:       0.02,
	}, cfg)
}

func TestLoadConfig_JSON(t *testing.T) {
	cfg, err := LoadConfig("testdata/gpt2-small.json")
	require.NoError(t, err)
	assert.Equal(t, GPT2SmallConfig(), cfg)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig("testdata/unknown-field.yaml")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = LoadConfig("testdata/missing.yaml")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidConfig)

	_, err = ParseConfig([]byte("vocab_size: 10\ncontext_length: 4\nemb_dim: 6\nn_heads: 4\nn_layers: 1\n"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
