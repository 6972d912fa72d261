// Package gpt assembles the decoder-only transformer: token embedding,
// sinusoidal positional encoding, a stack of post-norm transformer blocks
// and the vocabulary projection.
package gpt

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every configuration validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Default values applied to unset optional fields.
const (
	DefaultActivation   = "gelu"
	DefaultLayerNormEps = 1e-5
	DefaultInitStd      = 0.02
	DefaultInit         = "normal"
)

// Config holds the model hyperparameters.
//
// A Config is an immutable value: constructors copy it and never modify it.
type Config struct {
	// VocabSize is the size of the token vocabulary (50257 for GPT-2).
	VocabSize int `yaml:"vocab_size" json:"vocab_size"`

	// ContextLength is the maximum sequence length the model can process (1024 for GPT-2).
	ContextLength int `yaml:"context_length" json:"context_length"`

	// EmbedDim is the dimension of token embeddings (768 for GPT-2 small).
	EmbedDim int `yaml:"emb_dim" json:"emb_dim"`

	// NumHeads is the number of attention heads (12 for GPT-2 small).
	NumHeads int `yaml:"n_heads" json:"n_heads"`

	// NumLayers is the number of transformer blocks (12 for GPT-2 small).
	NumLayers int `yaml:"n_layers" json:"n_layers"`

	// DropoutRate is applied after the embeddings and on both residual
	// branches of every block, in training mode only.
	DropoutRate float32 `yaml:"drop_rate" json:"drop_rate"`

	// QKVBias determines if Q/K/V projections use bias (false for GPT-2).
	QKVBias bool `yaml:"qkv_bias" json:"qkv_bias"`

	// Activation selects the feed-forward non-linearity: "gelu" or "relu".
	Activation string `yaml:"activation,omitempty" json:"activation,omitempty"`

	// LayerNormEps is the LayerNorm epsilon.
	LayerNormEps float32 `yaml:"layer_norm_eps,omitempty" json:"layer_norm_eps,omitempty"`

	// FinalNorm adds a LayerNorm between the last block and the output head.
	FinalNorm bool `yaml:"final_norm,omitempty" json:"final_norm,omitempty"`

	// Init selects the weight initialization: "normal" draws from
	// N(0, InitStd²), "xavier" from the Glorot uniform distribution.
	Init string `yaml:"init,omitempty" json:"init,omitempty"`

	// InitStd is the standard deviation of the normal weight initialization.
	InitStd float32 `yaml:"init_std,omitempty" json:"init_std,omitempty"`
}

// GPT2SmallConfig returns the configuration of GPT-2 small (124M parameters
// with tied embeddings; this model keeps a separate output head).
func GPT2SmallConfig() Config {
	return Config{
		VocabSize:     50257,
		ContextLength: 1024,
		EmbedDim:      768,
		NumHeads:      12,
		NumLayers:     12,
		DropoutRate:   0.1,
		QKVBias:       false,
		Activation:    DefaultActivation,
		LayerNormEps:  DefaultLayerNormEps,
		Init:          DefaultInit,
		InitStd:       DefaultInitStd,
	}
}

// TinyConfig returns a small configuration suitable for tests and demos.
func TinyConfig() Config {
	return Config{
		VocabSize:     64,
		ContextLength: 16,
		EmbedDim:      32,
		NumHeads:      4,
		NumLayers:     2,
		DropoutRate:   0.1,
		Activation:    DefaultActivation,
		LayerNormEps:  DefaultLayerNormEps,
		Init:          DefaultInit,
		InitStd:       DefaultInitStd,
	}
}

// WithDefaults returns a copy of c with unset optional fields filled in.
func (c Config) WithDefaults() Config {
	if c.Activation == "" {
		c.Activation = DefaultActivation
	}
	if c.LayerNormEps == 0 {
		c.LayerNormEps = DefaultLayerNormEps
	}
	if c.InitStd == 0 {
		c.InitStd = DefaultInitStd
	}
	if c.Init == "" {
		c.Init = DefaultInit
	}
	return c
}

// Validate checks that the configuration is consistent.
// Every returned error wraps ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.VocabSize <= 0:
		return fmt.Errorf("%w: vocab_size must be positive, got %d", ErrInvalidConfig, c.VocabSize)
	case c.ContextLength <= 0:
		return fmt.Errorf("%w: context_length must be positive, got %d", ErrInvalidConfig, c.ContextLength)
	case c.EmbedDim <= 0:
		return fmt.Errorf("%w: emb_dim must be positive, got %d", ErrInvalidConfig, c.EmbedDim)
	case c.NumHeads <= 0:
		return fmt.Errorf("%w: n_heads must be positive, got %d", ErrInvalidConfig, c.NumHeads)
	case c.NumLayers <= 0:
		return fmt.Errorf("%w: n_layers must be positive, got %d", ErrInvalidConfig, c.NumLayers)
	case c.EmbedDim%c.NumHeads != 0:
		return fmt.Errorf("%w: emb_dim (%d) must be divisible by n_heads (%d)",
			ErrInvalidConfig, c.EmbedDim, c.NumHeads)
	case c.DropoutRate < 0 || c.DropoutRate >= 1:
		return fmt.Errorf("%w: drop_rate must be in [0, 1), got %v", ErrInvalidConfig, c.DropoutRate)
	case c.LayerNormEps <= 0:
		return fmt.Errorf("%w: layer_norm_eps must be positive, got %v", ErrInvalidConfig, c.LayerNormEps)
	case c.InitStd <= 0:
		return fmt.Errorf("%w: init_std must be positive, got %v", ErrInvalidConfig, c.InitStd)
	}
	switch c.Activation {
	case "gelu", "relu":
	default:
		return fmt.Errorf("%w: activation must be gelu or relu, got %q", ErrInvalidConfig, c.Activation)
	}
	switch c.Init {
	case "normal", "xavier":
	default:
		return fmt.Errorf("%w: init must be normal or xavier, got %q", ErrInvalidConfig, c.Init)
	}
	return nil
}

// HeadDim returns the dimension per attention head.
func (c Config) HeadDim() int {
	return c.EmbedDim / c.NumHeads
}

// FFNDim returns the hidden dimension of the feed-forward network (4x).
func (c Config) FFNDim() int {
	return 4 * c.EmbedDim
}

// ParseConfig decodes a YAML or JSON document, fills defaults and validates
// the result. Unknown keys are rejected.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a configuration file (YAML or JSON).
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}
