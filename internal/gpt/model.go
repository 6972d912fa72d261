package gpt

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/born-ml/gptgen/internal/nn"
	"github.com/born-ml/gptgen/internal/tensor"
)

const defaultSeed int64 = 1

// Option configures model construction.
type Option func(*options)

type options struct {
	seed int64
}

// WithSeed sets the seed for weight initialization and training-mode
// dropout. Models built with the same config and seed are identical.
func WithSeed(seed int64) Option {
	return func(o *options) {
		o.seed = seed
	}
}

// Model is a decoder-only transformer.
//
// Architecture:
//  1. Token embedding: lookup table [vocab_size, emb_dim]
//  2. Sinusoidal positional encoding: fixed table [context_length, emb_dim]
//  3. Embedding dropout (training mode only)
//  4. NumLayers post-norm transformer blocks
//  5. Optional final LayerNorm
//  6. Output head: linear [emb_dim → vocab_size] without bias
//
// A built Model holds no mutable state; Forward may be called concurrently.
type Model struct {
	config    Config
	backend   tensor.Backend
	tokEmb    *nn.Embedding
	posEnc    *nn.SinusoidalPositionalEncoding
	embDrop   *nn.Dropout
	blocks    *nn.Sequential
	finalNorm *nn.LayerNorm // nil unless Config.FinalNorm
	head      *nn.Linear
}

// New builds a model with freshly initialized weights.
//
// Weights are drawn from N(0, InitStd²), or Glorot uniform when Init is
// "xavier"; LayerNorm scales are 1 and shifts 0;
// biases are 0. An invalid config yields an error wrapping ErrInvalidConfig.
func New(cfg Config, backend tensor.Backend, opts ...Option) (*Model, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{seed: defaultSeed}
	for _, opt := range opts {
		opt(&o)
	}

	// Initialization and each dropout site get independent generators.
	initRNG := rand.New(rand.NewSource(o.seed))
	dropoutRNG := func(site int) *rand.Rand {
		return rand.New(rand.NewSource(o.seed + int64(site+1)*7919))
	}
	init := nn.NormalInit(cfg.InitStd, initRNG)
	if cfg.Init == "xavier" {
		init = nn.XavierInit(initRNG)
	}

	m := &Model{
		config:  cfg,
		backend: backend,
		tokEmb:  nn.NewEmbedding(cfg.VocabSize, cfg.EmbedDim, init, backend),
		posEnc:  nn.NewSinusoidalPositionalEncoding(cfg.ContextLength, cfg.EmbedDim, backend),
		embDrop: nn.NewDropout(cfg.DropoutRate, dropoutRNG(0), backend),
		blocks:  nn.NewSequential(),
	}

	blockCfg := nn.TransformerConfig{
		EmbedDim:   cfg.EmbedDim,
		NumHeads:   cfg.NumHeads,
		FFNDim:     cfg.FFNDim(),
		Dropout:    cfg.DropoutRate,
		QKVBias:    cfg.QKVBias,
		Activation: cfg.Activation,
		NormEps:    cfg.LayerNormEps,
	}
	for i := 0; i < cfg.NumLayers; i++ {
		block, err := nn.NewTransformerBlock(blockCfg, init, dropoutRNG(i+1), backend)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
		m.blocks.Add(block)
	}

	if cfg.FinalNorm {
		m.finalNorm = nn.NewLayerNorm(cfg.EmbedDim, cfg.LayerNormEps, backend)
	}
	m.head = nn.NewLinear(cfg.EmbedDim, cfg.VocabSize, false, init, backend)

	return m, nil
}

// Forward computes next-token logits in inference mode.
//
// ids is [batch, seq] with seq <= ContextLength; mask is an optional 0/1
// attention mask broadcastable to [batch, n_heads, seq, seq] (nil attends
// everywhere). Returns logits [batch, seq, vocab_size].
func (m *Model) Forward(ids *tensor.Tensor[int32], mask *tensor.Tensor[float32]) (*tensor.Tensor[float32], error) {
	return m.ForwardMode(ids, mask, nn.ModeInference)
}

// ForwardMode is Forward with an explicit mode. ModeTraining enables dropout.
func (m *Model) ForwardMode(ids *tensor.Tensor[int32], mask *tensor.Tensor[float32], mode nn.Mode) (*tensor.Tensor[float32], error) {
	if ids.Rank() != 2 {
		return nil, &tensor.ShapeError{Op: "model forward", Expected: tensor.Shape{-1, -1}, Actual: ids.Shape(), Detail: "ids must be [batch, seq]"}
	}
	if seq := ids.Shape()[1]; seq > m.config.ContextLength {
		return nil, &tensor.RangeError{
			Op:    "model forward",
			What:  "sequence length",
			Index: -1,
			Value: seq,
			Low:   1,
			High:  m.config.ContextLength + 1,
		}
	}

	x, err := m.tokEmb.Forward(ids)
	if err != nil {
		return nil, err
	}
	if x, err = m.posEnc.Forward(x); err != nil {
		return nil, err
	}
	if x, err = m.embDrop.Forward(x, mode); err != nil {
		return nil, err
	}
	if x, err = m.blocks.Forward(x, mask, mode); err != nil {
		return nil, err
	}
	if m.finalNorm != nil {
		if x, err = m.finalNorm.Forward(x); err != nil {
			return nil, fmt.Errorf("final norm: %w", err)
		}
	}

	logits, err := m.head.Forward(x)
	if err != nil {
		return nil, fmt.Errorf("output head: %w", err)
	}
	return logits, nil
}

// Config returns the (defaulted) configuration the model was built with.
func (m *Model) Config() Config {
	return m.config
}

// Backend returns the compute backend.
func (m *Model) Backend() tensor.Backend {
	return m.backend
}

// ContextLength returns the longest sequence Forward accepts.
func (m *Model) ContextLength() int {
	return m.config.ContextLength
}

// PositionalTable returns a copy of the positional encoding table.
func (m *Model) PositionalTable() *tensor.Tensor[float32] {
	return m.posEnc.Table()
}

// Parameters returns all trainable parameters with dotted names
// (e.g., "blocks.3.attn.wq.weight"). The positional table is not a parameter.
func (m *Model) Parameters() []*nn.Parameter {
	params := make([]*nn.Parameter, 0, 2+13*m.blocks.Len()+2)
	params = append(params, nn.WithPrefix("tok_emb", m.tokEmb.Parameters())...)
	params = append(params, nn.WithPrefix("blocks", m.blocks.Parameters())...)
	if m.finalNorm != nil {
		params = append(params, nn.WithPrefix("final_norm", m.finalNorm.Parameters())...)
	}
	params = append(params, nn.WithPrefix("out_head", m.head.Parameters())...)
	return params
}

// NumParameters returns the total number of scalar weights.
func (m *Model) NumParameters() int {
	return nn.CountParameters(m.Parameters())
}

// Summary returns a human-readable description of the architecture.
func (m *Model) Summary() string {
	c := m.config
	var b strings.Builder
	b.WriteString("[GPT]\n")
	fmt.Fprintf(&b, "context_length: %d\n", c.ContextLength)
	fmt.Fprintf(&b, "vocab_size: %d\n", c.VocabSize)
	fmt.Fprintf(&b, "num_layers: %d\n", c.NumLayers)
	fmt.Fprintf(&b, "num_heads: %d\n", c.NumHeads)
	fmt.Fprintf(&b, "emb_dim: %d\n", c.EmbedDim)
	fmt.Fprintf(&b, "ffn_dim: %d\n", c.FFNDim())
	fmt.Fprintf(&b, "activation: %s\n", c.Activation)
	fmt.Fprintf(&b, "qkv_bias: %t\n", c.QKVBias)
	fmt.Fprintf(&b, "final_norm: %t\n", c.FinalNorm)
	fmt.Fprintf(&b, "init: %s\n", c.Init)
	fmt.Fprintf(&b, "backend: %s\n", m.backend.Name())
	fmt.Fprintf(&b, "num_parameters: %d\n", m.NumParameters())
	return b.String()
}
