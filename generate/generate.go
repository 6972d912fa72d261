// Package generate provides greedy text generation.
//
// This package wraps the internal generate implementation and provides
// a clean public API for generation tasks.
//
// Components:
//   - Generator: extends token id sequences by greedy decoding
//   - TextGenerator: encodes a prompt, generates and decodes the result
//
// Example usage:
//
//	import (
//	    "github.com/born-ml/gptgen/generate"
//	    "github.com/born-ml/gptgen/tokenizer"
//	)
//
//	tok, _ := tokenizer.NewGPT2()
//	gen := generate.NewTextGenerator(model, tok)
//	text, err := gen.Generate("Every effort moves you", generate.GenerateConfig{MaxTokens: 10})
package generate

import (
	"github.com/born-ml/gptgen/internal/generate"
	"github.com/born-ml/gptgen/tensor"
	"github.com/born-ml/gptgen/tokenizer"
)

// LanguageModel is the interface for models used in generation.
// *gpt.Model implements it.
type LanguageModel = generate.LanguageModel

// Generator extends token sequences by greedy decoding.
type Generator = generate.Generator

// StepResult is a single result from Generator.GenerateStream.
type StepResult = generate.StepResult

// ErrInvalidArgument is wrapped by every argument validation failure.
var ErrInvalidArgument = generate.ErrInvalidArgument

// New creates a generator for model.
//
// Example:
//
//	gen := generate.New(model)
//	ids, err := gen.Generate([]int32{6109, 1110, 318, 534}, 5, 1024)
//	// len(ids) == 9
func New(model LanguageModel) *Generator {
	return generate.New(model)
}

// Greedy picks the arg-max token of the softmax over each row of
// last-position logits [batch, vocab].
func Greedy(backend tensor.Backend, logits *tensor.Tensor[float32]) ([]int32, error) {
	return generate.Greedy(backend, logits)
}

// Text generation

// GenerateConfig configures text generation.
//
//nolint:revive // GenerateConfig is clearer than Config
type GenerateConfig = generate.GenerateConfig

// DefaultGenerateConfig returns sensible defaults for generation.
func DefaultGenerateConfig() GenerateConfig {
	return generate.DefaultGenerateConfig()
}

// GenerateResult is a single result from TextGenerator.GenerateStream.
//
//nolint:revive // GenerateResult is clearer than Result
type GenerateResult = generate.GenerateResult

// TextGenerator generates text from prompts.
type TextGenerator = generate.TextGenerator

// GeneratorOption configures a TextGenerator.
type GeneratorOption = generate.GeneratorOption

// WithContextSize sets the default number of trailing tokens fed to the model.
func WithContextSize(n int) GeneratorOption {
	return generate.WithContextSize(n)
}

// NewTextGenerator creates a new text generator.
func NewTextGenerator(model LanguageModel, tok tokenizer.Tokenizer, opts ...GeneratorOption) *TextGenerator {
	return generate.NewTextGenerator(model, tok, opts...)
}
