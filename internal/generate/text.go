package generate

import (
	"context"
	"fmt"
	"strings"

	"github.com/born-ml/gptgen/internal/tokenizer"
)

// GenerateConfig configures text generation.
//
//nolint:revive // GenerateConfig is clearer than Config
type GenerateConfig struct {
	// MaxTokens is the number of tokens to generate.
	MaxTokens int

	// ContextSize is the number of trailing tokens fed to the model per
	// step. 0 uses the generator's context size.
	ContextSize int

	// EchoPrompt includes the prompt in output.
	EchoPrompt bool
}

// DefaultGenerateConfig returns sensible defaults for generation.
func DefaultGenerateConfig() GenerateConfig {
	return GenerateConfig{
		MaxTokens:   50,
		ContextSize: 0,
		EchoPrompt:  false,
	}
}

// GenerateResult is a single result from streaming text generation.
//
//nolint:revive // GenerateResult is clearer than Result
type GenerateResult struct {
	Token   string // Decoded token text
	TokenID int32  // Token ID
	Done    bool   // Is generation complete
	Error   error  // Error if any
}

// TextGenerator generates text from prompts.
type TextGenerator struct {
	generator   *Generator
	tokenizer   tokenizer.Tokenizer
	contextSize int
}

// GeneratorOption configures a TextGenerator.
type GeneratorOption func(*generatorOptions)

type generatorOptions struct {
	contextSize int
}

// WithContextSize sets the default context size. It defaults to the
// model's context length.
func WithContextSize(n int) GeneratorOption {
	return func(o *generatorOptions) {
		o.contextSize = n
	}
}

// NewTextGenerator creates a new text generator.
func NewTextGenerator(model LanguageModel, tok tokenizer.Tokenizer, opts ...GeneratorOption) *TextGenerator {
	options := &generatorOptions{
		contextSize: model.ContextLength(),
	}
	for _, opt := range opts {
		opt(options)
	}

	return &TextGenerator{
		generator:   New(model),
		tokenizer:   tok,
		contextSize: options.contextSize,
	}
}

// Tokenizer returns the tokenizer used for prompts and output.
func (g *TextGenerator) Tokenizer() tokenizer.Tokenizer {
	return g.tokenizer
}

// Generate encodes prompt, generates config.MaxTokens tokens and decodes them.
func (g *TextGenerator) Generate(prompt string, config GenerateConfig) (string, error) {
	inputIDs, err := g.tokenizer.Encode(prompt)
	if err != nil {
		return "", fmt.Errorf("encode prompt: %w", err)
	}

	ids, err := g.generator.Generate(inputIDs, config.MaxTokens, g.resolveContext(config))
	if err != nil {
		return "", err
	}

	text, err := g.tokenizer.Decode(ids[len(inputIDs):])
	if err != nil {
		return "", fmt.Errorf("decode output: %w", err)
	}

	var result strings.Builder
	if config.EchoPrompt {
		result.WriteString(prompt)
	}
	result.WriteString(text)
	return result.String(), nil
}

// GenerateStream generates text and returns a channel of results, one per
// token. The final result has Done set; with MaxTokens zero it is the only
// result and carries the prompt when EchoPrompt is set.
func (g *TextGenerator) GenerateStream(ctx context.Context, prompt string, config GenerateConfig) (<-chan GenerateResult, error) {
	inputIDs, err := g.tokenizer.Encode(prompt)
	if err != nil {
		return nil, fmt.Errorf("encode prompt: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	steps, err := g.generator.GenerateStream(ctx, inputIDs, config.MaxTokens, g.resolveContext(config))
	if err != nil {
		cancel()
		return nil, err
	}

	ch := make(chan GenerateResult, 1)
	send := func(res GenerateResult) bool {
		select {
		case ch <- res:
			return true
		case <-ctx.Done():
			return false
		}
	}

	go func() {
		defer close(ch)
		defer cancel() // stops the producer on early exit

		if config.MaxTokens == 0 {
			res := GenerateResult{Done: true}
			if config.EchoPrompt {
				res.Token = prompt
			}
			send(res)
			return
		}
		if config.EchoPrompt && !send(GenerateResult{Token: prompt}) {
			return
		}

		for step := range steps {
			res := GenerateResult{TokenID: step.TokenID, Error: step.Err}
			if step.Err == nil {
				res.Token, res.Error = g.tokenizer.Decode([]int32{step.TokenID})
			}
			res.Done = res.Error != nil || step.Step == config.MaxTokens-1
			if !send(res) || res.Error != nil {
				return
			}
		}
	}()

	return ch, nil
}

func (g *TextGenerator) resolveContext(config GenerateConfig) int {
	if config.ContextSize != 0 {
		return config.ContextSize
	}
	return g.contextSize
}
