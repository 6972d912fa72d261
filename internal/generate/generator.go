package generate

import (
	"context"
	"errors"
	"fmt"

	"github.com/born-ml/gptgen/internal/tensor"
)

// ErrInvalidArgument is wrapped by every argument validation failure.
var ErrInvalidArgument = errors.New("generate: invalid argument")

// LanguageModel is the interface for models used in generation.
type LanguageModel interface {
	// Forward runs a forward pass and returns logits.
	// Input shape: [batch, seq_len]
	// Output shape: [batch, seq_len, vocab_size]
	Forward(ids *tensor.Tensor[int32], mask *tensor.Tensor[float32]) (*tensor.Tensor[float32], error)

	// Backend returns the backend used for next-token selection.
	Backend() tensor.Backend

	// ContextLength returns the longest sequence Forward accepts.
	ContextLength() int
}

// Generator extends token sequences by greedy decoding.
//
// A Generator holds no per-call state; concurrent calls are safe when the
// model's Forward is.
type Generator struct {
	model LanguageModel
}

// New creates a generator for model.
func New(model LanguageModel) *Generator {
	return &Generator{model: model}
}

// StepResult is a single result from streaming generation.
type StepResult struct {
	Step    int   // Zero-based index of the generated token
	TokenID int32 // Generated token ID
	Err     error // Error if any; it is the last result sent
}

// Generate appends maxNewTokens greedily chosen tokens to ids.
//
// Every step feeds the model only the last contextSize tokens, with no
// attention mask, and appends the arg-max of the softmax over the final
// position's logits. The returned slice is a new slice holding ids followed
// by the generated tokens; ids is not modified.
func (g *Generator) Generate(ids []int32, maxNewTokens, contextSize int) ([]int32, error) {
	out, err := g.GenerateBatch([][]int32{ids}, maxNewTokens, contextSize)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// GenerateBatch runs Generate over equal-length prompts in one forward pass
// per step. Rows are decoded independently.
func (g *Generator) GenerateBatch(batch [][]int32, maxNewTokens, contextSize int) ([][]int32, error) {
	if err := g.validate(batch, maxNewTokens, contextSize); err != nil {
		return nil, err
	}

	seqs := make([][]int32, len(batch))
	for i, ids := range batch {
		seqs[i] = make([]int32, len(ids), len(ids)+maxNewTokens)
		copy(seqs[i], ids)
	}

	for step := 0; step < maxNewTokens; step++ {
		next, err := g.step(seqs, contextSize)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", step, err)
		}
		for i := range seqs {
			seqs[i] = append(seqs[i], next[i])
		}
	}
	return seqs, nil
}

// GenerateStream generates like Generate and sends every new token on the
// returned channel as soon as it is chosen. The channel is closed after the
// last token or the first error. Cancelling ctx stops generation before the
// next step.
func (g *Generator) GenerateStream(ctx context.Context, ids []int32, maxNewTokens, contextSize int) (<-chan StepResult, error) {
	if err := g.validate([][]int32{ids}, maxNewTokens, contextSize); err != nil {
		return nil, err
	}

	seq := make([]int32, len(ids), len(ids)+maxNewTokens)
	copy(seq, ids)

	ch := make(chan StepResult, 1)

	go func() {
		defer close(ch)

		seqs := [][]int32{seq}
		for step := 0; step < maxNewTokens; step++ {
			if ctx.Err() != nil {
				return
			}

			res := StepResult{Step: step}
			next, err := g.step(seqs, contextSize)
			if err != nil {
				res.Err = fmt.Errorf("step %d: %w", step, err)
			} else {
				res.TokenID = next[0]
				seqs[0] = append(seqs[0], next[0])
			}

			select {
			case ch <- res:
			case <-ctx.Done():
				return
			}
			if res.Err != nil {
				return
			}
		}
	}()

	return ch, nil
}

// step runs one decode step over the trailing contextSize tokens of every
// sequence and returns the chosen token per sequence.
func (g *Generator) step(seqs [][]int32, contextSize int) ([]int32, error) {
	seqLen := len(seqs[0])
	start := max(0, seqLen-contextSize)
	window := seqLen - start

	data := make([]int32, 0, len(seqs)*window)
	for _, seq := range seqs {
		data = append(data, seq[start:]...)
	}
	ids := tensor.Wrap(data, tensor.Shape{len(seqs), window})

	logits, err := g.model.Forward(ids, nil)
	if err != nil {
		return nil, fmt.Errorf("forward: %w", err)
	}

	last, err := lastPosition(logits)
	if err != nil {
		return nil, err
	}
	if last.Shape()[0] != len(seqs) {
		return nil, &tensor.ShapeError{Op: "generate.step", Expected: tensor.Shape{len(seqs), window, -1}, Actual: logits.Shape()}
	}

	return Greedy(g.model.Backend(), last)
}

func (g *Generator) validate(batch [][]int32, maxNewTokens, contextSize int) error {
	switch {
	case maxNewTokens < 0:
		return fmt.Errorf("%w: max new tokens %d is negative", ErrInvalidArgument, maxNewTokens)
	case contextSize <= 0:
		return fmt.Errorf("%w: context size %d must be positive", ErrInvalidArgument, contextSize)
	case contextSize > g.model.ContextLength():
		return fmt.Errorf("%w: context size %d exceeds model context length %d",
			ErrInvalidArgument, contextSize, g.model.ContextLength())
	case len(batch) == 0:
		return fmt.Errorf("%w: empty batch", ErrInvalidArgument)
	}

	for i, ids := range batch {
		if len(ids) == 0 {
			return fmt.Errorf("%w: sequence %d is empty", ErrInvalidArgument, i)
		}
		if len(ids) != len(batch[0]) {
			return fmt.Errorf("%w: sequence %d has length %d, want %d", ErrInvalidArgument, i, len(ids), len(batch[0]))
		}
	}
	return nil
}
