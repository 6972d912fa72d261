// Package generate extends token sequences with a decoder-only language model.
//
// Decoding is greedy: every step runs the model over the (truncated)
// sequence, turns the logits at the last position into a probability
// distribution and appends the most probable token.
package generate

import (
	"fmt"

	"github.com/born-ml/gptgen/internal/tensor"
)

// lastPosition copies the logits of the final sequence position out of a
// [batch, seq, vocab] tensor, giving [batch, vocab].
func lastPosition(logits *tensor.Tensor[float32]) (*tensor.Tensor[float32], error) {
	shape := logits.Shape()
	if len(shape) != 3 || shape[1] == 0 {
		return nil, &tensor.ShapeError{Op: "generate.lastPosition", Expected: tensor.Shape{-1, -1, -1}, Actual: shape}
	}

	batch, seqLen, vocab := shape[0], shape[1], shape[2]
	src := logits.Data()
	out := make([]float32, batch*vocab)
	for b := 0; b < batch; b++ {
		start := (b*seqLen + seqLen - 1) * vocab
		copy(out[b*vocab:(b+1)*vocab], src[start:start+vocab])
	}
	return tensor.Wrap(out, tensor.Shape{batch, vocab}), nil
}

// Greedy picks the next token for every row of last-position logits
// [batch, vocab]: softmax over the vocabulary, then argmax. Ties resolve to
// the lowest token id.
func Greedy(backend tensor.Backend, logits *tensor.Tensor[float32]) ([]int32, error) {
	if logits.Rank() != 2 {
		return nil, &tensor.ShapeError{Op: "generate.Greedy", Expected: tensor.Shape{-1, -1}, Actual: logits.Shape()}
	}

	probs, err := backend.Softmax(logits, -1)
	if err != nil {
		return nil, fmt.Errorf("softmax: %w", err)
	}
	next, err := backend.Argmax(probs, -1)
	if err != nil {
		return nil, fmt.Errorf("argmax: %w", err)
	}
	return next.Data(), nil
}
