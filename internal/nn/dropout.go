package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/gptgen/internal/tensor"
)

// Dropout zeroes elements with probability Rate in training mode and scales
// the survivors by 1/(1-Rate) (inverted dropout). In inference mode it is
// the identity.
type Dropout struct {
	Rate    float32
	rng     *lockedRand
	backend tensor.Backend
}

// NewDropout creates a dropout layer. rng is only consulted in training mode.
func NewDropout(rate float32, rng *rand.Rand, backend tensor.Backend) *Dropout {
	if rate < 0 || rate >= 1 {
		panic(fmt.Sprintf("Dropout: rate must be in [0, 1), got %v", rate))
	}
	return newDropout(rate, &lockedRand{rng: rng}, backend)
}

// newDropout creates a dropout layer drawing from a generator shared with
// other layers.
func newDropout(rate float32, rng *lockedRand, backend tensor.Backend) *Dropout {
	return &Dropout{
		Rate:    rate,
		rng:     rng,
		backend: backend,
	}
}

// Forward applies dropout according to mode.
func (d *Dropout) Forward(x *tensor.Tensor[float32], mode Mode) (*tensor.Tensor[float32], error) {
	if mode != ModeTraining || d.Rate == 0 {
		return x, nil
	}

	scale := 1 / (1 - d.Rate)
	keep := tensor.Zeros[float32](x.Shape())
	data := keep.Data()
	for i := range data {
		if d.rng.float64() >= float64(d.Rate) {
			data[i] = scale
		}
	}

	out, err := d.backend.Mul(x, keep)
	if err != nil {
		return nil, fmt.Errorf("dropout: %w", err)
	}
	return out, nil
}

// Parameters returns an empty slice.
func (d *Dropout) Parameters() []*Parameter {
	return []*Parameter{}
}
