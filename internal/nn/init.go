package nn

import (
	"math"
	"math/rand"
	"sync"

	"github.com/born-ml/gptgen/internal/tensor"
)

// Initializer produces a freshly initialized weight tensor of the given shape.
type Initializer func(shape tensor.Shape) *tensor.Tensor[float32]

// lockedRand serializes access to a *rand.Rand shared by several
// initializers or dropout layers.
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (r *lockedRand) normFloat64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.NormFloat64()
}

func (r *lockedRand) float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

// NormalInit draws weights from N(0, std²) using rng.
//
// Two models built from generators with the same seed get identical weights.
func NormalInit(std float32, rng *rand.Rand) Initializer {
	lr := &lockedRand{rng: rng}
	return func(shape tensor.Shape) *tensor.Tensor[float32] {
		t := tensor.Zeros[float32](shape)
		data := t.Data()
		for i := range data {
			data[i] = float32(lr.normFloat64()) * std
		}
		return t
	}
}

// XavierInit draws weights from the Glorot uniform distribution
// U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out))).
//
// The shape must be [fan_out, fan_in].
func XavierInit(rng *rand.Rand) Initializer {
	lr := &lockedRand{rng: rng}
	return func(shape tensor.Shape) *tensor.Tensor[float32] {
		fanOut, fanIn := shape[0], shape.Last()
		bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

		t := tensor.Zeros[float32](shape)
		data := t.Data()
		for i := range data {
			data[i] = float32((lr.float64()*2.0 - 1.0) * bound)
		}
		return t
	}
}

// Zeros creates a tensor filled with zeros.
//
// This is commonly used for bias initialization.
func Zeros(shape tensor.Shape) *tensor.Tensor[float32] {
	return tensor.Zeros[float32](shape)
}

// Ones creates a tensor filled with ones.
func Ones(shape tensor.Shape) *tensor.Tensor[float32] {
	return tensor.Ones[float32](shape)
}
