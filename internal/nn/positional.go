package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/gptgen/internal/tensor"
)

// SinusoidalPositionalEncoding implements fixed sinusoidal positional encodings.
//
// Mathematical formulation:
//
//	PE(pos, 2i)   = sin(pos / 10000^(2i/d))
//	PE(pos, 2i+1) = cos(pos / 10000^(2i/d))
//
// Where:
//   - pos is the position (0 to max_len-1)
//   - i is the dimension pair index (0 to d/2-1)
//   - d is the model dimension
//
// The table is computed once and never modified; it is not a Parameter.
//
// Example:
//
//	pe := nn.NewSinusoidalPositionalEncoding(1024, 768, backend)
//	x, err = pe.Forward(x) // [batch, seq, 768] + PE[:seq]
type SinusoidalPositionalEncoding struct {
	encoding *tensor.Tensor[float32] // [max_len, dim]
	maxLen   int
	dim      int
	backend  tensor.Backend
}

// NewSinusoidalPositionalEncoding pre-computes the encodings for positions
// [0, maxLen).
func NewSinusoidalPositionalEncoding(maxLen, dim int, backend tensor.Backend) *SinusoidalPositionalEncoding {
	if maxLen <= 0 {
		panic(fmt.Sprintf("SinusoidalPositionalEncoding: maxLen must be positive, got %d", maxLen))
	}
	if dim <= 0 {
		panic(fmt.Sprintf("SinusoidalPositionalEncoding: dim must be positive, got %d", dim))
	}

	encodings := make([]float32, maxLen*dim)
	for pos := 0; pos < maxLen; pos++ {
		for i := 0; i < dim; i++ {
			// Columns 2i and 2i+1 share the frequency 1/10000^(2i/d).
			angle := float64(pos) / math.Pow(10000.0, float64(2*(i/2))/float64(dim))

			idx := pos*dim + i
			if i%2 == 0 {
				encodings[idx] = float32(math.Sin(angle))
			} else {
				encodings[idx] = float32(math.Cos(angle))
			}
		}
	}

	return &SinusoidalPositionalEncoding{
		encoding: tensor.Wrap(encodings, tensor.Shape{maxLen, dim}),
		maxLen:   maxLen,
		dim:      dim,
		backend:  backend,
	}
}

// Forward adds the first seq rows of the table to x, broadcasting over batch.
//
// x must be [batch, seq, dim]. A seq longer than MaxLen is a
// *tensor.RangeError.
func (s *SinusoidalPositionalEncoding) Forward(x *tensor.Tensor[float32]) (*tensor.Tensor[float32], error) {
	shape := x.Shape()
	if len(shape) != 3 || shape[2] != s.dim {
		return nil, &tensor.ShapeError{Op: "positional encoding", Expected: tensor.Shape{-1, -1, s.dim}, Actual: shape}
	}

	seqLen := shape[1]
	if seqLen > s.maxLen {
		return nil, &tensor.RangeError{
			Op:    "positional encoding",
			What:  "sequence length",
			Index: -1,
			Value: seqLen,
			Low:   1,
			High:  s.maxLen + 1,
		}
	}

	// The first seqLen rows are a contiguous prefix of the table.
	prefix := tensor.Wrap(s.encoding.Data()[:seqLen*s.dim], tensor.Shape{seqLen, s.dim})
	out, err := s.backend.Add(x, prefix)
	if err != nil {
		return nil, fmt.Errorf("positional encoding: %w", err)
	}
	return out, nil
}

// Table returns a copy of the full [MaxLen, Dim] encoding table.
func (s *SinusoidalPositionalEncoding) Table() *tensor.Tensor[float32] {
	return s.encoding.Clone()
}

// MaxLen returns the number of pre-computed positions.
func (s *SinusoidalPositionalEncoding) MaxLen() int {
	return s.maxLen
}

// Dim returns the encoding dimension.
func (s *SinusoidalPositionalEncoding) Dim() int {
	return s.dim
}
