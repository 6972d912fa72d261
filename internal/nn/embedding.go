package nn

import (
	"fmt"

	"github.com/born-ml/gptgen/internal/tensor"
)

// Embedding is a lookup table that maps token ids to dense vectors.
//
// Architecture:
//   - Weight: [NumEmbed, EmbedDim] learnable parameter
//   - Forward: indices [batch, seq] -> embeddings [batch, seq, EmbedDim]
//
// Example:
//
//	embed := nn.NewEmbedding(50257, 768, nn.NormalInit(0.02, rng), backend)
//	ids := tensor.MustFromSlice([]int32{6109, 1110, 318, 534}, tensor.Shape{1, 4})
//	embeddings, err := embed.Forward(ids) // [1, 4, 768]
type Embedding struct {
	Weight   *Parameter // Embedding weight matrix [NumEmbed, EmbedDim]
	NumEmbed int        // Number of embeddings (vocabulary size)
	EmbedDim int        // Embedding dimension (vector size)
	backend  tensor.Backend
}

// NewEmbedding creates a new Embedding layer with weights drawn from init.
func NewEmbedding(numEmbeddings, embeddingDim int, init Initializer, backend tensor.Backend) *Embedding {
	if numEmbeddings <= 0 || embeddingDim <= 0 {
		panic(fmt.Sprintf("Embedding: sizes must be positive, got %dx%d", numEmbeddings, embeddingDim))
	}
	return &Embedding{
		Weight:   NewParameter("weight", init(tensor.Shape{numEmbeddings, embeddingDim})),
		NumEmbed: numEmbeddings,
		EmbedDim: embeddingDim,
		backend:  backend,
	}
}

// Forward looks up the embedding of every id.
//
// Any id outside [0, NumEmbed) yields a *tensor.RangeError naming its
// position and value; no partial output is produced.
func (e *Embedding) Forward(indices *tensor.Tensor[int32]) (*tensor.Tensor[float32], error) {
	out, err := e.backend.Embedding(e.Weight.Tensor(), indices)
	if err != nil {
		return nil, fmt.Errorf("token embedding: %w", err)
	}
	return out, nil
}

// Parameters returns the embedding weight.
func (e *Embedding) Parameters() []*Parameter {
	return []*Parameter{e.Weight}
}
