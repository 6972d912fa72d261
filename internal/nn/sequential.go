package nn

import (
	"fmt"
	"strconv"

	"github.com/born-ml/gptgen/internal/tensor"
)

// Sequential is a container that chains blocks together.
//
// Each block's output becomes the next block's input, and every block
// receives the same mask and mode:
//
//	stack := nn.NewSequential(block0, block1, block2)
//	output, err := stack.Forward(x, nil, nn.ModeInference)
type Sequential struct {
	blocks []Block
}

// NewSequential creates a new Sequential container.
func NewSequential(blocks ...Block) *Sequential {
	return &Sequential{
		blocks: blocks,
	}
}

// Forward applies all blocks in sequence.
func (s *Sequential) Forward(x, mask *tensor.Tensor[float32], mode Mode) (*tensor.Tensor[float32], error) {
	output := x
	for i, block := range s.blocks {
		var err error
		output, err = block.Forward(output, mask, mode)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", i, err)
		}
	}
	return output, nil
}

// Parameters returns all trainable parameters, prefixed with the block index
// (e.g., "0.attn.wq.weight").
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for i, block := range s.blocks {
		params = append(params, WithPrefix(strconv.Itoa(i), block.Parameters())...)
	}
	return params
}

// Add appends a block to the sequence.
func (s *Sequential) Add(block Block) {
	s.blocks = append(s.blocks, block)
}

// Len returns the number of blocks in the sequence.
func (s *Sequential) Len() int {
	return len(s.blocks)
}

// Block returns the block at the given index.
//
// Panics if index is out of bounds.
func (s *Sequential) Block(index int) Block {
	if index < 0 || index >= len(s.blocks) {
		panic("Sequential.Block: index out of bounds")
	}
	return s.blocks[index]
}
