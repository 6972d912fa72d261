package tokenizer

import (
	"fmt"

	hf "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"
)

// HuggingFace adapts a tokenizer.json (HuggingFace tokenizers format) loaded
// with sugarme/tokenizer.
type HuggingFace struct {
	tk   *hf.Tokenizer
	name string
	eos  int32
}

// eosCandidates are probed in order to find the end-of-sequence token.
var eosCandidates = []string{"<|endoftext|>", "</s>", "<eos>", "[SEP]"}

// NewHuggingFace loads a tokenizer.json file.
func NewHuggingFace(path string) (*HuggingFace, error) {
	tk, err := pretrained.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load tokenizer %q: %w", path, err)
	}

	eos := int32(-1)
	for _, token := range eosCandidates {
		if id, ok := tk.TokenToId(token); ok {
			eos = int32(id) //nolint:gosec // G115: Token ID fits in int32.
			break
		}
	}

	return &HuggingFace{tk: tk, name: path, eos: eos}, nil
}

// Encode converts text to token IDs without adding special tokens.
func (h *HuggingFace) Encode(text string) ([]int32, error) {
	enc, err := h.tk.EncodeSingle(text, false)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return toInt32(enc.Ids), nil
}

// Decode converts token IDs back to text. Special tokens are kept.
func (h *HuggingFace) Decode(tokens []int32) (string, error) {
	vocab := h.VocabSize()
	for i, tok := range tokens {
		if tok < 0 || int(tok) >= vocab {
			return "", fmt.Errorf("decode: token %d at position %d not in [0, %d)", tok, i, vocab)
		}
	}
	return h.tk.Decode(toInt(tokens), false), nil
}

// VocabSize returns the vocabulary size including added tokens.
func (h *HuggingFace) VocabSize() int {
	return h.tk.GetVocabSize(true)
}

// EosToken returns the end-of-sequence token ID, or -1 if the vocabulary
// has none of the usual EOS tokens.
func (h *HuggingFace) EosToken() int32 {
	return h.eos
}

// Name returns the path the tokenizer was loaded from.
func (h *HuggingFace) Name() string {
	return h.name
}
