package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

const (
	// EncodingR50kBase is the GPT-2 encoding.
	EncodingR50kBase = "r50k_base"
	// encodingP50kBase is the encoding name for GPT-3 / Codex.
	encodingP50kBase = "p50k_base"
	// encodingCL100kBase is the encoding name for GPT-4 and GPT-3.5-turbo.
	encodingCL100kBase = "cl100k_base"

	// GPT2EOS is <|endoftext|> in the GPT-2 vocabulary.
	GPT2EOS int32 = 50256
)

// TikToken wraps the pkoukk/tiktoken-go library for OpenAI tokenizers.
//
// Supported encodings:
//   - r50k_base: GPT-2 (50257 tokens)
//   - p50k_base: GPT-3, Codex
//   - cl100k_base: GPT-4, GPT-3.5-turbo
//
// Loading an encoding downloads its BPE ranks on first use unless
// TIKTOKEN_CACHE_DIR points at a cache that already holds them.
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTikToken creates a new TikToken tokenizer with the specified encoding.
func NewTikToken(encodingName string) (*TikToken, error) {
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encodingName, err)
	}

	return &TikToken{
		encoding: encoding,
		name:     encodingName,
	}, nil
}

// NewGPT2 returns the GPT-2 tokenizer (r50k_base).
func NewGPT2() (*TikToken, error) {
	return NewTikToken(EncodingR50kBase)
}

// Encode converts text to token IDs. Special tokens such as <|endoftext|>
// written in the text are encoded as their special IDs.
func (t *TikToken) Encode(text string) ([]int32, error) {
	return toInt32(t.encoding.Encode(text, []string{"all"}, nil)), nil
}

// Decode converts token IDs back to text.
func (t *TikToken) Decode(tokens []int32) (string, error) {
	vocab := t.VocabSize()
	for i, tok := range tokens {
		if tok < 0 || int(tok) >= vocab {
			return "", fmt.Errorf("decode: token %d at position %d not in [0, %d)", tok, i, vocab)
		}
	}
	return t.encoding.Decode(toInt(tokens)), nil
}

// VocabSize returns the total vocabulary size, special tokens included.
func (t *TikToken) VocabSize() int {
	switch t.name {
	case encodingCL100kBase:
		return 100277
	case encodingP50kBase:
		return 50281
	default:
		return 50257
	}
}

// EosToken returns the <|endoftext|> token ID.
func (t *TikToken) EosToken() int32 {
	switch t.name {
	case encodingCL100kBase:
		return 100257
	case encodingP50kBase, EncodingR50kBase:
		return GPT2EOS
	default:
		return -1
	}
}

// Name returns the encoding name.
func (t *TikToken) Name() string {
	return t.name
}
