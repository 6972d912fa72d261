// Package tokenizer provides text tokenization for generation.
//
// This package wraps the internal tokenizer implementations and provides
// a clean public API for tokenization tasks.
//
// Supported tokenizers:
//   - TikToken: OpenAI BPE tokenizers (r50k_base is GPT-2)
//   - HuggingFace: tokenizer.json files
//
// Example usage:
//
//	import "github.com/born-ml/gptgen/tokenizer"
//
//	tok, err := tokenizer.NewGPT2()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	tokens, err := tok.Encode("Every effort moves you")
//	text, err := tok.Decode(tokens)
package tokenizer

import (
	"github.com/born-ml/gptgen/internal/tokenizer"
)

// Tokenizer is the core interface for text tokenization.
type Tokenizer = tokenizer.Tokenizer

// GPT2EOS is the <|endoftext|> token id of the GPT-2 vocabulary.
const GPT2EOS = tokenizer.GPT2EOS

// NewTikToken creates a new TikToken tokenizer with the specified encoding.
//
// Supported encodings: "r50k_base" (GPT-2), "p50k_base" (GPT-3), "cl100k_base" (GPT-4).
func NewTikToken(encodingName string) (Tokenizer, error) {
	tok, err := tokenizer.NewTikToken(encodingName)
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// NewGPT2 returns the GPT-2 tokenizer.
func NewGPT2() (Tokenizer, error) {
	tok, err := tokenizer.NewGPT2()
	if err != nil {
		return nil, err
	}
	return tok, nil
}

// NewHuggingFace loads a HuggingFace tokenizer.json file.
func NewHuggingFace(path string) (Tokenizer, error) {
	tok, err := tokenizer.NewHuggingFace(path)
	if err != nil {
		return nil, err
	}
	return tok, nil
}
