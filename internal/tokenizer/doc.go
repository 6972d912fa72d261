// Package tokenizer provides text tokenization at the boundary of the model.
//
// The model consumes and produces integer token ids; this package converts
// between text and ids:
//   - TikToken: OpenAI BPE encodings via tiktoken-go (r50k_base is the GPT-2 vocabulary)
//   - HuggingFace: any tokenizer.json loaded with sugarme/tokenizer
//
// Example usage:
//
//	tok, err := tokenizer.NewGPT2()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ids, err := tok.Encode("Every effort moves you")
//	// ids == [6109, 3626, 6100, 345]
//
//	text, err := tok.Decode(ids)
package tokenizer
