package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/born-ml/gptgen/generate"
)

type generateOptions struct {
	prompt        string
	ids           string
	maxNewTokens  int
	contextSize   int
	tokenizerPath string
	stream        bool
}

func newGenerateCmd(root *rootOptions) *cobra.Command {
	opts := &generateOptions{}

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Extend a prompt by greedy decoding",
		Long: `Generate encodes --prompt with the tokenizer (GPT-2 r50k_base unless
--tokenizer names a tokenizer.json), appends --max-new-tokens greedily chosen
tokens and prints the decoded text. With --ids the token ids are used directly
and the resulting ids are printed.`,
		Example: `  gptgen generate --prompt "Every effort moves you" --max-new-tokens 5
  gptgen generate --ids 6109,1110,318,534 --max-new-tokens 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if (opts.prompt == "") == (opts.ids == "") {
				return errors.New("exactly one of --prompt or --ids is required")
			}

			model, err := root.buildModel()
			if err != nil {
				return err
			}

			contextSize := opts.contextSize
			if contextSize == 0 {
				contextSize = model.ContextLength()
			}
			out := cmd.OutOrStdout()
			start := time.Now()

			if opts.ids != "" {
				ids, err := parseIDs(opts.ids)
				if err != nil {
					return err
				}
				result, err := generate.New(model).Generate(ids, opts.maxNewTokens, contextSize)
				if err != nil {
					return err
				}
				root.logger.Debug("generated", "new_tokens", opts.maxNewTokens, "elapsed", time.Since(start))
				fmt.Fprintln(out, formatIDs(result))
				return nil
			}

			tok, err := loadTokenizer(opts.tokenizerPath)
			if err != nil {
				return err
			}
			if tok.VocabSize() > model.Config().VocabSize {
				root.logger.Warn("tokenizer vocabulary exceeds model vocabulary",
					"tokenizer", tok.Name(), "tokenizer_vocab", tok.VocabSize(), "model_vocab", model.Config().VocabSize)
			}

			gen := generate.NewTextGenerator(model, tok, generate.WithContextSize(contextSize))
			config := generate.GenerateConfig{MaxTokens: opts.maxNewTokens, EchoPrompt: true}

			if opts.stream {
				ch, err := gen.GenerateStream(commandContext(cmd), opts.prompt, config)
				if err != nil {
					return err
				}
				for res := range ch {
					if res.Error != nil {
						return res.Error
					}
					fmt.Fprint(out, res.Token)
				}
				fmt.Fprintln(out)
				return commandContext(cmd).Err()
			}

			text, err := gen.Generate(opts.prompt, config)
			if err != nil {
				return err
			}
			root.logger.Debug("generated", "new_tokens", opts.maxNewTokens, "elapsed", time.Since(start))
			fmt.Fprintln(out, text)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.prompt, "prompt", "p", "", "prompt text")
	flags.StringVar(&opts.ids, "ids", "", "comma-separated prompt token ids")
	flags.IntVarP(&opts.maxNewTokens, "max-new-tokens", "n", 10, "number of tokens to generate")
	flags.IntVar(&opts.contextSize, "context-size", 0, "trailing tokens fed to the model per step (0 = model context length)")
	flags.StringVar(&opts.tokenizerPath, "tokenizer", "", "HuggingFace tokenizer.json (default GPT-2 r50k_base)")
	flags.BoolVar(&opts.stream, "stream", false, "print tokens as they are generated")

	return cmd
}

func newInfoCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print the model architecture and parameter count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			model, err := root.buildModel()
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), model.Summary())
			return nil
		},
	}
}

func newTokenizeCmd(_ *rootOptions) *cobra.Command {
	var tokenizerPath string

	cmd := &cobra.Command{
		Use:   "tokenize <text>",
		Short: "Print the token ids of text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tok, err := loadTokenizer(tokenizerPath)
			if err != nil {
				return err
			}
			ids, err := tok.Encode(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatIDs(ids))
			return nil
		},
	}
	cmd.Flags().StringVar(&tokenizerPath, "tokenizer", "", "HuggingFace tokenizer.json (default GPT-2 r50k_base)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "gptgen %s\n", version)
		},
	}
}
