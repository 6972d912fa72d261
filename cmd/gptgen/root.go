package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/born-ml/gptgen/backend/cpu"
	"github.com/born-ml/gptgen/gpt"
	"github.com/born-ml/gptgen/tokenizer"
)

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	verbose    bool
	configPath string
	preset     string
	seed       int64
	workers    int

	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "gptgen",
		Short: "Greedy text generation with a decoder-only transformer",
		Long: `gptgen builds a decoder-only transformer (GPT-2 layout with post-norm blocks
and sinusoidal positions) from a configuration and extends prompts one token
at a time by greedy decoding. Weights are randomly initialised from --seed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			opts.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
		},
	}

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVarP(&opts.configPath, "config", "c", "", "model configuration file (YAML or JSON); overrides --preset")
	flags.StringVar(&opts.preset, "preset", "gpt2-small", "built-in configuration: gpt2-small or tiny")
	flags.Int64Var(&opts.seed, "seed", 1, "weight initialisation seed")
	flags.IntVar(&opts.workers, "workers", 0, "CPU worker goroutines (0 = one per CPU, 1 = sequential)")

	cmd.AddCommand(
		newGenerateCmd(opts),
		newInfoCmd(opts),
		newTokenizeCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func (o *rootOptions) loadConfig() (gpt.Config, error) {
	if o.configPath != "" {
		return gpt.LoadConfig(o.configPath)
	}
	switch o.preset {
	case "gpt2-small":
		return gpt.GPT2SmallConfig(), nil
	case "tiny":
		return gpt.TinyConfig(), nil
	default:
		return gpt.Config{}, fmt.Errorf("unknown preset %q (want gpt2-small or tiny)", o.preset)
	}
}

func (o *rootOptions) buildModel() (*gpt.Model, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	var backendOpts []cpu.Option
	if o.workers > 0 {
		backendOpts = append(backendOpts, cpu.WithWorkers(o.workers))
	}
	backend := cpu.New(backendOpts...)

	o.logger.Debug("building model",
		"vocab_size", cfg.VocabSize,
		"context_length", cfg.ContextLength,
		"emb_dim", cfg.EmbedDim,
		"n_heads", cfg.NumHeads,
		"n_layers", cfg.NumLayers,
		"seed", o.seed,
		"parallel", backend.Parallel().Enabled,
	)

	model, err := gpt.New(cfg, backend, gpt.WithSeed(o.seed))
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	o.logger.Debug("model ready", "parameters", model.NumParameters())
	return model, nil
}

func loadTokenizer(path string) (tokenizer.Tokenizer, error) {
	if path != "" {
		return tokenizer.NewHuggingFace(path)
	}
	return tokenizer.NewGPT2()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func parseIDs(s string) ([]int32, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	ids := make([]int32, 0, len(fields))
	for _, f := range fields {
		id, err := strconv.ParseInt(f, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid token id %q: %w", f, err)
		}
		ids = append(ids, int32(id))
	}
	return ids, nil
}

func formatIDs(ids []int32) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(int(id))
	}
	return strings.Join(parts, ",")
}
