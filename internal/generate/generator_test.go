package generate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/gptgen/internal/backend/cpu"
	"github.com/born-ml/gptgen/internal/gpt"
	"github.com/born-ml/gptgen/internal/parallel"
	"github.com/born-ml/gptgen/internal/tensor"
)

// countingModel predicts (last token + 1) mod vocab and records the input
// windows it was given.
type countingModel struct {
	vocab   int
	context int
	err     error

	mu      sync.Mutex
	windows [][]int32
}

func newCountingModel(vocab int) *countingModel {
	return &countingModel{vocab: vocab, context: 16}
}

func (m *countingModel) Forward(ids *tensor.Tensor[int32], _ *tensor.Tensor[float32]) (*tensor.Tensor[float32], error) {
	if m.err != nil {
		return nil, m.err
	}

	shape := ids.Shape()
	batch, seqLen := shape[0], shape[1]
	data := ids.Data()

	m.mu.Lock()
	for b := 0; b < batch; b++ {
		m.windows = append(m.windows, append([]int32(nil), data[b*seqLen:(b+1)*seqLen]...))
	}
	m.mu.Unlock()

	logits := tensor.Zeros[float32](tensor.Shape{batch, seqLen, m.vocab})
	for b := 0; b < batch; b++ {
		for p := 0; p < seqLen; p++ {
			next := (int(data[b*seqLen+p]) + 1) % m.vocab
			logits.Set(5, b, p, next)
		}
	}
	return logits, nil
}

func (m *countingModel) Backend() tensor.Backend { return cpu.New() }

func (m *countingModel) ContextLength() int { return m.context }

func TestGenerate_AppendsTokens(t *testing.T) {
	g := New(newCountingModel(8))
	input := []int32{1, 2}

	out, err := g.Generate(input, 3, 4)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 2, 3, 4, 5}, out)
	assert.Equal(t, []int32{1, 2}, input, "input must not be modified")
}

func TestGenerate_ZeroNewTokens(t *testing.T) {
	model := newCountingModel(8)
	input := []int32{4, 5, 6}

	out, err := New(model).Generate(input, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, input, out)
	assert.Empty(t, model.windows, "no forward pass")

	out[0] = 7
	assert.Equal(t, int32(4), input[0], "result is a copy")
}

func TestGenerate_TruncatesToContextSize(t *testing.T) {
	model := newCountingModel(8)

	out, err := New(model).Generate([]int32{0, 1, 2, 3, 4}, 3, 2)
	require.NoError(t, err)
	assert.Equal(t, []int32{0, 1, 2, 3, 4, 5, 6, 7}, out)

	assert.Equal(t, [][]int32{{3, 4}, {4, 5}, {5, 6}}, model.windows)
}

func TestGenerate_ShortPromptIsNotPadded(t *testing.T) {
	model := newCountingModel(8)

	_, err := New(model).Generate([]int32{1}, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, [][]int32{{1}, {1, 2}}, model.windows)
}

func TestGenerate_InvalidArguments(t *testing.T) {
	g := New(newCountingModel(8))

	tests := []struct {
		name        string
		ids         []int32
		maxNew, ctx int
	}{
		{"negative max new", []int32{1}, -1, 4},
		{"zero context", []int32{1}, 1, 0},
		{"negative context", []int32{1}, 1, -3},
		{"empty input", nil, 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Generate(tt.ids, tt.maxNew, tt.ctx)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestGenerate_ContextSizeAboveModelLimit(t *testing.T) {
	model := newCountingModel(8)
	g := New(model)

	// The window would only outgrow the model after 14 steps.
	_, err := g.Generate([]int32{1, 2, 3}, 20, model.ContextLength()+16)
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, model.windows, "rejected before any forward pass")

	_, err = g.GenerateStream(context.Background(), []int32{1}, 1, model.ContextLength()+1)
	require.ErrorIs(t, err, ErrInvalidArgument)

	out, err := g.Generate([]int32{1, 2, 3}, 2, model.ContextLength())
	require.NoError(t, err)
	assert.Len(t, out, 5)
}

func TestGenerate_ModelErrorIsReturned(t *testing.T) {
	model := newCountingModel(8)
	model.err = &tensor.RangeError{Op: "embedding", Index: 0, Value: 99, Low: 0, High: 8}

	_, err := New(model).Generate([]int32{99}, 1, 4)
	require.Error(t, err)
	assert.ErrorIs(t, err, tensor.ErrRange)

	var rangeErr *tensor.RangeError
	require.ErrorAs(t, err, &rangeErr)
	assert.Equal(t, 99, rangeErr.Value)
}

func TestGenerateBatch(t *testing.T) {
	g := New(newCountingModel(8))

	out, err := g.GenerateBatch([][]int32{{1, 2}, {6, 7}}, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, [][]int32{{1, 2, 3, 4}, {6, 7, 0, 1}}, out)

	_, err = g.GenerateBatch([][]int32{{1, 2}, {3}}, 2, 4)
	assert.ErrorIs(t, err, ErrInvalidArgument, "ragged batch")

	_, err = g.GenerateBatch(nil, 2, 4)
	assert.ErrorIs(t, err, ErrInvalidArgument, "empty batch")
}

func TestGenerateStream_MatchesGenerate(t *testing.T) {
	g := New(newCountingModel(8))

	want, err := g.Generate([]int32{5}, 4, 2)
	require.NoError(t, err)

	ch, err := g.GenerateStream(context.Background(), []int32{5}, 4, 2)
	require.NoError(t, err)

	got := []int32{5}
	for i := 0; ; i++ {
		res, ok := <-ch
		if !ok {
			break
		}
		require.NoError(t, res.Err)
		assert.Equal(t, i, res.Step)
		got = append(got, res.TokenID)
	}
	assert.Equal(t, want, got)
}

func TestGenerateStream_Cancel(t *testing.T) {
	g := New(newCountingModel(8))
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := g.GenerateStream(ctx, []int32{1}, 1000, 4)
	require.NoError(t, err)

	first := <-ch
	require.NoError(t, first.Err)
	cancel()

	n := 1
	for range ch {
		n++
	}
	assert.Less(t, n, 1000)
}

func TestGenerateStream_Errors(t *testing.T) {
	g := New(newCountingModel(8))
	_, err := g.GenerateStream(context.Background(), nil, 1, 4)
	assert.ErrorIs(t, err, ErrInvalidArgument)

	model := newCountingModel(8)
	model.err = errors.New("boom")
	ch, err := New(model).GenerateStream(context.Background(), []int32{1}, 3, 4)
	require.NoError(t, err)

	res := <-ch
	require.Error(t, res.Err)
	_, ok := <-ch
	assert.False(t, ok, "channel closes after an error")
}

func TestGreedy_TiesPickLowestIndex(t *testing.T) {
	logits := tensor.MustFromSlice([]float32{
		1, 3, 3, 0,
		-1, -1, -1, -1,
	}, tensor.Shape{2, 4})

	next, err := Greedy(cpu.New(), logits)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, 0}, next)
}

func TestGreedy_RejectsRank(t *testing.T) {
	_, err := Greedy(cpu.New(), tensor.Zeros[float32](tensor.Shape{4}))
	assert.ErrorIs(t, err, tensor.ErrShape)
}

func TestLastPosition(t *testing.T) {
	logits := tensor.MustFromSlice([]float32{
		0, 1, 2, 3, 4, 5, // batch 0: positions 0..2, vocab 2
		6, 7, 8, 9, 10, 11,
	}, tensor.Shape{2, 3, 2})

	last, err := lastPosition(logits)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 2}, last.Shape())
	assert.Equal(t, []float32{4, 5, 10, 11}, last.Data())

	_, err = lastPosition(tensor.Zeros[float32](tensor.Shape{3, 2}))
	assert.ErrorIs(t, err, tensor.ErrShape)
}

func newTinyGPT(t *testing.T, backend tensor.Backend) *gpt.Model {
	t.Helper()
	m, err := gpt.New(gpt.TinyConfig(), backend, gpt.WithSeed(3))
	require.NoError(t, err)
	return m
}

func TestGenerate_TinyGPT(t *testing.T) {
	m := newTinyGPT(t, cpu.New())
	g := New(m)
	prompt := []int32{1, 2, 3}

	a, err := g.Generate(prompt, 6, 4)
	require.NoError(t, err)
	require.Len(t, a, len(prompt)+6)
	assert.Equal(t, prompt, a[:3])
	for _, id := range a {
		assert.True(t, id >= 0 && int(id) < m.Config().VocabSize)
	}

	b, err := g.Generate(prompt, 6, 4)
	require.NoError(t, err)
	assert.Equal(t, a, b, "greedy decoding is deterministic")

	// Growing past the context length is fine; only the window is fed.
	long, err := g.Generate(prompt, m.ContextLength(), m.ContextLength())
	require.NoError(t, err)
	assert.Len(t, long, len(prompt)+m.ContextLength())
}

func TestGenerate_TinyGPTBatchMatchesSingle(t *testing.T) {
	g := New(newTinyGPT(t, cpu.New()))

	batch, err := g.GenerateBatch([][]int32{{1, 2, 3}, {9, 8, 7}}, 4, 8)
	require.NoError(t, err)

	for _, row := range batch {
		single, err := g.Generate(row[:3], 4, 8)
		require.NoError(t, err)
		assert.Equal(t, single, row)
	}
}

func TestGenerate_ParallelMatchesSequential(t *testing.T) {
	prompt := []int32{5, 4, 3, 2, 1}

	par, err := New(newTinyGPT(t, cpu.New(cpu.WithParallel(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1})))).Generate(prompt, 5, 8)
	require.NoError(t, err)
	seq, err := New(newTinyGPT(t, cpu.New(cpu.WithSequential()))).Generate(prompt, 5, 8)
	require.NoError(t, err)

	assert.Equal(t, seq, par)
}

func TestGenerate_GPT2Small(t *testing.T) {
	if testing.Short() {
		t.Skip("builds a GPT-2 small model")
	}

	m, err := gpt.New(gpt.GPT2SmallConfig(), cpu.New())
	require.NoError(t, err)

	prompt := []int32{6109, 1110, 318, 534}
	out, err := New(m).Generate(prompt, 5, m.ContextLength())
	require.NoError(t, err)

	require.Len(t, out, 9)
	assert.Equal(t, prompt, out[:4])
	for _, id := range out[4:] {
		assert.True(t, id >= 0 && id < 50257)
	}
}
