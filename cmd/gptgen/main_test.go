package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wordLevelTokenizer = "../../internal/tokenizer/testdata/wordlevel.json"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "gptgen "+version+"\n", out)
}

func TestInfo(t *testing.T) {
	out, err := execute(t, "info", "--preset", "tiny")
	require.NoError(t, err)
	assert.Contains(t, out, "[GPT]")
	assert.Contains(t, out, "vocab_size: 64")
	assert.Contains(t, out, "num_parameters: ")
}

func TestInfo_UnknownPreset(t *testing.T) {
	_, err := execute(t, "info", "--preset", "huge")
	assert.ErrorContains(t, err, "unknown preset")
}

func TestGenerate_IDs(t *testing.T) {
	out, err := execute(t, "generate", "--preset", "tiny", "--ids", "1,2,3", "-n", "4", "--workers", "1")
	require.NoError(t, err)

	ids, err := parseIDs(strings.TrimSpace(out))
	require.NoError(t, err)
	require.Len(t, ids, 7)
	assert.Equal(t, []int32{1, 2, 3}, ids[:3])

	again, err := execute(t, "generate", "--preset", "tiny", "--ids", "1,2,3", "-n", "4", "--workers", "4")
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestGenerate_IDOutOfVocabulary(t *testing.T) {
	_, err := execute(t, "generate", "--preset", "tiny", "--ids", "64", "-n", "1")
	assert.ErrorContains(t, err, "out of range")
}

func TestGenerate_PromptWithTokenizerFile(t *testing.T) {
	args := []string{"generate", "-c", "testdata/wordlevel-model.yaml", "--tokenizer", wordLevelTokenizer, "-p", "every effort", "-n", "3"}

	out, err := execute(t, args...)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "every effort"), out)

	streamed, err := execute(t, append(args, "--stream")...)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(streamed, "every effort"), streamed)
}

func TestGenerate_RequiresOneInput(t *testing.T) {
	_, err := execute(t, "generate", "--preset", "tiny")
	assert.Error(t, err)

	_, err = execute(t, "generate", "--preset", "tiny", "--ids", "1", "-p", "hi")
	assert.Error(t, err)
}

func TestTokenize(t *testing.T) {
	out, err := execute(t, "tokenize", "--tokenizer", wordLevelTokenizer, "every", "effort", "moves", "you")
	require.NoError(t, err)
	assert.Equal(t, "2,3,4,5\n", out)
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs("6109, 1110,318 534")
	require.NoError(t, err)
	assert.Equal(t, []int32{6109, 1110, 318, 534}, ids)
	assert.Equal(t, "6109,1110,318,534", formatIDs(ids))

	_, err = parseIDs("1,x")
	assert.Error(t, err)
}
