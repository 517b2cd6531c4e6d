package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upper(_ context.Context, s string) (string, error) {
	if s == "fail" {
		return "", errors.New("handler error")
	}
	return strings.ToUpper(s), nil
}

func TestBatchProcessorProcess(t *testing.T) {
	processor := NewBatchProcessor(Handler[string, string](upper), 3)

	items := processor.Process(context.Background(), []string{"a", "fail", "c", "d"})

	require.Len(t, items, 4)
	assert.Equal(t, "A", items[0].Response)
	assert.Error(t, items[1].Error)
	assert.Equal(t, "fail", items[1].Request)
	assert.Equal(t, "C", items[2].Response)
	assert.Equal(t, 3, items[3].Index)
	assert.Equal(t, "D", items[3].Response)
}

func TestBatchProcessorCanceled(t *testing.T) {
	processor := NewBatchProcessor(Handler[string, string](upper), 2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	items := processor.Process(ctx, []string{"a", "b"})
	require.Len(t, items, 2)
	for i, item := range items {
		assert.Equal(t, i, item.Index)
		assert.ErrorIs(t, item.GetError(), context.Canceled)
	}
}

func TestReadLines(t *testing.T) {
	input := "# questions\n\n{\"a\":1}\n   \n  {\"b\":2}  \n#{\"c\":3}\n"

	lines, err := ReadLines(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []string{`{"a":1}`, `{"b":2}`}, lines)
}

func TestReadLinesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "requests.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("one\n# skip\ntwo\none\n"), 0o600))

	lines, err := ReadLinesFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "one"}, lines)

	_, err = ReadLinesFromFile(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
