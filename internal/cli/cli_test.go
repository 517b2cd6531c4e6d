package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ppiankov/wikitree/internal/model"
	"github.com/ppiankov/wikitree/internal/pipeline"
	"github.com/ppiankov/wikitree/internal/worker"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type fakeHandler struct{}

func (fakeHandler) Handle(_ context.Context, req pipeline.Request) ([]pipeline.Response, error) {
	switch req.ID {
	case "fail":
		return nil, fmt.Errorf("knowledge base unavailable")
	case "empty":
		return []pipeline.Response{}, nil
	default:
		return []pipeline.Response{{Language: req.Language, Tree: model.NewResource(model.NewEntityID("Q42"))}}, nil
	}
}

func TestBatchLines(t *testing.T) {
	lines := []string{
		`{"id":"ok","language":"en","tree":{"type":"sentence","value":"Douglas Adams"}}`,
		`{"id":"empty","language":"en","tree":{"type":"sentence","value":"nothing"}}`,
		`{"id":"fail","language":"en","tree":{"type":"sentence","value":"x"}}`,
		`not json`,
	}

	items := worker.NewBatchProcessor(handleLine(fakeHandler{}), 2).Process(context.Background(), lines)

	var buf bytes.Buffer
	answered, failed := writeBatch(&buf, items)
	assert.Equal(t, 1, answered)
	assert.Equal(t, 2, failed)

	out := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, out, 4)

	var first batchLine
	require.NoError(t, json.Unmarshal([]byte(out[0]), &first))
	assert.Equal(t, 1, first.Line)
	assert.Equal(t, "ok", first.ID)
	require.Len(t, first.Responses, 1)
	assert.Equal(t, model.NewResource(model.NewEntityID("Q42")), first.Responses[0].Tree)

	assert.Contains(t, out[1], `"responses":[]`)
	assert.Contains(t, out[2], `"id":"fail"`)
	assert.Contains(t, out[2], "knowledge base unavailable")
	assert.Contains(t, out[3], `"line":4`)
	assert.Contains(t, out[3], "decode request")
}

func TestReadRequest(t *testing.T) {
	body := `{"id":"7","language":"en","tree":{"type":"missing"}}`

	req, err := readRequest("-", strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "7", req.ID)
	assert.Equal(t, model.Missing{}, req.Tree)

	path := filepath.Join(t.TempDir(), "request.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	req, err = readRequest(path, strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "en", req.Language)

	_, err = readRequest("", strings.NewReader("{"))
	assert.Error(t, err)
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, model.DefaultConfig().API.MediaWikiURL, cfg.API.MediaWikiURL)
	assert.Equal(t, model.DefaultConfig().Resolver.DisambiguationClasses, cfg.Resolver.DisambiguationClasses)

	assert.Error(t, writeDefaultConfig(path), "existing config must not be overwritten")
}

func TestLoadConfigFromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("api:\n  user_agent: test-agent/1.0\n  timeout: 5s\ncache:\n  enabled: false\n"), 0o600))
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "test-agent/1.0", cfg.API.UserAgent)
	assert.Equal(t, "5s", cfg.API.Timeout.String())
	assert.False(t, cfg.Cache.Enabled)
	assert.Equal(t, model.DefaultConfig().API.SparqlURL, cfg.API.SparqlURL)
	assert.Equal(t, 50, cfg.Resolver.SearchLimit)
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "wikitree v"+Version+"\n", buf.String())
}
