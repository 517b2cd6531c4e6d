package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/wikitree/internal/model"
	"github.com/ppiankov/wikitree/internal/pipeline"
	"github.com/spf13/cobra"
)

// writeJSON encodes v to w, indented when pretty is set
func writeJSON(w io.Writer, v interface{}, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

// readRequest decodes one module request from a file, or from stdin when
// path is "" or "-"
func readRequest(path string, stdin io.Reader) (pipeline.Request, error) {
	var req pipeline.Request

	r := stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return req, fmt.Errorf("open request: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, fmt.Errorf("decode request: %w", err)
	}
	return req, nil
}

// Flags shared by every command that talks to the knowledge base
var (
	noCache   bool
	userAgent string
	language  string
	pretty    bool
)

func addClientFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh lookups)")
	cmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent (overrides api.user_agent)")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent JSON output")
}

// buildPipeline loads the configuration, applies the shared flags and
// wires the pipeline
func buildPipeline() (*pipeline.Pipeline, *model.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	if noCache {
		cfg.Cache.Enabled = false
	}
	if userAgent != "" {
		cfg.API.UserAgent = userAgent
	}
	if pretty {
		cfg.Output.Pretty = true
	}

	p, err := pipeline.NewPipeline(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("create pipeline: %w", err)
	}
	return p, cfg, nil
}
