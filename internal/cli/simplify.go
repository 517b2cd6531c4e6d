package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ppiankov/wikitree/internal/pipeline"
	"github.com/spf13/cobra"
)

var requestTimeout time.Duration

// simplifyCmd represents the simplify command
var simplifyCmd = &cobra.Command{
	Use:   "simplify [request.json]",
	Short: "Answer one module request",
	Long: `Simplify reads a module request, answers its tree and prints the
responses as JSON. The request is read from stdin when no file is given.

A request looks like:
  {"id": "1", "language": "en", "measures": {"accuracy": 1, "relevance": 0},
   "tree": {"type": "triple",
            "subject": {"type": "resource", "value": "Douglas Adams"},
            "predicate": {"type": "resource", "value": "place of birth"},
            "object": {"type": "missing"}}}

Example:
  wikitree simplify request.json
  cat request.json | wikitree simplify --pretty`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSimplify,
}

func init() {
	rootCmd.AddCommand(simplifyCmd)

	simplifyCmd.Flags().DurationVar(&requestTimeout, "timeout", 2*time.Minute, "overall request timeout")
	addClientFlags(simplifyCmd)
}

func runSimplify(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) == 1 {
		path = args[0]
	}

	req, err := readRequest(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	return answer(cmd, req)
}

// answer runs one request through a fresh pipeline and prints the responses
func answer(cmd *cobra.Command, req pipeline.Request) error {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	p, cfg, err := buildPipeline()
	if err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Language: %s\n", req.Language)
		fmt.Fprintf(os.Stderr, "Cache: %v\n\n", cfg.Cache.Enabled)
	}

	responses, err := p.Handle(ctx, req)
	if err != nil {
		return fmt.Errorf("simplify failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ %d response(s)\n\n", len(responses))
	}

	return writeJSON(cmd.OutOrStdout(), responses, cfg.Output.Pretty)
}
