package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ppiankov/wikitree/internal/pipeline"
	"github.com/ppiankov/wikitree/internal/worker"
	"github.com/spf13/cobra"
)

var (
	concurrency  int
	outputFile   string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file.jsonl>",
	Short: "Answer many module requests in parallel",
	Long: `Batch answers a file of module requests, one JSON request per line:
- Blank lines and lines starting with # are skipped
- Requests run concurrently on a worker pool
- One JSON line is written per request, in input order

Example:
  wikitree batch requests.jsonl
  wikitree batch requests.jsonl --concurrency 8 --output answers.jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default: concurrency.workers)")
	batchCmd.Flags().StringVar(&outputFile, "output", "", "output file (default: stdout)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	addClientFlags(batchCmd)
}

// batchLine is one line of batch output
type batchLine struct {
	Line      int                 `json:"line"`
	ID        string              `json:"id,omitempty"`
	Responses []pipeline.Response `json:"responses"`
	Error     string              `json:"error,omitempty"`
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	p, cfg, err := buildPipeline()
	if err != nil {
		return err
	}

	workers := concurrency
	if workers <= 0 {
		workers = cfg.Concurrency.Workers
	}

	lines, err := worker.ReadLinesFromFile(file)
	if err != nil {
		return fmt.Errorf("read requests: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  wikitree Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Requests:     %d\n", len(lines))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", workers)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "\n")

	var out io.Writer = cmd.OutOrStdout()
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}

	processor := worker.NewBatchProcessor(handleLine(p), workers)
	items := processor.Process(ctx, lines)

	answered, failed := writeBatch(out, items)

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d requests\n", len(items))
	fmt.Fprintf(os.Stderr, "  Answered:  %d\n", answered)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failed)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// handleLine decodes one JSON line and answers it
func handleLine(h interface {
	Handle(ctx context.Context, req pipeline.Request) ([]pipeline.Response, error)
}) worker.Handler[string, *batchLine] {
	return func(ctx context.Context, line string) (*batchLine, error) {
		var req pipeline.Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			return nil, fmt.Errorf("decode request: %w", err)
		}

		responses, err := h.Handle(ctx, req)
		if err != nil {
			return &batchLine{ID: req.ID}, err
		}
		return &batchLine{ID: req.ID, Responses: responses}, nil
	}
}

// writeBatch writes one JSON line per item and counts the outcomes
func writeBatch(w io.Writer, items []*worker.Item[string, *batchLine]) (answered, failed int) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	for _, item := range items {
		line := item.Response
		if line == nil {
			line = &batchLine{}
		}
		line.Line = item.Index + 1

		if item.Error != nil {
			failed++
			line.Error = item.Error.Error()
			line.Responses = []pipeline.Response{}
			fmt.Fprintf(os.Stderr, "✗ request %d: %v\n", line.Line, item.Error)
		} else {
			if len(line.Responses) > 0 {
				answered++
			}
			if line.Responses == nil {
				line.Responses = []pipeline.Response{}
			}
		}

		if err := enc.Encode(line); err != nil {
			fmt.Fprintf(os.Stderr, "✗ request %d: write output: %v\n", line.Line, err)
		}
	}
	return answered, failed
}
