package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ppiankov/wikitree/internal/model"
	"github.com/spf13/cobra"
)

var entityType string

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve <mention>",
	Short: "Resolve a mention to entity IDs",
	Long: `Resolve runs the entity resolver directly: exact label and alias
matches first, close spellings otherwise, with disambiguation pages and
similar non-answers removed for items.

Example:
  wikitree resolve "Douglas Adams"
  wikitree resolve --type property "place of birth"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runResolve,
}

func init() {
	rootCmd.AddCommand(resolveCmd)

	resolveCmd.Flags().StringVar(&entityType, "type", string(model.EntityTypeItem), "entity type (item, property)")
	resolveCmd.Flags().StringVar(&language, "lang", "en", "language code of the mention")
	resolveCmd.Flags().DurationVar(&requestTimeout, "timeout", 2*time.Minute, "overall request timeout")
	addClientFlags(resolveCmd)
}

func runResolve(cmd *cobra.Command, args []string) error {
	mention := strings.Join(args, " ")

	kind := model.EntityType(entityType)
	if kind != model.EntityTypeItem && kind != model.EntityTypeProperty {
		return fmt.Errorf("unsupported entity type %q (use item or property)", entityType)
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	p, cfg, err := buildPipeline()
	if err != nil {
		return err
	}

	ids, err := p.Resolver().Resolve(ctx, mention, kind, language)
	if err != nil {
		return fmt.Errorf("resolve failed: %w", err)
	}

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.ID)
	}
	return writeJSON(cmd.OutOrStdout(), out, cfg.Output.Pretty)
}
