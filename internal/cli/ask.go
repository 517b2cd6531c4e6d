package cli

import (
	"strings"
	"time"

	"github.com/ppiankov/wikitree/internal/pipeline"
	"github.com/spf13/cobra"
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <text>",
	Short: "Resolve free text as the name of an item",
	Long: `Ask wraps free text into a sentence tree and answers it: the result is
the list of Wikidata items the text names.

Example:
  wikitree ask Douglas Adams
  wikitree ask --lang fr "Tour Eiffel"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		return answer(cmd, pipeline.NewSentenceRequest("", language, text))
	},
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVar(&language, "lang", "en", "language code of the text")
	askCmd.Flags().DurationVar(&requestTimeout, "timeout", 2*time.Minute, "overall request timeout")
	addClientFlags(askCmd)
}
