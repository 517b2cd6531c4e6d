package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/wikitree/internal/logger"
	"github.com/ppiankov/wikitree/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time with -ldflags
var Version = "0.1.0"

var (
	cfgFile  string
	verbose  bool
	jsonLogs bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wikitree",
	Short: "wikitree - answer question trees from Wikidata",
	Long: `wikitree is a question-answering module over Wikidata.

It takes a parsed question tree (triples, intersections, sentences and
resources), resolves the free-text names it contains to Wikidata entities
and rewrites the tree into its answer: the items or values that satisfy it.

wikitree does not parse natural language questions; it answers trees.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Initialize(viper.GetBool("output.json_logs"), viper.GetBool("output.verbose"))
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of wikitree.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "wikitree v%s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.wikitree/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "emit logs as JSON")

	// Bind flags to viper
	_ = viper.BindPFlag("output.verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("output.json_logs", rootCmd.PersistentFlags().Lookup("json-logs"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.wikitree")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match WIKITREE_*, e.g.
	// WIKITREE_API_USER_AGENT for api.user_agent
	viper.SetEnvPrefix("WIKITREE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	for _, key := range envKeys {
		_ = viper.BindEnv(key)
	}

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// envKeys are the settings that can come from the environment without
// appearing in a config file
var envKeys = []string{
	"api.mediawiki_url",
	"api.sparql_url",
	"api.entity_uri",
	"api.user_agent",
	"api.timeout",
	"api.http_proxy",
	"api.https_proxy",
	"api.respect_robots",
	"rate_limiting.requests_per_second",
	"rate_limiting.burst_size",
	"cache.enabled",
	"cache.dir",
	"concurrency.workers",
	"resolver.search_limit",
	"resolver.query_limit",
	"server.addr",
}

// loadConfig merges defaults, the config file and the environment
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}
