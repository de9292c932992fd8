package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/article-engine/internal/search"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Query the search provider chain",
	Long: `Search sends one query through the provider chain (duckduckgo,
duckduckgo-lite, wikipedia by default) and prints the answer of the first
provider that returns results. Failed providers are reported as warnings.`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("query", "", "search query (required)")
	searchCmd.Flags().Int("max-results", 0, "maximum number of results (default from config)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	asJSON, _ := cmd.Flags().GetBool("json")

	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("provide a query with --query")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	results, out := eng.chain.SearchDetailed(cmd.Context(), query, maxResults)
	if asJSON {
		return search.FormatJSON(results, os.Stdout)
	}
	search.FormatTable(results, out, os.Stdout)
	return nil
}
