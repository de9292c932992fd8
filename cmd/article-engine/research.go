package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/article-engine/pkg/types"
)

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Collect ranked facts and sources for a topic",
	Long: `Research runs three query variants for the topic through the search provider
chain, fetches the most promising pages, and extracts the highest-scoring,
non-overlapping sentences as facts with their sources.`,
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().String("topic", "", "topic to research (required)")
	researchCmd.Flags().Bool("json", false, "output the result as JSON")

	rootCmd.AddCommand(researchCmd)
}

func runResearch(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	res, err := eng.research.Run(cmd.Context(), topic)
	if err != nil {
		return fmt.Errorf("research: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	printResearch(res, os.Stdout)
	return nil
}

func printResearch(res *types.ResearchResult, w io.Writer) {
	if len(res.Facts) == 0 {
		fmt.Fprintln(w, "No facts found.")
	}
	for i, f := range res.Facts {
		fmt.Fprintf(w, "%2d. %s\n    %s\n", i+1, f.Fact, f.SourceURL)
	}
	if len(res.Sources) > 0 {
		fmt.Fprintln(w, "\nSources:")
		for _, s := range res.Sources {
			fmt.Fprintf(w, "  - %s <%s>\n", s.Title, s.URL)
		}
	}
	fmt.Fprintf(w, "\n%d facts, %d sources, %d pages fetched, providers %v\n",
		len(res.Facts), len(res.Sources), res.PagesFetched, res.Providers)
}
