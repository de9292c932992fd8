package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/article-engine/internal/pipeline"
	"github.com/pdiddy/article-engine/pkg/types"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Research, draft and edit an article for a topic",
	Long: `Run executes the full pipeline for a topic: research, writer, editor. Each
step's status and duration is reported. A run whose research finds no facts,
or whose writer or editor fails, completes with status "partial"; a run whose
research fails completes with status "failed".`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().String("topic", "", "topic to write about (required)")
	runCmd.Flags().String("tone", string(types.DefaultTone), "article tone: professional, casual, academic, journalistic")
	runCmd.Flags().String("output", "", "also write the full result as YAML to this file")
	runCmd.Flags().Bool("json", false, "output the result as JSON")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	topic, _ := cmd.Flags().GetString("topic")
	tone, _ := cmd.Flags().GetString("tone")
	output, _ := cmd.Flags().GetString("output")
	asJSON, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg, logger)
	if err != nil {
		return err
	}

	res, err := eng.orchestrator.Run(cmd.Context(), pipeline.Request{Topic: topic, Tone: types.Tone(tone)})
	if err != nil {
		return err
	}

	if output != "" {
		if err := pipeline.WriteResultFile(output, res); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", output)
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			return err
		}
	} else {
		printRun(res, os.Stdout)
	}

	if res.Status == types.RunFailed {
		return fmt.Errorf("pipeline failed: %s", res.Steps[0].Error)
	}
	return nil
}

func printRun(res *types.OrchestrationResult, w io.Writer) {
	fmt.Fprintf(w, "Run %s: %s (%d ms)\n\n", res.ID, res.Status, res.TotalDurationMs)
	fmt.Fprintf(w, "%-10s  %-10s  %8s  %s\n", "Step", "Status", "ms", "Message")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, s := range res.Steps {
		fmt.Fprintf(w, "%-10s  %-10s  %8d  %s\n", s.Agent, s.Status, s.DurationMs, s.Error)
	}

	if res.Research != nil {
		fmt.Fprintf(w, "\n%d facts from %d sources (%d pages fetched)\n",
			len(res.Research.Facts), len(res.Research.Sources), res.Research.PagesFetched)
	}

	switch {
	case res.Edited != nil:
		fmt.Fprintf(w, "\n%s\n", res.Edited.EditedArticle)
		fmt.Fprintf(w, "Quality score: %d/100\n", res.Edited.QualityScore)
		if len(res.Edited.HeadlineSuggestions) > 0 {
			fmt.Fprintln(w, "Alternative headlines:")
			for _, h := range res.Edited.HeadlineSuggestions {
				fmt.Fprintf(w, "  - %s\n", h)
			}
		}
	case res.Article != nil:
		fmt.Fprintf(w, "\n%s\n", res.Article.Article)
	}
}
