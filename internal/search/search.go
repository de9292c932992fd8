// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search runs web searches through an ordered chain of providers
// (DuckDuckGo HTML, DuckDuckGo Lite, Wikipedia). The first provider that
// answers with results wins; a blocked or failing provider hands over to
// the next one.
package search

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/article-engine/internal/httputil"
	"github.com/pdiddy/article-engine/pkg/types"
)

// Deduplicate keeps the first result for each normalized URL and drops
// results without a URL. Order is preserved.
func Deduplicate(results []types.SearchResult) []types.SearchResult {
	seen := make(map[string]bool, len(results))
	deduped := make([]types.SearchResult, 0, len(results))
	for _, r := range results {
		key := httputil.NormalizeURL(r.URL)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		deduped = append(deduped, r)
	}
	return deduped
}

// FormatTable writes results as a human-readable table to w.
func FormatTable(results []types.SearchResult, out Outcome, w io.Writer) {
	for _, msg := range out.Errors() {
		fmt.Fprintf(w, "warning: %s\n", msg)
	}
	if len(results) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-50s  %-45s  %s\n", "Rank", "Title", "URL", "Snippet")
	fmt.Fprintln(w, strings.Repeat("-", 140))

	for i, r := range results {
		fmt.Fprintf(w, "%-4d  %-50s  %-45s  %s\n",
			i+1, truncate(r.Title, 50), truncate(r.URL, 45), truncate(r.Snippet, 60))
	}

	fmt.Fprintf(w, "\n%d results", len(results))
	if out.Provider != "" {
		fmt.Fprintf(w, " from %s", out.Provider)
	}
	fmt.Fprintln(w)
}

// FormatJSON writes results as indented JSON to w.
func FormatJSON(results []types.SearchResult, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
