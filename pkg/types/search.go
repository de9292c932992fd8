// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the article-engine pipeline.
// Research data (SearchResult, ResearchFact, ResearchSource, ResearchResult),
// stage results (WriterResult, EditorResult) and the orchestration record
// (PipelineStep, OrchestrationResult) live here so every stage speaks the
// same typed boundary.
package types

import "time"

// SearchResult is a single hit returned by a search provider. It is
// transient: the research stage discards it once facts have been extracted.
type SearchResult struct {
	// Title is the result headline as returned by the provider.
	Title string `json:"title" yaml:"title"`

	// URL is the destination URL, with provider redirect wrappers removed.
	URL string `json:"url" yaml:"url"`

	// Snippet is the short text excerpt shown by the provider.
	Snippet string `json:"snippet" yaml:"snippet"`

	// Source names the provider that produced the result (e.g. "duckduckgo").
	Source string `json:"source,omitempty" yaml:"source,omitempty"`
}

// PageText maps a page URL to its extracted plain text.
type PageText map[string]string

// ResearchFact is a single extracted, source-attributed sentence.
type ResearchFact struct {
	// Fact is the sentence text as it appeared in the source.
	Fact string `json:"fact" yaml:"fact"`

	// SourceURL is the URL the sentence was taken from.
	SourceURL string `json:"sourceUrl" yaml:"source_url"`

	// SourceTitle is the title of the search result for SourceURL.
	SourceTitle string `json:"sourceTitle" yaml:"source_title"`
}

// ResearchSource is a cited or supplementary URL attached to a research run.
type ResearchSource struct {
	Title       string    `json:"title" yaml:"title"`
	URL         string    `json:"url" yaml:"url"`
	Snippet     string    `json:"snippet" yaml:"snippet"`
	RetrievedAt time.Time `json:"retrievedAt" yaml:"retrieved_at"`
}

// ResearchResult is the typed output of the research stage.
type ResearchResult struct {
	// Topic is the research topic as requested.
	Topic string `json:"topic" yaml:"topic"`

	// Facts are ordered by descending extraction score.
	Facts []ResearchFact `json:"facts" yaml:"facts"`

	// Sources lists contributing URLs first, then supplementary ones.
	Sources []ResearchSource `json:"sources" yaml:"sources"`

	// Queries are the search queries issued for the topic.
	Queries []string `json:"queries,omitempty" yaml:"queries,omitempty"`

	// Providers names the provider that answered each query, in query order.
	// An empty entry means every provider failed for that query.
	Providers []string `json:"providers,omitempty" yaml:"providers,omitempty"`

	// PagesFetched counts pages that returned usable text.
	PagesFetched int `json:"pagesFetched" yaml:"pages_fetched"`

	CompletedAt time.Time `json:"completedAt" yaml:"completed_at"`
}
