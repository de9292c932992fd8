// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package research composes the search chain, the page fetcher and the fact
// extractor into one operation: topic in, ranked facts and sources out.
package research

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/article-engine/internal/extract"
	"github.com/pdiddy/article-engine/internal/httputil"
	"github.com/pdiddy/article-engine/internal/search"
	"github.com/pdiddy/article-engine/pkg/types"
)

const (
	DefaultMaxPagesToFetch      = 5
	DefaultSupplementarySources = 3
)

// ErrEmptyTopic is returned when Run is called without a topic.
var ErrEmptyTopic = errors.New("research topic is empty")

// querySuffixes produce the query variants issued for a topic.
var querySuffixes = []string{"", " facts statistics", " research study"}

// Searcher is the provider chain as seen by the stage.
type Searcher interface {
	SearchDetailed(ctx context.Context, query string, maxResults int) ([]types.SearchResult, search.Outcome)
}

// PageFetcher fetches page text for many URLs at once.
type PageFetcher interface {
	FetchAll(ctx context.Context, urls []string, maxLength int) types.PageText
}

// Options tunes a Stage beyond the research configuration section.
type Options struct {
	// MaxResults is requested from the chain per query (0: chain default).
	MaxResults int

	// MaxLength truncates fetched page text (0: fetcher default).
	MaxLength int

	// Now stamps sources and results; defaults to time.Now.
	Now func() time.Time
}

// Stage runs research for a topic. It is safe for concurrent use when its
// searcher and fetcher are.
type Stage struct {
	searcher Searcher
	fetcher  PageFetcher
	cfg      types.ResearchConfig
	opts     Options
	log      *zap.Logger
}

// New builds a Stage. Zero values in cfg take the package defaults.
func New(searcher Searcher, fetcher PageFetcher, cfg types.ResearchConfig, opts Options, log *zap.Logger) *Stage {
	if cfg.TargetFactCount <= 0 {
		cfg.TargetFactCount = extract.DefaultTargetCount
	}
	if cfg.MaxPagesToFetch <= 0 {
		cfg.MaxPagesToFetch = DefaultMaxPagesToFetch
	}
	if cfg.SupplementarySources < 0 {
		cfg.SupplementarySources = 0
	} else if cfg.SupplementarySources == 0 {
		cfg.SupplementarySources = DefaultSupplementarySources
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Stage{searcher: searcher, fetcher: fetcher, cfg: cfg, opts: opts, log: log}
}

// Queries returns the search queries issued for topic, in merge order.
func Queries(topic string) []string {
	topic = strings.TrimSpace(topic)
	out := make([]string, len(querySuffixes))
	for i, suffix := range querySuffixes {
		out[i] = topic + suffix
	}
	return out
}

// Run researches topic. Provider and page failures degrade the result
// rather than failing it; zero search results is a valid empty result.
// Only an empty topic or a cancelled context is an error.
func (s *Stage) Run(ctx context.Context, topic string) (*types.ResearchResult, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, ErrEmptyTopic
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("research cancelled: %w", err)
	}

	queries := Queries(topic)
	results, providers := s.searchAll(ctx, queries)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("research cancelled: %w", err)
	}

	scored := rankBySnippet(search.Deduplicate(results))

	urls := make([]string, 0, s.cfg.MaxPagesToFetch)
	for _, r := range scored {
		if len(urls) == s.cfg.MaxPagesToFetch {
			break
		}
		urls = append(urls, r.URL)
	}
	var pages types.PageText
	if len(urls) > 0 {
		pages = s.fetcher.FetchAll(ctx, urls, s.opts.MaxLength)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("research cancelled: %w", err)
	}

	facts := extract.Extract(scored, pages, s.cfg.TargetFactCount)
	now := s.opts.Now()

	s.log.Info("research complete",
		zap.String("topic", topic),
		zap.Int("results", len(scored)),
		zap.Int("pages", len(pages)),
		zap.Int("facts", len(facts)))

	return &types.ResearchResult{
		Topic:        topic,
		Facts:        facts,
		Sources:      BuildSources(facts, scored, s.cfg.SupplementarySources, now),
		Queries:      queries,
		Providers:    providers,
		PagesFetched: len(pages),
		CompletedAt:  now,
	}, nil
}

// searchAll issues every query concurrently and merges the result lists in
// query order once all have settled. The chain never fails, so one query
// coming back empty leaves the others untouched.
func (s *Stage) searchAll(ctx context.Context, queries []string) ([]types.SearchResult, []string) {
	lists := make([][]types.SearchResult, len(queries))
	providers := make([]string, len(queries))

	var g errgroup.Group
	for i, q := range queries {
		g.Go(func() error {
			lists[i], providers[i] = s.search(ctx, q)
			return nil
		})
	}
	_ = g.Wait()

	var merged []types.SearchResult
	for _, l := range lists {
		merged = append(merged, l...)
	}
	return merged, providers
}

// search runs one query, converting a panicking searcher into an empty
// answer so sibling queries still complete.
func (s *Stage) search(ctx context.Context, query string) (results []types.SearchResult, provider string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("search panicked", zap.String("query", query), zap.Any("panic", r))
			results, provider = nil, ""
		}
	}()
	results, out := s.searcher.SearchDetailed(ctx, query, s.opts.MaxResults)
	return results, out.Provider
}

// rankBySnippet orders results by the score of their snippet, keeping the
// merge order between equal scores.
func rankBySnippet(results []types.SearchResult) []types.SearchResult {
	scores := make(map[string]float64, len(results))
	for _, r := range results {
		scores[r.URL] = extract.Score(r.Snippet)
	}
	ranked := make([]types.SearchResult, len(results))
	copy(ranked, results)
	sort.SliceStable(ranked, func(i, j int) bool {
		return scores[ranked[i].URL] > scores[ranked[j].URL]
	})
	return ranked
}

// BuildSources lists one source per URL that contributed a fact, in order
// of first contribution, followed by up to supplementary URLs from results
// that contributed none. Every fact's URL is therefore present.
func BuildSources(facts []types.ResearchFact, results []types.SearchResult, supplementary int, retrievedAt time.Time) []types.ResearchSource {
	byKey := make(map[string]types.SearchResult, len(results))
	for _, r := range results {
		key := httputil.NormalizeURL(r.URL)
		if _, ok := byKey[key]; !ok {
			byKey[key] = r
		}
	}

	seen := make(map[string]bool)
	sources := make([]types.ResearchSource, 0, len(facts)+supplementary)
	for _, f := range facts {
		key := httputil.NormalizeURL(f.SourceURL)
		if seen[key] {
			continue
		}
		seen[key] = true
		src := types.ResearchSource{Title: f.SourceTitle, URL: f.SourceURL, RetrievedAt: retrievedAt}
		if r, ok := byKey[key]; ok {
			src.Snippet = r.Snippet
			if src.Title == "" {
				src.Title = r.Title
			}
		}
		sources = append(sources, src)
	}

	added := 0
	for _, r := range results {
		if added >= supplementary {
			break
		}
		key := httputil.NormalizeURL(r.URL)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		sources = append(sources, types.ResearchSource{Title: r.Title, URL: r.URL, Snippet: r.Snippet, RetrievedAt: retrievedAt})
		added++
	}
	return sources
}
