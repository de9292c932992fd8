// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/article-engine/pkg/types"
)

// DefaultProviders is the fallback order used when none is configured.
var DefaultProviders = []string{"duckduckgo", "duckduckgo-lite", "wikipedia"}

// Chain tries its providers one after another and keeps the first
// non-empty answer. Results from different providers are never merged.
type Chain struct {
	providers  []Provider
	maxResults int
	log        *zap.Logger
}

// AttemptRecord is the outcome of one provider attempt inside a chain run.
type AttemptRecord struct {
	Provider string        `json:"provider"`
	Results  int           `json:"results"`
	Err      error         `json:"-"`
	Duration time.Duration `json:"duration"`
}

// Outcome describes how a chain run was answered.
type Outcome struct {
	// Provider names the provider whose results were returned, or "" when
	// every provider failed or came back empty.
	Provider string
	Attempts []AttemptRecord
}

// Errors lists the failed attempts as "provider: reason" strings.
func (o Outcome) Errors() []string {
	var out []string
	for _, a := range o.Attempts {
		if a.Err != nil {
			out = append(out, a.Err.Error())
		}
	}
	return out
}

// NewChain builds a chain over explicit providers, tried in slice order.
func NewChain(providers []Provider, maxResults int, log *zap.Logger) *Chain {
	if log == nil {
		log = zap.NewNop()
	}
	return &Chain{
		providers:  providers,
		maxResults: orDefault(maxResults, DefaultMaxResults),
		log:        log,
	}
}

// New builds the production chain named by cfg.Providers (or
// DefaultProviders). An unknown provider name is an error.
func New(cfg types.SearchConfig, client *http.Client, log *zap.Logger) (*Chain, error) {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	if log == nil {
		log = zap.NewNop()
	}
	names := cfg.Providers
	if len(names) == 0 {
		names = DefaultProviders
	}

	providers := make([]Provider, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "duckduckgo":
			providers = append(providers, NewDuckDuckGo(client, cfg))
		case "duckduckgo-lite":
			providers = append(providers, NewDuckDuckGoLite(client, cfg))
		case "wikipedia":
			providers = append(providers, NewWikipedia(client, cfg, log.Named("wikipedia")))
		default:
			return nil, fmt.Errorf("unknown search provider %q (want one of %s)", name, strings.Join(DefaultProviders, ", "))
		}
	}
	return NewChain(providers, cfg.MaxResults, log), nil
}

// Providers returns the provider names in fallback order.
func (c *Chain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Search returns the first non-empty result list produced by a provider,
// at most maxResults long (<= 0 means the chain default). It never fails:
// when every provider fails the result is empty.
func (c *Chain) Search(ctx context.Context, query string, maxResults int) []types.SearchResult {
	results, _ := c.SearchDetailed(ctx, query, maxResults)
	return results
}

// SearchDetailed is Search plus a record of every attempt made.
func (c *Chain) SearchDetailed(ctx context.Context, query string, maxResults int) ([]types.SearchResult, Outcome) {
	maxResults = orDefault(maxResults, c.maxResults)

	var out Outcome
	for _, p := range c.providers {
		if ctx.Err() != nil {
			break
		}

		start := time.Now()
		results, err := p.Attempt(ctx, query, maxResults)
		rec := AttemptRecord{Provider: p.Name(), Results: len(results), Err: err, Duration: time.Since(start)}
		out.Attempts = append(out.Attempts, rec)

		if err != nil {
			c.log.Info("search provider failed",
				zap.String("provider", p.Name()),
				zap.String("query", query),
				zap.Error(err))
			continue
		}
		if len(results) == 0 {
			c.log.Debug("search provider returned no results",
				zap.String("provider", p.Name()),
				zap.String("query", query))
			continue
		}

		if len(results) > maxResults {
			results = results[:maxResults]
		}
		out.Provider = p.Name()
		c.log.Debug("search answered",
			zap.String("provider", p.Name()),
			zap.String("query", query),
			zap.Int("results", len(results)),
			zap.Duration("duration", rec.Duration))
		return results, out
	}

	c.log.Warn("all search providers failed", zap.String("query", query), zap.Strings("errors", out.Errors()))
	return []types.SearchResult{}, out
}
