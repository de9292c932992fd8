// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/article-engine/pkg/types"
)

// DuckDuckGoLiteEndpoint is the table-based DuckDuckGo Lite page.
const DuckDuckGoLiteEndpoint = "https://lite.duckduckgo.com/lite/"

// DuckDuckGoLite scrapes DuckDuckGo Lite, whose results are table rows: a
// row with the result link followed by a row with the snippet.
type DuckDuckGoLite struct {
	Client         *http.Client
	Endpoint       string
	Region         string
	UserAgent      string
	BlockThreshold int
}

// NewDuckDuckGoLite returns a DuckDuckGo Lite provider configured from cfg.
func NewDuckDuckGoLite(client *http.Client, cfg types.SearchConfig) *DuckDuckGoLite {
	return &DuckDuckGoLite{
		Client:         client,
		Endpoint:       DuckDuckGoLiteEndpoint,
		Region:         cfg.Region,
		UserAgent:      cfg.UserAgent,
		BlockThreshold: cfg.BlockThreshold,
	}
}

// Name returns the provider identifier.
func (d *DuckDuckGoLite) Name() string { return "duckduckgo-lite" }

// Attempt posts the query form and pairs link rows with snippet rows.
func (d *DuckDuckGoLite) Attempt(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	form := url.Values{"q": {query}, "kl": {regionOrDefault(d.Region)}}
	status, body, err := postForm(ctx, d.Client, endpointOrDefault(d.Endpoint, DuckDuckGoLiteEndpoint), form, userAgentOrDefault(d.UserAgent))
	if err != nil {
		return nil, &ProviderError{Provider: d.Name(), Reason: "request failed", Err: err}
	}
	if reason := detectBlock(status, body, d.BlockThreshold, liteResultSelector); reason != "" {
		return nil, &ProviderError{Provider: d.Name(), Reason: reason, Err: ErrBlocked}
	}

	results, err := parseDuckDuckGoLite(bytes.NewReader(body), orDefault(maxResults, DefaultMaxResults))
	if err != nil {
		return nil, &ProviderError{Provider: d.Name(), Reason: "parsing results", Err: err}
	}
	return results, nil
}

// liteResultSelector matches the cells that carry result text.
const liteResultSelector = "a.result-link, td.result-snippet"

func parseDuckDuckGoLite(r io.Reader, maxResults int) ([]types.SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	var results []types.SearchResult
	open := -1
	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if link := row.Find("a.result-link").First(); link.Length() > 0 {
			if len(results) >= maxResults {
				return false
			}
			href, _ := link.Attr("href")
			target := unwrapRedirect(href)
			title := collapseSpace(link.Text())
			if target == "" || title == "" {
				open = -1
				return true
			}
			results = append(results, types.SearchResult{
				Title:  title,
				URL:    target,
				Source: "duckduckgo-lite",
			})
			open = len(results) - 1
			return true
		}
		if cell := row.Find("td.result-snippet").First(); cell.Length() > 0 && open >= 0 {
			if results[open].Snippet == "" {
				results[open].Snippet = collapseSpace(cell.Text())
			}
		}
		return true
	})
	return results, nil
}
