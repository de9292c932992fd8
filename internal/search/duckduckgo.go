// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/article-engine/pkg/types"
)

// DuckDuckGoEndpoint is the DuckDuckGo HTML (no-JavaScript) search page.
const DuckDuckGoEndpoint = "https://html.duckduckgo.com/html/"

// DuckDuckGo scrapes the DuckDuckGo HTML results page.
type DuckDuckGo struct {
	Client         *http.Client
	Endpoint       string
	Region         string
	UserAgent      string
	BlockThreshold int
}

// NewDuckDuckGo returns a DuckDuckGo provider configured from cfg.
func NewDuckDuckGo(client *http.Client, cfg types.SearchConfig) *DuckDuckGo {
	return &DuckDuckGo{
		Client:         client,
		Endpoint:       DuckDuckGoEndpoint,
		Region:         cfg.Region,
		UserAgent:      cfg.UserAgent,
		BlockThreshold: cfg.BlockThreshold,
	}
}

// Name returns the provider identifier.
func (d *DuckDuckGo) Name() string { return "duckduckgo" }

// Attempt posts the query form and parses the result blocks.
func (d *DuckDuckGo) Attempt(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	form := url.Values{"q": {query}, "kl": {regionOrDefault(d.Region)}}
	status, body, err := postForm(ctx, d.Client, endpointOrDefault(d.Endpoint, DuckDuckGoEndpoint), form, userAgentOrDefault(d.UserAgent))
	if err != nil {
		return nil, &ProviderError{Provider: d.Name(), Reason: "request failed", Err: err}
	}
	if reason := detectBlock(status, body, d.BlockThreshold, ".result"); reason != "" {
		return nil, &ProviderError{Provider: d.Name(), Reason: reason, Err: ErrBlocked}
	}

	results, err := parseDuckDuckGo(bytes.NewReader(body), orDefault(maxResults, DefaultMaxResults))
	if err != nil {
		return nil, &ProviderError{Provider: d.Name(), Reason: "parsing results", Err: err}
	}
	return results, nil
}

// parseDuckDuckGo reads result blocks from the HTML results page. Ads are
// skipped, as are blocks without a usable title or URL.
func parseDuckDuckGo(r io.Reader, maxResults int) ([]types.SearchResult, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}

	var results []types.SearchResult
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if s.HasClass("result--ad") {
			return true
		}
		link := s.Find(".result__a").First()
		title := collapseSpace(link.Text())
		href, _ := link.Attr("href")

		target := unwrapRedirect(href)
		if target == "" {
			target = displayedURL(s.Find(".result__url").First().Text())
		}
		if title == "" || target == "" {
			return true
		}

		results = append(results, types.SearchResult{
			Title:   title,
			URL:     target,
			Snippet: collapseSpace(s.Find(".result__snippet").First().Text()),
			Source:  "duckduckgo",
		})
		return len(results) < maxResults
	})
	return results, nil
}

// unwrapRedirect resolves DuckDuckGo's "//duckduckgo.com/l/?uddg=<dest>"
// tracking links to their destination. Other links are returned as-is.
func unwrapRedirect(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if strings.HasSuffix(u.Host, "duckduckgo.com") && strings.HasPrefix(u.Path, "/l/") {
		return u.Query().Get("uddg")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	return href
}

// displayedURL turns the green display URL into a link.
func displayedURL(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	if strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://") {
		return text
	}
	return "https://" + text
}

func regionOrDefault(region string) string {
	if region == "" {
		return DefaultRegion
	}
	return region
}

func endpointOrDefault(endpoint, def string) string {
	if endpoint == "" {
		return def
	}
	return endpoint
}
