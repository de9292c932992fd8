// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/pdiddy/article-engine/internal/httputil"
	"github.com/pdiddy/article-engine/pkg/types"
)

// Wikipedia queries the MediaWiki action API: a full-text search for page
// titles, then one batched request for the intro extracts of those pages.
type Wikipedia struct {
	Client    *http.Client
	Language  string
	UserAgent string

	// Endpoint overrides the API URL derived from Language.
	Endpoint string

	// MaxRetries bounds retries on HTTP 429 (0 means the helper default).
	MaxRetries int

	Log *zap.Logger
}

// NewWikipedia returns a Wikipedia provider whose edition follows the
// language part of cfg.Region.
func NewWikipedia(client *http.Client, cfg types.SearchConfig, log *zap.Logger) *Wikipedia {
	return &Wikipedia{
		Client:    client,
		Language:  languageFromRegion(cfg.Region),
		UserAgent: cfg.UserAgent,
		Log:       log,
	}
}

// Name returns the provider identifier.
func (w *Wikipedia) Name() string { return "wikipedia" }

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
}

type wikiExtractResponse struct {
	Query struct {
		Normalized []struct {
			From string `json:"from"`
			To   string `json:"to"`
		} `json:"normalized"`
		Pages map[string]struct {
			Title   string `json:"title"`
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// Attempt searches for page titles and attaches each page's intro extract,
// falling back to the search snippet when no extract is available.
func (w *Wikipedia) Attempt(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error) {
	maxResults = orDefault(maxResults, DefaultMaxResults)

	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {query},
		"srlimit":  {strconv.Itoa(maxResults)},
		"format":   {"json"},
		"utf8":     {"1"},
	}
	var sr wikiSearchResponse
	if err := w.getJSON(ctx, params, &sr); err != nil {
		return nil, err
	}
	if len(sr.Query.Search) == 0 {
		return nil, nil
	}

	titles := make([]string, 0, len(sr.Query.Search))
	for _, hit := range sr.Query.Search {
		titles = append(titles, hit.Title)
	}
	extracts, err := w.extracts(ctx, titles)
	if err != nil {
		w.logger().Debug("wikipedia extracts unavailable, using snippets", zap.Error(err))
	}

	results := make([]types.SearchResult, 0, len(sr.Query.Search))
	for _, hit := range sr.Query.Search {
		snippet := collapseSpace(extracts[hit.Title])
		if snippet == "" {
			snippet = StripMarkup(hit.Snippet)
		}
		results = append(results, types.SearchResult{
			Title:   hit.Title,
			URL:     w.pageURL(hit.Title),
			Snippet: snippet,
			Source:  "wikipedia",
		})
	}
	return results, nil
}

// extracts fetches up to three intro sentences per title, keyed by the
// title as it was requested.
func (w *Wikipedia) extracts(ctx context.Context, titles []string) (map[string]string, error) {
	params := url.Values{
		"action":      {"query"},
		"prop":        {"extracts"},
		"exintro":     {"1"},
		"explaintext": {"1"},
		"exsentences": {"3"},
		"exlimit":     {strconv.Itoa(len(titles))},
		"titles":      {strings.Join(titles, "|")},
		"format":      {"json"},
		"utf8":        {"1"},
	}
	var er wikiExtractResponse
	if err := w.getJSON(ctx, params, &er); err != nil {
		return nil, err
	}

	// The API reports normalized titles; map them back to what we asked for.
	requested := make(map[string]string, len(er.Query.Normalized))
	for _, n := range er.Query.Normalized {
		requested[n.To] = n.From
	}
	out := make(map[string]string, len(er.Query.Pages))
	for _, page := range er.Query.Pages {
		title := page.Title
		if from, ok := requested[title]; ok {
			title = from
		}
		out[title] = page.Extract
	}
	return out, nil
}

func (w *Wikipedia) getJSON(ctx context.Context, params url.Values, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.apiURL()+"?"+params.Encode(), nil)
	if err != nil {
		return &ProviderError{Provider: w.Name(), Reason: "creating request", Err: err}
	}
	req.Header.Set("User-Agent", userAgentOrDefault(w.UserAgent))
	req.Header.Set("Accept", "application/json")

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := httputil.DoWithRetry(ctx, client, req, w.MaxRetries, w.logger())
	if err != nil {
		return &ProviderError{Provider: w.Name(), Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return &ProviderError{Provider: w.Name(), Reason: fmt.Sprintf("HTTP %d", resp.StatusCode), Err: ErrBlocked}
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(dst); err != nil {
		return &ProviderError{Provider: w.Name(), Reason: "parsing response", Err: err}
	}
	return nil
}

func (w *Wikipedia) apiURL() string {
	if w.Endpoint != "" {
		return w.Endpoint
	}
	return "https://" + w.lang() + ".wikipedia.org/w/api.php"
}

// pageURL builds the article link. The title is path-escaped so "?" and "#"
// stay part of the page name.
func (w *Wikipedia) pageURL(title string) string {
	u := url.URL{
		Scheme: "https",
		Host:   w.lang() + ".wikipedia.org",
		Path:   "/wiki/" + strings.ReplaceAll(title, " ", "_"),
	}
	return u.String()
}

func (w *Wikipedia) lang() string {
	if w.Language == "" {
		return "en"
	}
	return w.Language
}

func (w *Wikipedia) logger() *zap.Logger {
	if w.Log == nil {
		return zap.NewNop()
	}
	return w.Log
}

// languageFromRegion maps a region code such as "us-en" or "de-de" to a
// Wikipedia language edition. "wt-wt" (no region) and malformed codes map
// to English.
func languageFromRegion(region string) string {
	_, lang, ok := strings.Cut(strings.ToLower(region), "-")
	if !ok || len(lang) < 2 || lang == "wt" {
		return "en"
	}
	return lang
}

// StripMarkup returns the text content of an HTML fragment with whitespace
// collapsed. Search snippets wrap matches in <span class="searchmatch">.
func StripMarkup(fragment string) string {
	z := html.NewTokenizer(strings.NewReader(fragment))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return collapseSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			// Tags may separate words ("a<br>b").
			name, _ := z.TagName()
			if string(name) == "br" || string(name) == "p" {
				b.WriteByte(' ')
			}
		}
	}
}
