// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/article-engine/internal/httputil"
	"github.com/pdiddy/article-engine/pkg/types"
)

const (
	DefaultMaxResults     = 10
	DefaultRegion         = "us-en"
	DefaultBlockThreshold = 500

	// maxResponseBytes caps how much of a provider response is read.
	maxResponseBytes = 4 << 20
)

// ErrBlocked reports that a provider refused or throttled the request.
var ErrBlocked = errors.New("provider blocked the request")

// blockKeywords mark anti-bot, throttling and denial pages.
var blockKeywords = []string{
	"captcha",
	"unusual traffic",
	"anomaly-modal",
	"rate limit",
	"too many requests",
	"access denied",
	"blocked",
}

// Provider is one search strategy in the fallback chain. Attempt returns the
// provider's results for query, at most maxResults of them, or a
// *ProviderError describing why the provider could not answer.
type Provider interface {
	Name() string
	Attempt(ctx context.Context, query string, maxResults int) ([]types.SearchResult, error)
}

// ProviderError is the failure of a single provider attempt.
type ProviderError struct {
	Provider string
	Reason   string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Provider, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", e.Provider, e.Reason, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// detectBlock applies the shared block heuristics to an HTML response. It
// returns a human-readable reason, or "" when the response looks usable.
// Keywords are matched only outside the elements selected by resultSelector,
// so result titles and snippets never count as a block notice.
func detectBlock(status int, body []byte, threshold int, resultSelector string) string {
	if status < 200 || status > 299 {
		return fmt.Sprintf("HTTP %d", status)
	}
	if threshold <= 0 {
		threshold = DefaultBlockThreshold
	}
	if len(body) < threshold {
		return fmt.Sprintf("response of %d bytes is below %d", len(body), threshold)
	}
	lower := strings.ToLower(outsideResults(body, resultSelector))
	for _, kw := range blockKeywords {
		if strings.Contains(lower, kw) {
			return fmt.Sprintf("response mentions %q", kw)
		}
	}
	return ""
}

// outsideResults renders body with the result containers removed. An
// unparsable body is returned unchanged.
func outsideResults(body []byte, resultSelector string) string {
	if resultSelector == "" {
		return string(body)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return string(body)
	}
	doc.Find(resultSelector).Remove()
	rest, err := doc.Html()
	if err != nil {
		return string(body)
	}
	return rest
}

// postForm submits form to endpoint and returns the status and body.
func postForm(ctx context.Context, client *http.Client, endpoint string, form url.Values, userAgent string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := httputil.ReadLimited(resp.Body, maxResponseBytes)
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func userAgentOrDefault(ua string) string {
	if ua == "" {
		return httputil.DefaultUserAgent
	}
	return ua
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
