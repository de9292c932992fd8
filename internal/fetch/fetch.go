// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves web pages and extracts their main text.
// A fetch never fails: any network error, non-success status or timeout
// yields the empty string, meaning "no usable content".
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/article-engine/internal/httputil"
	"github.com/pdiddy/article-engine/pkg/types"
)

const (
	DefaultTimeout     = 8 * time.Second
	DefaultMaxLength   = 5000
	DefaultConcurrency = 5

	// maxBodyBytes caps how much of a page is read before parsing.
	maxBodyBytes = 2 << 20
)

// noiseSelector matches markup that never carries article text.
const noiseSelector = "script, style, noscript, iframe, svg, nav, header, footer, aside, form, " +
	".ad, .ads, .advert, .advertisement, .sponsored, .cookie, .cookie-banner, " +
	"#cookie-consent, .newsletter, .social-share"

// contentSelectors are tried in order; the first with text wins, then body.
var contentSelectors = []string{
	"article",
	"main",
	`[role="main"]`,
	".post-content",
	".article-content",
	".entry-content",
	".article-body",
	"#content",
	".content",
}

// Fetcher downloads pages with a per-page deadline.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	userAgent   string
	concurrency int
	log         *zap.Logger
}

// New builds a Fetcher. A nil client uses a client without its own timeout;
// the per-fetch deadline is applied through the request context.
func New(client *http.Client, cfg types.FetchConfig, userAgent string, log *zap.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	f := &Fetcher{
		client:      client,
		timeout:     cfg.Timeout,
		userAgent:   userAgent,
		concurrency: cfg.Concurrency,
		log:         log,
	}
	if f.timeout <= 0 {
		f.timeout = DefaultTimeout
	}
	if f.concurrency <= 0 {
		f.concurrency = DefaultConcurrency
	}
	return f
}

// Fetch retrieves pageURL and returns at most maxLength characters of its
// main text. maxLength <= 0 means DefaultMaxLength.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string, maxLength int) string {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	text, err := f.fetch(ctx, pageURL, maxLength)
	if err != nil {
		f.log.Debug("page fetch failed", zap.String("url", pageURL), zap.Error(err))
		return ""
	}
	return text
}

func (f *Fetcher) fetch(ctx context.Context, pageURL string, maxLength int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("HTTP %d from %s", resp.StatusCode, pageURL)
	}

	body, err := httputil.ReadLimited(resp.Body, maxBodyBytes)
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	switch {
	case strings.Contains(contentType, "text/plain"):
		return truncate(collapseSpace(string(body)), maxLength), nil
	case contentType != "" && !strings.Contains(contentType, "html"):
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}

	return ExtractText(bytes.NewReader(body), maxLength)
}

// FetchAll fetches urls concurrently, at most the configured number at a
// time. Each fetch carries its own deadline and a failure never cancels its
// siblings. Only pages that produced text appear in the result.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string, maxLength int) types.PageText {
	texts := make([]string, len(urls))

	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i, u := range urls {
		g.Go(func() error {
			texts[i] = f.Fetch(ctx, u, maxLength)
			return nil
		})
	}
	_ = g.Wait()

	pages := make(types.PageText, len(urls))
	for i, u := range urls {
		if texts[i] != "" {
			pages[u] = texts[i]
		}
	}
	f.log.Debug("pages fetched", zap.Int("requested", len(urls)), zap.Int("usable", len(pages)))
	return pages
}

// ExtractText parses an HTML document, drops non-content markup and returns
// the collapsed text of the best content container, truncated to maxLength
// characters.
func ExtractText(r io.Reader, maxLength int) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing document: %w", err)
	}
	doc.Find(noiseSelector).Remove()

	for _, sel := range contentSelectors {
		node := doc.Find(sel).First()
		if node.Length() == 0 {
			continue
		}
		if text := collapseSpace(node.Text()); text != "" {
			return truncate(text, maxLength), nil
		}
	}
	return truncate(collapseSpace(doc.Find("body").Text()), maxLength), nil
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to maxLength runes.
func truncate(s string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if utf8.RuneCountInString(s) <= maxLength {
		return s
	}
	return string([]rune(s)[:maxLength])
}
