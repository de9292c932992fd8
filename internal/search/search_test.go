// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/article-engine/pkg/types"
)

// --- mock provider ---

type mockProvider struct {
	name    string
	results []types.SearchResult
	err     error
	calls   *[]string
}

func (m *mockProvider) Name() string { return m.name }

func (m *mockProvider) Attempt(_ context.Context, _ string, _ int) ([]types.SearchResult, error) {
	if m.calls != nil {
		*m.calls = append(*m.calls, m.name)
	}
	return m.results, m.err
}

func blocked(name string) error {
	return &ProviderError{Provider: name, Reason: "HTTP 403", Err: ErrBlocked}
}

func hits(source string, urls ...string) []types.SearchResult {
	out := make([]types.SearchResult, len(urls))
	for i, u := range urls {
		out[i] = types.SearchResult{Title: fmt.Sprintf("%s %d", source, i), URL: u, Snippet: "snippet", Source: source}
	}
	return out
}

// --- Deduplicate ---

func TestDeduplicate(t *testing.T) {
	results := []types.SearchResult{
		{Title: "first", URL: "https://a.org/x/"},
		{Title: "same page over http", URL: "http://a.org/x"},
		{Title: "www is a different key", URL: "https://www.a.org/x"},
		{Title: "no url", URL: ""},
		{Title: "other", URL: "https://b.org/y"},
		{Title: "repeat", URL: "https://b.org/y//"},
	}

	got := Deduplicate(results)
	require.Len(t, got, 3)
	assert.Equal(t, "first", got[0].Title)
	assert.Equal(t, "www is a different key", got[1].Title)
	assert.Equal(t, "other", got[2].Title)
}

func TestDeduplicate_Empty(t *testing.T) {
	assert.Empty(t, Deduplicate(nil))
}

// --- Chain ---

func TestChain_FallsBackToNextProvider(t *testing.T) {
	var calls []string
	chain := NewChain([]Provider{
		&mockProvider{name: "duckduckgo", err: blocked("duckduckgo"), calls: &calls},
		&mockProvider{name: "duckduckgo-lite", results: hits("lite", "https://a.org", "https://b.org"), calls: &calls},
		&mockProvider{name: "wikipedia", results: hits("wiki", "https://c.org"), calls: &calls},
	}, 10, zaptest.NewLogger(t))

	results, out := chain.SearchDetailed(context.Background(), "solar power", 0)

	require.Len(t, results, 2)
	assert.Equal(t, "lite", results[0].Source)
	assert.Equal(t, "duckduckgo-lite", out.Provider)
	assert.Equal(t, []string{"duckduckgo", "duckduckgo-lite"}, calls, "wikipedia must not be tried")
	require.Len(t, out.Attempts, 2)
	assert.ErrorIs(t, out.Attempts[0].Err, ErrBlocked)
	assert.Equal(t, []string{"duckduckgo: HTTP 403: provider blocked the request"}, out.Errors())
}

func TestChain_SkipsEmptySuccess(t *testing.T) {
	chain := NewChain([]Provider{
		&mockProvider{name: "empty"},
		&mockProvider{name: "full", results: hits("full", "https://a.org")},
	}, 10, nil)

	results, out := chain.SearchDetailed(context.Background(), "q", 0)
	require.Len(t, results, 1)
	assert.Equal(t, "full", out.Provider)
	assert.Empty(t, out.Errors())
}

func TestChain_NeverMerges(t *testing.T) {
	chain := NewChain([]Provider{
		&mockProvider{name: "one", results: hits("one", "https://a.org")},
		&mockProvider{name: "two", results: hits("two", "https://b.org")},
	}, 10, nil)

	results := chain.Search(context.Background(), "q", 0)
	require.Len(t, results, 1)
	assert.Equal(t, "one", results[0].Source)
}

func TestChain_AllFail(t *testing.T) {
	chain := NewChain([]Provider{
		&mockProvider{name: "duckduckgo", err: blocked("duckduckgo")},
		&mockProvider{name: "duckduckgo-lite", err: errors.New("connection reset")},
		&mockProvider{name: "wikipedia", err: blocked("wikipedia")},
	}, 10, zaptest.NewLogger(t))

	results, out := chain.SearchDetailed(context.Background(), "q", 0)
	assert.NotNil(t, results)
	assert.Empty(t, results)
	assert.Empty(t, out.Provider)
	assert.Len(t, out.Errors(), 3)
}

func TestChain_TruncatesToMaxResults(t *testing.T) {
	chain := NewChain([]Provider{
		&mockProvider{name: "one", results: hits("one", "https://a.org", "https://b.org", "https://c.org")},
	}, 10, nil)

	assert.Len(t, chain.Search(context.Background(), "q", 2), 2)
}

func TestChain_StopsOnCancelledContext(t *testing.T) {
	var calls []string
	chain := NewChain([]Provider{
		&mockProvider{name: "one", results: hits("one", "https://a.org"), calls: &calls},
	}, 10, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Empty(t, chain.Search(ctx, "q", 0))
	assert.Empty(t, calls)
}

func TestNew_ProviderOrder(t *testing.T) {
	chain, err := New(types.SearchConfig{}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultProviders, chain.Providers())

	chain, err = New(types.SearchConfig{Providers: []string{"wikipedia", " DuckDuckGo "}}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"wikipedia", "duckduckgo"}, chain.Providers())
}

func TestNew_UnknownProvider(t *testing.T) {
	_, err := New(types.SearchConfig{Providers: []string{"bing"}}, nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown search provider "bing"`)
}

// TestChain_HTTPFallback runs the real HTML providers against test servers:
// the HTML endpoint answers 403, the lite endpoint answers with results.
func TestChain_HTTPFallback(t *testing.T) {
	htmlSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer htmlSrv.Close()
	liteSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page(liteResults))
	}))
	defer liteSrv.Close()

	ddg := NewDuckDuckGo(htmlSrv.Client(), types.SearchConfig{})
	ddg.Endpoint = htmlSrv.URL
	lite := NewDuckDuckGoLite(liteSrv.Client(), types.SearchConfig{})
	lite.Endpoint = liteSrv.URL

	chain := NewChain([]Provider{ddg, lite}, 10, zaptest.NewLogger(t))
	results, out := chain.SearchDetailed(context.Background(), "solar power", 0)

	require.Len(t, results, 3)
	assert.Equal(t, "duckduckgo-lite", out.Provider)
	assert.Equal(t, "https://example.org/a", results[0].URL)

	var pe *ProviderError
	require.ErrorAs(t, out.Attempts[0].Err, &pe)
	assert.Equal(t, "duckduckgo", pe.Provider)
	assert.Equal(t, "HTTP 403", pe.Reason)
}

// TestChain_FallsBackToWikipedia runs all three real providers: the HTML
// endpoint answers with a body below the block threshold, the lite endpoint
// answers 503, and Wikipedia answers.
func TestChain_FallsBackToWikipedia(t *testing.T) {
	htmlSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><body>try again</body></html>")
	}))
	defer htmlSrv.Close()
	liteSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer liteSrv.Close()
	wikiSrv := wikiServer(t, http.StatusOK)
	defer wikiSrv.Close()

	ddg := &DuckDuckGo{Client: htmlSrv.Client(), Endpoint: htmlSrv.URL}
	lite := &DuckDuckGoLite{Client: liteSrv.Client(), Endpoint: liteSrv.URL}
	wiki := &Wikipedia{Client: wikiSrv.Client(), Endpoint: wikiSrv.URL}

	chain := NewChain([]Provider{ddg, lite, wiki}, 10, zaptest.NewLogger(t))
	results, out := chain.SearchDetailed(context.Background(), "solar power", 5)

	direct, err := wiki.Attempt(context.Background(), "solar power", 5)
	require.NoError(t, err)
	assert.Equal(t, "wikipedia", out.Provider)
	assert.Equal(t, direct, results)

	require.Len(t, out.Attempts, 3)
	var pe *ProviderError
	require.ErrorAs(t, out.Attempts[0].Err, &pe)
	assert.Contains(t, pe.Reason, "below 500")
	require.ErrorAs(t, out.Attempts[1].Err, &pe)
	assert.Equal(t, "HTTP 503", pe.Reason)
	assert.NoError(t, out.Attempts[2].Err)
}

func TestChain_AllHTTPProvidersFail(t *testing.T) {
	htmlSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html></html>")
	}))
	defer htmlSrv.Close()
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	chain := NewChain([]Provider{
		&DuckDuckGo{Client: htmlSrv.Client(), Endpoint: htmlSrv.URL},
		&DuckDuckGoLite{Client: down.Client(), Endpoint: down.URL},
		&Wikipedia{Client: down.Client(), Endpoint: down.URL},
	}, 10, zaptest.NewLogger(t))

	results, out := chain.SearchDetailed(context.Background(), "solar power", 5)
	require.NotNil(t, results)
	assert.Empty(t, results)
	assert.Empty(t, out.Provider)
	require.Len(t, out.Attempts, 3)
	for _, a := range out.Attempts {
		assert.ErrorIs(t, a.Err, ErrBlocked, a.Provider)
	}
}

// --- block detection ---

func TestDetectBlock(t *testing.T) {
	long := bytes.Repeat([]byte("x"), 600)
	tests := []struct {
		name   string
		status int
		body   []byte
		want   string
	}{
		{"ok", 200, long, ""},
		{"server error", 503, long, "HTTP 503"},
		{"redirect", 302, long, "HTTP 302"},
		{"short body", 200, []byte("<html></html>"), "response of 13 bytes is below 500"},
		{"captcha", 200, append([]byte("Please solve the CAPTCHA "), long...), `response mentions "captcha"`},
		{"anomaly modal", 200, append([]byte(`<div class="anomaly-modal">`), long...), `response mentions "anomaly-modal"`},
		{"too many requests", 200, append([]byte("Too Many Requests"), long...), `response mentions "too many requests"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detectBlock(tt.status, tt.body, 0, ""))
		})
	}
}

func TestDetectBlock_IgnoresResultText(t *testing.T) {
	body := []byte(page(`<div class="result"><a class="result__snippet">Traffic was blocked by a rate limit.</a></div>`))
	assert.Empty(t, detectBlock(200, body, 0, ".result"))
	assert.Equal(t, `response mentions "rate limit"`, detectBlock(200, body, 0, ""))
}

func TestDetectBlock_CustomThreshold(t *testing.T) {
	assert.Empty(t, detectBlock(200, []byte("0123456789"), 5, ""))
	assert.NotEmpty(t, detectBlock(200, []byte("0123"), 5, ""))
}

// --- output ---

func TestFormatTable(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(hits("wiki", "https://en.wikipedia.org/wiki/Solar_power"), Outcome{
		Provider: "wikipedia",
		Attempts: []AttemptRecord{{Provider: "duckduckgo", Err: blocked("duckduckgo")}},
	}, &buf)

	out := buf.String()
	assert.Contains(t, out, "warning: duckduckgo: HTTP 403")
	assert.Contains(t, out, "https://en.wikipedia.org/wiki/Solar_power")
	assert.Contains(t, out, "1 results from wikipedia")
}

func TestFormatTable_NoResults(t *testing.T) {
	var buf bytes.Buffer
	FormatTable(nil, Outcome{}, &buf)
	assert.Equal(t, "No results found.\n", buf.String())
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(hits("lite", "https://a.org"), &buf))

	var decoded []types.SearchResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "https://a.org", decoded[0].URL)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
