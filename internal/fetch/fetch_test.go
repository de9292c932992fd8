// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/article-engine/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const articlePage = `<html><head><title>T</title><script>var x = "tracking";</script></head>
<body>
  <header>Site Header</header>
  <nav>Home | About</nav>
  <div class="ad">Buy now!</div>
  <article>
    <h1>Solar   power</h1>
    <p>Solar capacity grew 24% in 2023.</p>
  </article>
  <footer>Copyright</footer>
</body></html>`

func newFetcher(t *testing.T, client *http.Client, timeout time.Duration) *Fetcher {
	t.Helper()
	return New(client, types.FetchConfig{Timeout: timeout}, "article-engine-test/1.0", zaptest.NewLogger(t))
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name string
		html string
		max  int
		want string
	}{
		{
			name: "article container wins",
			html: articlePage,
			want: "Solar power Solar capacity grew 24% in 2023.",
		},
		{
			name: "main before content class",
			html: `<body><div class="content">side</div><main>Main text here</main></body>`,
			want: "Main text here",
		},
		{
			name: "role main",
			html: `<body><div role="main">Role main text</div><p>other</p></body>`,
			want: "Role main text",
		},
		{
			name: "empty container falls through",
			html: `<body><article>   </article><div id="content">Fallback content</div></body>`,
			want: "Fallback content",
		},
		{
			name: "body fallback strips noise",
			html: `<body><nav>menu</nav><p>Plain   body
			text</p><footer>foot</footer><style>p{}</style></body>`,
			want: "Plain body text",
		},
		{
			name: "truncated",
			html: `<body><article>abcdefghij</article></body>`,
			max:  4,
			want: "abcd",
		},
		{
			name: "truncates by character",
			html: `<body><article>ééééé</article></body>`,
			max:  3,
			want: "ééé",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractText(strings.NewReader(tt.html), tt.max)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractText_DefaultMaxLength(t *testing.T) {
	long := strings.Repeat("word ", 3000)
	got, err := ExtractText(strings.NewReader("<body><article>"+long+"</article></body>"), 0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultMaxLength)
}

func TestFetch_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "article-engine-test/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, articlePage)
	}))
	defer ts.Close()

	f := newFetcher(t, ts.Client(), time.Second)
	got := f.Fetch(context.Background(), ts.URL, 5000)
	assert.Equal(t, "Solar power Solar capacity grew 24% in 2023.", got)
}

func TestFetch_PlainText(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprint(w, "line one\n\nline   two")
	}))
	defer ts.Close()

	f := newFetcher(t, ts.Client(), time.Second)
	assert.Equal(t, "line one line two", f.Fetch(context.Background(), ts.URL, 0))
}

func TestFetch_FailuresReturnEmpty(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
		},
		{
			name: "binary content",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/pdf")
				fmt.Fprint(w, "%PDF-1.4")
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(tt.handler)
			defer ts.Close()

			f := newFetcher(t, ts.Client(), time.Second)
			assert.Empty(t, f.Fetch(context.Background(), ts.URL, 100))
		})
	}
}

func TestFetch_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		fmt.Fprint(w, articlePage)
	}))
	defer ts.Close()

	f := newFetcher(t, ts.Client(), 50*time.Millisecond)
	start := time.Now()
	got := f.Fetch(context.Background(), ts.URL, 100)
	assert.Empty(t, got)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFetch_InvalidURL(t *testing.T) {
	f := newFetcher(t, nil, time.Second)
	assert.Empty(t, f.Fetch(context.Background(), "://bad", 100))
}

func TestFetchAll_IsolatesFailures(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "<body><article>Page %s</article></body>", strings.TrimPrefix(r.URL.Path, "/ok/"))
	})
	mux.HandleFunc("/fail", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	urls := []string{ts.URL + "/ok/1", ts.URL + "/fail", ts.URL + "/slow", ts.URL + "/ok/2"}
	f := New(ts.Client(), types.FetchConfig{Timeout: 100 * time.Millisecond, Concurrency: 2}, "", nil)

	pages := f.FetchAll(context.Background(), urls, 100)
	require.Len(t, pages, 2)
	assert.Equal(t, "Page 1", pages[ts.URL+"/ok/1"])
	assert.Equal(t, "Page 2", pages[ts.URL+"/ok/2"])
	assert.NotContains(t, pages, ts.URL+"/fail")
	assert.NotContains(t, pages, ts.URL+"/slow")
}

func TestNew_Defaults(t *testing.T) {
	f := New(nil, types.FetchConfig{}, "", nil)
	assert.Equal(t, DefaultTimeout, f.timeout)
	assert.Equal(t, DefaultConcurrency, f.concurrency)
	assert.NotNil(t, f.client)
	assert.NotNil(t, f.log)
}
