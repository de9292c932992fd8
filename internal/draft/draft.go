// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package draft writes a short, source-cited article from research facts.
// Prose comes from per-tone rule tables; every fact carries an inline [n]
// marker that points into the numbered Sources section.
package draft

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/article-engine/internal/httputil"
	"github.com/pdiddy/article-engine/pkg/types"
)

// factsPerParagraph groups facts into body paragraphs.
const factsPerParagraph = 3

// ErrNoFacts is returned when there is nothing to write about.
var ErrNoFacts = errors.New("no facts to write about")

// Input is everything the writer needs for one article.
type Input struct {
	Topic   string
	Facts   []types.ResearchFact
	Sources []types.ResearchSource
	Tone    types.Tone
}

// Writer drafts articles. It is safe for concurrent use.
type Writer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns a Writer drawing template choices from rng. A nil rng is
// seeded from the clock.
func New(rng *rand.Rand) *Writer {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Writer{rng: rng}
}

// Draft writes the article for in. It fails when in has no facts.
func (w *Writer) Draft(ctx context.Context, in Input) (*types.WriterResult, error) {
	if len(in.Facts) == 0 {
		return nil, ErrNoFacts
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	st := styleFor(in.Tone)
	topic := TitleCase(strings.TrimSpace(in.Topic))
	citations, indexOf := numberSources(in.Facts, in.Sources)

	title := fill(w.pick(st.headlines), topic)

	var body strings.Builder
	body.WriteString(fill(w.pick(st.openings), topic))
	for start := 0; start < len(in.Facts); start += factsPerParagraph {
		end := min(start+factsPerParagraph, len(in.Facts))
		body.WriteString("\n\n")
		if start > 0 {
			body.WriteString(fill(w.pick(st.transitions), topic))
			body.WriteString(" ")
		}
		for i, f := range in.Facts[start:end] {
			if i > 0 {
				body.WriteString(" ")
			}
			body.WriteString(cite(f.Fact, indexOf[httputil.NormalizeURL(f.SourceURL)]))
		}
	}
	body.WriteString("\n\n")
	body.WriteString(fill(w.pick(st.closings), topic))

	text := body.String()
	article := "# " + title + "\n\n" + text + "\n\n" + sourcesSection(citations)

	return &types.WriterResult{
		Title:     title,
		Article:   article,
		WordCount: len(strings.Fields(text)),
		Citations: citations,
	}, nil
}

func (w *Writer) pick(options []string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return options[w.rng.IntN(len(options))]
}

// numberSources assigns citation numbers to fact URLs in order of first
// use. Titles prefer the research source entry for the URL.
func numberSources(facts []types.ResearchFact, sources []types.ResearchSource) ([]types.Citation, map[string]int) {
	titles := make(map[string]string, len(sources))
	for _, s := range sources {
		titles[httputil.NormalizeURL(s.URL)] = s.Title
	}

	indexOf := make(map[string]int)
	var citations []types.Citation
	for _, f := range facts {
		key := httputil.NormalizeURL(f.SourceURL)
		if _, ok := indexOf[key]; ok {
			continue
		}
		title := titles[key]
		if title == "" {
			title = f.SourceTitle
		}
		if title == "" {
			title = f.SourceURL
		}
		indexOf[key] = len(citations) + 1
		citations = append(citations, types.Citation{Index: len(citations) + 1, Title: title, URL: f.SourceURL})
	}
	return citations, indexOf
}

// cite places the marker before the sentence's closing punctuation and
// guarantees the sentence ends with a period.
func cite(sentence string, n int) string {
	s := strings.TrimSpace(sentence)
	marker := " [" + strconv.Itoa(n) + "]"
	last, size := utf8.DecodeLastRuneInString(s)
	if last == '.' || last == '!' || last == '?' {
		return s[:len(s)-size] + marker + string(last)
	}
	return s + marker + "."
}

func sourcesSection(citations []types.Citation) string {
	var b strings.Builder
	b.WriteString("## Sources\n")
	for _, c := range citations {
		fmt.Fprintf(&b, "\n%d. [%s](%s)", c.Index, c.Title, c.URL)
	}
	b.WriteString("\n")
	return b.String()
}

func fill(template, topic string) string {
	return strings.ReplaceAll(template, "{topic}", topic)
}

// TitleCase upper-cases the first letter of every word.
func TitleCase(s string) string {
	words := strings.Fields(s)
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}
	return strings.Join(words, " ")
}

// markerPattern matches inline citation markers: [1], [12].
var markerPattern = regexp.MustCompile(`\[(\d+)\]`)

// CitationMarkers returns every citation number referenced in text, in
// order of appearance, repeats included.
func CitationMarkers(text string) []int {
	var out []int
	for _, m := range markerPattern.FindAllStringSubmatch(text, -1) {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			out = append(out, n)
		}
	}
	return out
}

// ValidateCitations returns the sorted, unique marker numbers in article
// that have no corresponding citation.
func ValidateCitations(article string, citations []types.Citation) []int {
	known := make(map[int]bool, len(citations))
	for _, c := range citations {
		known[c.Index] = true
	}
	seen := make(map[int]bool)
	var missing []int
	for _, n := range CitationMarkers(article) {
		if !known[n] && !seen[n] {
			seen[n] = true
			missing = append(missing, n)
		}
	}
	sort.Ints(missing)
	return missing
}
