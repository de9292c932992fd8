// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns search snippets and fetched page text into a ranked,
// deduplicated list of source-attributed facts. Ranking is purely lexical:
// every sentence is scored against a fixed rule table, the best sentences
// are kept, and near-duplicates of already accepted facts are dropped.
package extract

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/article-engine/pkg/types"
)

const (
	DefaultTargetCount = 10

	// MinSentenceLength discards split fragments of this many characters or fewer.
	MinSentenceLength = 15

	// MaxPageSentences is how many leading sentences of a page are considered.
	MaxPageSentences = 20

	// PageScoreMultiplier discounts page sentences against curated snippets.
	PageScoreMultiplier = 0.8

	// MinFactLength is the minimum normalized length of an accepted fact.
	MinFactLength = 30

	// OverlapThreshold rejects a candidate whose word overlap with an
	// accepted fact exceeds it.
	OverlapThreshold = 0.6
)

// Candidate is a scored sentence awaiting selection.
type Candidate struct {
	Sentence    string
	SourceURL   string
	SourceTitle string
	Score       float64
}

// scoreRule adds Delta to a sentence's score when Match reports true.
type scoreRule struct {
	Name  string
	Delta float64
	Match func(s string, lower string, n int) bool
}

var (
	digitRe = regexp.MustCompile(`[0-9]`)
	yearRe  = regexp.MustCompile(`\b20[0-2][0-9]\b`)
)

var factualPhrases = []string{"according to", "study", "report", "research", "found that", "data shows"}

var promotionalPhrases = []string{"click here", "sign up", "subscribe", "buy now", "best ever"}

var boilerplatePhrases = []string{"cookie", "privacy policy", "consent"}

// scoringRules is the full weight table. Every matching rule applies.
var scoringRules = []scoreRule{
	{"medium length", 3, func(_, _ string, n int) bool { return n > 40 && n < 300 }},
	{"long", 1, func(_, _ string, n int) bool { return n >= 300 }},
	{"digit", 4, func(s, _ string, _ int) bool { return digitRe.MatchString(s) }},
	{"percent or currency", 3, func(s, _ string, _ int) bool { return strings.ContainsAny(s, "%$") }},
	{"factual phrase", 3, func(_, lower string, _ int) bool { return containsAny(lower, factualPhrases) }},
	{"recent year", 2, func(s, _ string, _ int) bool { return yearRe.MatchString(s) }},
	{"question", -5, func(s, _ string, _ int) bool { return strings.HasSuffix(s, "?") }},
	{"promotional", -10, func(_, lower string, _ int) bool { return containsAny(lower, promotionalPhrases) }},
	{"privacy boilerplate", -10, func(_, lower string, _ int) bool { return containsAny(lower, boilerplatePhrases) }},
}

// Score rates a single sentence with the scoring table.
func Score(sentence string) float64 {
	s := strings.TrimSpace(sentence)
	lower := strings.ToLower(s)
	n := utf8.RuneCountInString(s)

	var score float64
	for _, r := range scoringRules {
		if r.Match(s, lower, n) {
			score += r.Delta
		}
	}
	return score
}

// Extract returns at most targetCount facts from results and their page
// text, ordered by descending score. targetCount <= 0 means
// DefaultTargetCount.
func Extract(results []types.SearchResult, pages types.PageText, targetCount int) []types.ResearchFact {
	if targetCount <= 0 {
		targetCount = DefaultTargetCount
	}
	return Select(Candidates(results, pages), targetCount)
}

// Candidates generates the scored sentence candidates for results, in
// result order: snippet sentences first, then the page's leading sentences
// at a discount.
func Candidates(results []types.SearchResult, pages types.PageText) []Candidate {
	var out []Candidate
	for _, r := range results {
		for _, s := range SplitSentences(r.Snippet) {
			out = append(out, Candidate{Sentence: s, SourceURL: r.URL, SourceTitle: r.Title, Score: Score(s)})
		}

		text := pages[r.URL]
		if text == "" {
			continue
		}
		sentences := SplitSentences(text)
		if len(sentences) > MaxPageSentences {
			sentences = sentences[:MaxPageSentences]
		}
		for _, s := range sentences {
			out = append(out, Candidate{Sentence: s, SourceURL: r.URL, SourceTitle: r.Title, Score: Score(s) * PageScoreMultiplier})
		}
	}
	return out
}

// Select sorts candidates by score (stable, so ties keep generation order)
// and accepts them greedily, skipping short and near-duplicate sentences.
func Select(candidates []Candidate, targetCount int) []types.ResearchFact {
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	facts := make([]types.ResearchFact, 0, targetCount)
	var accepted []map[string]bool
	for _, c := range sorted {
		if len(facts) >= targetCount {
			break
		}
		norm := Normalize(c.Sentence)
		if utf8.RuneCountInString(norm) < MinFactLength {
			continue
		}
		words := wordSet(norm)
		if overlapsAny(words, accepted) {
			continue
		}
		accepted = append(accepted, words)
		facts = append(facts, types.ResearchFact{
			Fact:        c.Sentence,
			SourceURL:   c.SourceURL,
			SourceTitle: c.SourceTitle,
		})
	}
	return facts
}

// SplitSentences breaks text after '.', '!' or '?' followed by whitespace,
// and at line breaks. Fragments of MinSentenceLength characters or fewer
// are dropped.
func SplitSentences(text string) []string {
	var out []string
	emit := func(s string) {
		s = strings.Join(strings.Fields(s), " ")
		if utf8.RuneCountInString(s) > MinSentenceLength {
			out = append(out, s)
		}
	}

	runes := []rune(text)
	start := 0
	for i, r := range runes {
		switch {
		case r == '\n':
			emit(string(runes[start:i]))
			start = i + 1
		case r == '.' || r == '!' || r == '?':
			if i+1 == len(runes) || unicode.IsSpace(runes[i+1]) {
				emit(string(runes[start : i+1]))
				start = i + 1
			}
		}
	}
	if start < len(runes) {
		emit(string(runes[start:]))
	}
	return out
}

// Normalize lowercases s and collapses whitespace.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// OverlapRatio is |A∩B| / min(|A|, |B|) over the word sets of a and b. It
// is 0 when either side has no words.
func OverlapRatio(a, b string) float64 {
	return overlap(wordSet(Normalize(a)), wordSet(Normalize(b)))
}

func overlapsAny(words map[string]bool, accepted []map[string]bool) bool {
	for _, other := range accepted {
		if overlap(words, other) > OverlapThreshold {
			return true
		}
	}
	return false
}

func overlap(a, b map[string]bool) float64 {
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	if len(small) == 0 {
		return 0
	}
	shared := 0
	for w := range small {
		if large[w] {
			shared++
		}
	}
	return float64(shared) / float64(len(small))
}

// wordSet splits normalized text into words, ignoring punctuation.
func wordSet(norm string) map[string]bool {
	words := strings.FieldsFunc(norm, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '%' && r != '$'
	})
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
