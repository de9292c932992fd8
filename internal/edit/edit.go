// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package edit tightens a drafted article with a table of rewrite rules,
// scores its quality and proposes alternative headlines.
package edit

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/article-engine/internal/draft"
	"github.com/pdiddy/article-engine/internal/extract"
	"github.com/pdiddy/article-engine/pkg/types"
)

// HeadlineSuggestions is how many alternative headlines are proposed.
const HeadlineSuggestions = 3

// sourcesHeading separates the article body from its reference list. The
// reference list is never rewritten.
const sourcesHeading = "\n## Sources"

// ErrEmptyArticle is returned when there is no article to edit.
var ErrEmptyArticle = errors.New("article is empty")

// Input is the drafted article and its context.
type Input struct {
	Title     string
	Article   string
	Topic     string
	Tone      types.Tone
	Citations []types.Citation
}

// Editor edits articles. It is safe for concurrent use.
type Editor struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New returns an Editor drawing headline choices from rng. A nil rng is
// seeded from the clock.
func New(rng *rand.Rand) *Editor {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Editor{rng: rng}
}

// Edit applies the rule table for in.Tone and returns the edited article.
func (e *Editor) Edit(ctx context.Context, in Input) (*types.EditorResult, error) {
	if strings.TrimSpace(in.Article) == "" {
		return nil, ErrEmptyArticle
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tone := in.Tone
	if !tone.Valid() {
		tone = types.DefaultTone
	}

	body, refs := in.Article, ""
	if i := strings.Index(in.Article, sourcesHeading); i >= 0 {
		body, refs = in.Article[:i], in.Article[i:]
	}

	var changes []types.EditChange
	for _, r := range rules {
		if !r.appliesTo(tone) {
			continue
		}
		out, count, original, replacement := r.Apply(body)
		if count == 0 {
			continue
		}
		body = out
		changes = append(changes, types.EditChange{
			Rule:        r.Name,
			Original:    original,
			Replacement: replacement,
			Count:       count,
		})
	}

	edited := body + refs
	title := editedTitle(body, in.Title)
	topic := draft.TitleCase(strings.TrimSpace(in.Topic))
	if topic == "" {
		topic = title
	}

	return &types.EditorResult{
		EditedTitle:         title,
		EditedArticle:       edited,
		Changes:             changes,
		QualityScore:        QualityScore(body, changes),
		HeadlineSuggestions: e.headlines(tone, topic),
	}, nil
}

// editedTitle reads the heading back out of the edited body.
func editedTitle(body, fallback string) string {
	first, _, _ := strings.Cut(body, "\n")
	if title, ok := strings.CutPrefix(first, "# "); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	return strings.TrimSpace(fallback)
}

func (e *Editor) headlines(tone types.Tone, topic string) []string {
	templates := headlineTemplates[tone]
	e.mu.Lock()
	order := e.rng.Perm(len(templates))
	e.mu.Unlock()

	out := make([]string, 0, HeadlineSuggestions)
	for _, i := range order[:min(HeadlineSuggestions, len(order))] {
		out = append(out, strings.ReplaceAll(templates[i], "{topic}", topic))
	}
	return out
}

// QualityScore rates an article body from 0 to 100. Long average sentences,
// missing or sparse citations and heavy rewriting all cost points.
func QualityScore(body string, changes []types.EditChange) int {
	prose := proseOnly(body)
	sentences := extract.SplitSentences(prose)
	if len(sentences) == 0 {
		return 0
	}

	score := 100.0

	words := len(strings.Fields(prose))
	avg := float64(words) / float64(len(sentences))
	switch {
	case avg > 25:
		score -= math.Min((avg-25)*2, 30)
	case avg < 8:
		score -= 10
	}

	markers := len(draft.CitationMarkers(prose))
	switch density := float64(markers) / float64(len(sentences)); {
	case markers == 0:
		score -= 25
	case density < 0.3:
		score -= 10
	}

	edits := 0
	for _, c := range changes {
		edits += c.Count
	}
	score -= math.Min(float64(edits), 20)

	return int(math.Round(math.Max(0, math.Min(100, score))))
}

// proseOnly drops markdown headings.
func proseOnly(body string) string {
	var kept []string
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}
