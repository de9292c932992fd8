// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package edit

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pdiddy/article-engine/pkg/types"
)

// rule rewrites text and reports how many rewrites it made, along with
// the first matched text and its replacement for the change log.
type rule struct {
	Name  string
	Tones []types.Tone // nil applies to every tone
	Apply func(text string) (out string, count int, original string, replacement string)
}

func (r rule) appliesTo(tone types.Tone) bool {
	if len(r.Tones) == 0 {
		return true
	}
	for _, t := range r.Tones {
		if t == tone {
			return true
		}
	}
	return false
}

// phrase replaces a case-insensitive phrase, keeping the first letter's case.
func phrase(name, from, to string) rule {
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(from) + `\b`)
	return rule{Name: name, Apply: func(text string) (string, int, string, string) {
		return replaceFunc(re, text, func(m string) string { return matchCase(m, to) })
	}}
}

// contractions expands informal contractions for formal tones.
var contractions = map[string]string{
	"don't":   "do not",
	"doesn't": "does not",
	"didn't":  "did not",
	"can't":   "cannot",
	"won't":   "will not",
	"isn't":   "is not",
	"aren't":  "are not",
	"wasn't":  "was not",
	"it's":    "it is",
	"that's":  "that is",
	"there's": "there is",
	"here's":  "here is",
	"let's":   "let us",
}

var contractionRe = regexp.MustCompile(`(?i)\b(don't|doesn't|didn't|can't|won't|isn't|aren't|wasn't|it's|that's|there's|here's|let's)\b`)

var (
	repeatedSpaceRe = regexp.MustCompile(`[ \t]{2,}`)
	spaceBeforeRe   = regexp.MustCompile(`[ \t]+([,.;:!?])`)
	wordRe          = regexp.MustCompile(`[\p{L}\p{N}']+`)
)

// rules is applied in order to the article body.
var rules = []rule{
	phrase("wordy: in order to", "in order to", "to"),
	phrase("wordy: due to the fact that", "due to the fact that", "because"),
	phrase("wordy: at this point in time", "at this point in time", "now"),
	phrase("wordy: a large number of", "a large number of", "many"),
	phrase("wordy: in the event that", "in the event that", "if"),
	phrase("wordy: has the ability to", "has the ability to", "can"),
	phrase("wordy: for the purpose of", "for the purpose of", "for"),
	phrase("wordy: in spite of the fact that", "in spite of the fact that", "although"),
	{Name: "doubled word", Apply: removeDoubledWords},
	{Name: "repeated spaces", Apply: func(text string) (string, int, string, string) {
		return replaceFunc(repeatedSpaceRe, text, func(string) string { return " " })
	}},
	{Name: "space before punctuation", Apply: func(text string) (string, int, string, string) {
		return replaceFunc(spaceBeforeRe, text, func(m string) string { return strings.TrimLeft(m, " \t") })
	}},
	{
		Name:  "expand contraction",
		Tones: []types.Tone{types.ToneProfessional, types.ToneAcademic},
		Apply: func(text string) (string, int, string, string) {
			return replaceFunc(contractionRe, text, func(m string) string {
				return matchCase(m, contractions[strings.ToLower(m)])
			})
		},
	},
}

func replaceFunc(re *regexp.Regexp, text string, repl func(string) string) (string, int, string, string) {
	var count int
	var original, replacement string
	out := re.ReplaceAllStringFunc(text, func(m string) string {
		r := repl(m)
		if count == 0 {
			original, replacement = m, r
		}
		count++
		return r
	})
	return out, count, original, replacement
}

// removeDoubledWords drops the second of two identical adjacent words
// separated only by spaces ("the the" → "the").
func removeDoubledWords(text string) (string, int, string, string) {
	locs := wordRe.FindAllStringIndex(text, -1)
	var b strings.Builder
	var count int
	var original, replacement string
	last := 0
	for i := 1; i < len(locs); i++ {
		prev, cur := locs[i-1], locs[i]
		gap := text[prev[1]:cur[0]]
		if gap == "" || strings.Trim(gap, " \t") != "" {
			continue
		}
		if !strings.EqualFold(text[prev[0]:prev[1]], text[cur[0]:cur[1]]) {
			continue
		}
		if count == 0 {
			original = text[prev[0]:cur[1]]
			replacement = text[prev[0]:prev[1]]
		}
		count++
		b.WriteString(text[last:prev[1]])
		last = cur[1]
	}
	if count == 0 {
		return text, 0, "", ""
	}
	b.WriteString(text[last:])
	return b.String(), count, original, replacement
}

// matchCase capitalizes to when the first letter of matched is upper case.
func matchCase(matched, to string) string {
	r, _ := utf8.DecodeRuneInString(matched)
	if !unicode.IsUpper(r) || to == "" {
		return to
	}
	first, size := utf8.DecodeRuneInString(to)
	return string(unicode.ToUpper(first)) + to[size:]
}
