// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package edit

import "github.com/pdiddy/article-engine/pkg/types"

var headlineTemplates = map[types.Tone][]string{
	types.ToneProfessional: {
		"{topic}: A Practical Overview",
		"What Leaders Should Know About {topic}",
		"{topic} by the Numbers",
		"The State of {topic}",
		"{topic}: Trends and Takeaways",
	},
	types.ToneCasual: {
		"{topic} Made Simple",
		"The Lowdown on {topic}",
		"Why Everyone Is Talking About {topic}",
		"{topic} in Five Minutes",
		"So What's the Deal With {topic}?",
	},
	types.ToneAcademic: {
		"{topic}: A Critical Review",
		"Evidence and Open Questions in {topic}",
		"Toward an Understanding of {topic}",
		"{topic}: A Survey of Recent Findings",
		"Examining {topic}",
	},
	types.ToneJournalistic: {
		"{topic}: The Facts Behind the Headlines",
		"How {topic} Is Changing",
		"The Numbers Behind {topic}",
		"{topic}: What Happens Next",
		"Why {topic} Matters Now",
	},
}
