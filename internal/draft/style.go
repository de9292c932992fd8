// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import "github.com/pdiddy/article-engine/pkg/types"

// style is the phrase table for one tone. {topic} is replaced with the
// title-cased topic.
type style struct {
	headlines   []string
	openings    []string
	transitions []string
	closings    []string
}

var styles = map[types.Tone]style{
	types.ToneProfessional: {
		headlines: []string{
			"{topic}: Key Facts and Figures",
			"Understanding {topic}: What the Evidence Shows",
			"{topic} in Focus",
		},
		openings: []string{
			"{topic} draws steady attention from decision makers. The points below summarize what current sources report.",
			"This briefing collects the most relevant findings on {topic} from recent sources.",
		},
		transitions: []string{
			"Further findings add context.",
			"Additional sources point in a similar direction.",
			"The picture extends beyond the headline numbers.",
		},
		closings: []string{
			"Taken together, these findings offer a grounded view of {topic}.",
			"These points provide a starting place for informed decisions about {topic}.",
		},
	},
	types.ToneCasual: {
		headlines: []string{
			"Everything You Wanted to Know About {topic}",
			"{topic}, Explained",
			"Let's Talk About {topic}",
		},
		openings: []string{
			"Curious about {topic}? Here's what people are saying.",
			"So, {topic}. Turns out there's a lot going on.",
		},
		transitions: []string{
			"But wait, there's more.",
			"Here's another interesting bit.",
			"And that's not all.",
		},
		closings: []string{
			"That's the quick tour of {topic}.",
			"Now you know a bit more about {topic} than you did five minutes ago.",
		},
	},
	types.ToneAcademic: {
		headlines: []string{
			"{topic}: A Review of Current Evidence",
			"An Overview of {topic}",
			"{topic}: Findings and Implications",
		},
		openings: []string{
			"This article reviews published findings concerning {topic}.",
			"The following synthesis examines the available evidence on {topic}.",
		},
		transitions: []string{
			"Further evidence supports this observation.",
			"Additional studies extend these results.",
			"Related findings merit consideration.",
		},
		closings: []string{
			"In summary, the evidence on {topic} warrants continued investigation.",
			"These findings delineate the current understanding of {topic}.",
		},
	},
	types.ToneJournalistic: {
		headlines: []string{
			"{topic}: What You Need to Know",
			"The Story Behind {topic}",
			"Inside {topic}",
		},
		openings: []string{
			"{topic} is making headlines. Here is what the record shows.",
			"New reporting sheds light on {topic}.",
		},
		transitions: []string{
			"The numbers tell more of the story.",
			"Sources point to further developments.",
			"Meanwhile, other reports add detail.",
		},
		closings: []string{
			"As {topic} continues to develop, these facts frame the debate.",
			"The story of {topic} is still being written.",
		},
	},
}

// styleFor returns the table for tone, falling back to the default tone.
func styleFor(tone types.Tone) style {
	if st, ok := styles[tone]; ok {
		return st
	}
	return styles[types.DefaultTone]
}
