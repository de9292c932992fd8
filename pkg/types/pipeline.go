// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Tone selects the register used by the writer and editor.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneAcademic     Tone = "academic"
	ToneJournalistic Tone = "journalistic"
)

// DefaultTone is used when a request leaves the tone empty.
const DefaultTone = ToneProfessional

// Tones lists every accepted tone in a stable order.
var Tones = []Tone{ToneProfessional, ToneCasual, ToneAcademic, ToneJournalistic}

// Valid reports whether t is one of the accepted tones.
func (t Tone) Valid() bool {
	for _, v := range Tones {
		if t == v {
			return true
		}
	}
	return false
}

// Agent names a pipeline stage.
type Agent string

const (
	AgentResearch Agent = "research"
	AgentWriter   Agent = "writer"
	AgentEditor   Agent = "editor"
)

// StepStatus tracks a step through pending → running → completed|failed,
// or pending → skipped when an earlier step stops the pipeline.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// Terminal reports whether no further transition is allowed from s.
func (s StepStatus) Terminal() bool {
	return s == StepCompleted || s == StepFailed || s == StepSkipped
}

// PipelineStep records the outcome of one stage.
type PipelineStep struct {
	Agent      Agent      `json:"agent" yaml:"agent"`
	Status     StepStatus `json:"status" yaml:"status"`
	DurationMs int64      `json:"durationMs" yaml:"duration_ms"`
	Error      string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// RunStatus is the overall outcome of an orchestration run.
type RunStatus string

const (
	RunCompleted RunStatus = "completed"
	RunPartial   RunStatus = "partial"
	RunFailed    RunStatus = "failed"
)

// Citation is a numbered reference emitted by the writer.
type Citation struct {
	// Index is the 1-based marker used inline as [Index].
	Index int    `json:"index" yaml:"index"`
	Title string `json:"title" yaml:"title"`
	URL   string `json:"url" yaml:"url"`
}

// WriterResult is the typed output of the writer stage.
type WriterResult struct {
	Title     string     `json:"title" yaml:"title"`
	Article   string     `json:"article" yaml:"article"`
	WordCount int        `json:"wordCount" yaml:"word_count"`
	Citations []Citation `json:"citations" yaml:"citations"`
}

// EditChange records one editing rule that rewrote the article.
type EditChange struct {
	Rule        string `json:"rule" yaml:"rule"`
	Original    string `json:"original" yaml:"original"`
	Replacement string `json:"replacement" yaml:"replacement"`
	Count       int    `json:"count" yaml:"count"`
}

// EditorResult is the typed output of the editor stage.
type EditorResult struct {
	EditedTitle         string       `json:"editedTitle" yaml:"edited_title"`
	EditedArticle       string       `json:"editedArticle" yaml:"edited_article"`
	Changes             []EditChange `json:"changes" yaml:"changes"`
	QualityScore        int          `json:"qualityScore" yaml:"quality_score"`
	HeadlineSuggestions []string     `json:"headlineSuggestions" yaml:"headline_suggestions"`
}

// OrchestrationResult is the complete record of one pipeline run. Research is
// nil only when the research step failed; Article is nil unless the writer
// completed; Edited is nil unless all three steps completed.
type OrchestrationResult struct {
	ID              string          `json:"id" yaml:"id"`
	Status          RunStatus       `json:"status" yaml:"status"`
	Topic           string          `json:"topic" yaml:"topic"`
	Tone            Tone            `json:"tone" yaml:"tone"`
	Steps           []PipelineStep  `json:"steps" yaml:"steps"`
	TotalDurationMs int64           `json:"totalDurationMs" yaml:"total_duration_ms"`
	Research        *ResearchResult `json:"research" yaml:"research"`
	Article         *WriterResult   `json:"article" yaml:"article"`
	Edited          *EditorResult   `json:"edited" yaml:"edited"`
	CompletedAt     time.Time       `json:"completedAt" yaml:"completed_at"`
}

// Step returns the step record for agent, or nil if none exists.
func (r *OrchestrationResult) Step(agent Agent) *PipelineStep {
	for i := range r.Steps {
		if r.Steps[i].Agent == agent {
			return &r.Steps[i]
		}
	}
	return nil
}
