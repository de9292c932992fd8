// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/pdiddy/article-engine/internal/draft"
	"github.com/pdiddy/article-engine/internal/edit"
	"github.com/pdiddy/article-engine/pkg/types"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// --- fakes ---

type fakeResearch struct {
	result *types.ResearchResult
	err    error
	panic  bool
	calls  int
}

func (f *fakeResearch) Run(_ context.Context, _ string) (*types.ResearchResult, error) {
	f.calls++
	if f.panic {
		panic("research exploded")
	}
	return f.result, f.err
}

type fakeWriter struct {
	result *types.WriterResult
	err    error
	got    draft.Input
	calls  int
}

func (f *fakeWriter) Draft(_ context.Context, in draft.Input) (*types.WriterResult, error) {
	f.calls++
	f.got = in
	return f.result, f.err
}

type fakeEditor struct {
	result *types.EditorResult
	err    error
	panic  bool
	got    edit.Input
	calls  int
}

func (f *fakeEditor) Edit(_ context.Context, in edit.Input) (*types.EditorResult, error) {
	f.calls++
	f.got = in
	if f.panic {
		panic("editor exploded")
	}
	return f.result, f.err
}

// steppingClock advances by step on every reading.
func steppingClock(step time.Duration) Clock {
	var mu sync.Mutex
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(step)
		return now
	}
}

func researchWithFacts(n int) *types.ResearchResult {
	res := &types.ResearchResult{Topic: "solar power"}
	for i := 0; i < n; i++ {
		u := fmt.Sprintf("https://example.org/%d", i)
		res.Facts = append(res.Facts, types.ResearchFact{Fact: fmt.Sprintf("Fact %d is long enough to keep around.", i), SourceURL: u})
		res.Sources = append(res.Sources, types.ResearchSource{URL: u})
	}
	return res
}

func goodWriter() *fakeWriter {
	return &fakeWriter{result: &types.WriterResult{
		Title:     "Solar Power in Focus",
		Article:   "# Solar Power in Focus\n\nFact [1].",
		Citations: []types.Citation{{Index: 1, URL: "https://example.org/0"}},
	}}
}

func goodEditor() *fakeEditor {
	return &fakeEditor{result: &types.EditorResult{EditedTitle: "Solar Power in Focus", QualityScore: 90}}
}

func newOrchestrator(t *testing.T, r Researcher, w Writer, e Editor) *Orchestrator {
	t.Helper()
	return New(r, w, e, Options{
		Clock: steppingClock(10 * time.Millisecond),
		NewID: func() string { return "run-1" },
	}, zaptest.NewLogger(t))
}

func statuses(res *types.OrchestrationResult) []types.StepStatus {
	out := make([]types.StepStatus, len(res.Steps))
	for i, s := range res.Steps {
		out[i] = s.Status
	}
	return out
}

// --- scenarios ---

func TestRun_HappyPath(t *testing.T) {
	research := &fakeResearch{result: researchWithFacts(7)}
	writer, editor := goodWriter(), goodEditor()
	o := newOrchestrator(t, research, writer, editor)

	res, err := o.Run(context.Background(), Request{Topic: "  solar power ", Tone: types.ToneAcademic})
	require.NoError(t, err)

	assert.Equal(t, types.RunCompleted, res.Status)
	assert.Equal(t, "run-1", res.ID)
	assert.Equal(t, "solar power", res.Topic)
	assert.Equal(t, types.ToneAcademic, res.Tone)
	assert.Equal(t, []types.StepStatus{types.StepCompleted, types.StepCompleted, types.StepCompleted}, statuses(res))
	assert.Equal(t, []types.Agent{types.AgentResearch, types.AgentWriter, types.AgentEditor},
		[]types.Agent{res.Steps[0].Agent, res.Steps[1].Agent, res.Steps[2].Agent})
	assert.NotNil(t, res.Research)
	assert.NotNil(t, res.Article)
	require.NotNil(t, res.Edited)
	assert.Equal(t, 90, res.Edited.QualityScore)

	for _, s := range res.Steps {
		assert.Equal(t, int64(10), s.DurationMs, s.Agent)
		assert.Empty(t, s.Error)
	}
	assert.Equal(t, int64(70), res.TotalDurationMs)

	// Stage boundaries carry the typed results forward.
	assert.Len(t, writer.got.Facts, 7)
	assert.Equal(t, types.ToneAcademic, writer.got.Tone)
	assert.Equal(t, "Solar Power in Focus", editor.got.Title)
	assert.Len(t, editor.got.Citations, 1)
}

func TestRun_ResearchFails(t *testing.T) {
	writer, editor := goodWriter(), goodEditor()
	o := newOrchestrator(t, &fakeResearch{err: errors.New("search backend down")}, writer, editor)

	res, err := o.Run(context.Background(), Request{Topic: "solar"})
	require.NoError(t, err)

	assert.Equal(t, types.RunFailed, res.Status)
	assert.Nil(t, res.Research)
	assert.Nil(t, res.Article)
	assert.Nil(t, res.Edited)
	assert.Equal(t, []types.StepStatus{types.StepFailed, types.StepSkipped, types.StepSkipped}, statuses(res))
	assert.Equal(t, "search backend down", res.Steps[0].Error)
	assert.Equal(t, MsgResearchFailed, res.Steps[1].Error)
	assert.Equal(t, MsgResearchFailed, res.Steps[2].Error)
	assert.Zero(t, writer.calls)
	assert.Zero(t, editor.calls)
}

func TestRun_ResearchPanics(t *testing.T) {
	o := newOrchestrator(t, &fakeResearch{panic: true}, goodWriter(), goodEditor())

	res, err := o.Run(context.Background(), Request{Topic: "solar"})
	require.NoError(t, err)
	assert.Equal(t, types.RunFailed, res.Status)
	assert.Contains(t, res.Steps[0].Error, "research exploded")
}

func TestRun_NoFacts(t *testing.T) {
	writer, editor := goodWriter(), goodEditor()
	o := newOrchestrator(t, &fakeResearch{result: researchWithFacts(0)}, writer, editor)

	res, err := o.Run(context.Background(), Request{Topic: "solar"})
	require.NoError(t, err)

	assert.Equal(t, types.RunPartial, res.Status)
	assert.NotNil(t, res.Research)
	assert.Nil(t, res.Article)
	assert.Nil(t, res.Edited)
	assert.Equal(t, []types.StepStatus{types.StepCompleted, types.StepSkipped, types.StepSkipped}, statuses(res))
	assert.Equal(t, "No facts available from research to write about", res.Steps[1].Error)
	assert.Equal(t, MsgNoArticle, res.Steps[2].Error)
	assert.Zero(t, res.Steps[1].DurationMs)
	assert.Zero(t, writer.calls)
}

func TestRun_WriterFails(t *testing.T) {
	editor := goodEditor()
	o := newOrchestrator(t, &fakeResearch{result: researchWithFacts(3)}, &fakeWriter{err: draft.ErrNoFacts}, editor)

	res, err := o.Run(context.Background(), Request{Topic: "solar"})
	require.NoError(t, err)

	assert.Equal(t, types.RunPartial, res.Status)
	assert.Nil(t, res.Article)
	assert.Equal(t, []types.StepStatus{types.StepCompleted, types.StepFailed, types.StepSkipped}, statuses(res))
	assert.Equal(t, MsgNoArticle, res.Steps[2].Error)
	assert.Zero(t, editor.calls)
}

func TestRun_WriterReturnsEmptyArticle(t *testing.T) {
	o := newOrchestrator(t, &fakeResearch{result: researchWithFacts(3)},
		&fakeWriter{result: &types.WriterResult{Article: "  "}}, goodEditor())

	res, err := o.Run(context.Background(), Request{Topic: "solar"})
	require.NoError(t, err)
	assert.Equal(t, types.StepFailed, res.Steps[1].Status)
	assert.Nil(t, res.Article)
}

func TestRun_EditorFails(t *testing.T) {
	o := newOrchestrator(t, &fakeResearch{result: researchWithFacts(3)}, goodWriter(), &fakeEditor{err: edit.ErrEmptyArticle})

	res, err := o.Run(context.Background(), Request{Topic: "solar"})
	require.NoError(t, err)

	assert.Equal(t, types.RunPartial, res.Status)
	assert.NotNil(t, res.Article)
	assert.Nil(t, res.Edited)
	assert.Equal(t, []types.StepStatus{types.StepCompleted, types.StepCompleted, types.StepFailed}, statuses(res))
	assert.Equal(t, "article is empty", res.Steps[2].Error)
}

func TestRun_EditorPanics(t *testing.T) {
	o := newOrchestrator(t, &fakeResearch{result: researchWithFacts(3)}, goodWriter(), &fakeEditor{panic: true})

	res, err := o.Run(context.Background(), Request{Topic: "solar"})
	require.NoError(t, err)
	assert.Equal(t, types.RunPartial, res.Status)
	assert.Equal(t, "panic: editor exploded", res.Steps[2].Error)
}

func TestRun_ValidationRunsNothing(t *testing.T) {
	research := &fakeResearch{result: researchWithFacts(3)}
	o := newOrchestrator(t, research, goodWriter(), goodEditor())

	tests := []struct {
		name  string
		req   Request
		field string
	}{
		{"empty topic", Request{}, "topic"},
		{"blank topic", Request{Topic: " \t\n"}, "topic"},
		{"unknown tone", Request{Topic: "solar", Tone: "sarcastic"}, "tone"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := o.Run(context.Background(), tt.req)
			assert.Nil(t, res)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
	assert.Zero(t, research.calls)
}

func TestRun_DefaultID(t *testing.T) {
	o := New(&fakeResearch{result: researchWithFacts(0)}, goodWriter(), goodEditor(), Options{}, nil)

	a, err := o.Run(context.Background(), Request{Topic: "solar"})
	require.NoError(t, err)
	b, err := o.Run(context.Background(), Request{Topic: "solar"})
	require.NoError(t, err)
	assert.Len(t, a.ID, 36)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestRequestValidate_NormalizesTone(t *testing.T) {
	req := Request{Topic: " solar ", Tone: " Casual "}
	require.NoError(t, req.Validate())
	assert.Equal(t, "solar", req.Topic)
	assert.Equal(t, types.ToneCasual, req.Tone)

	req = Request{Topic: "solar"}
	require.NoError(t, req.Validate())
	assert.Equal(t, types.DefaultTone, req.Tone)
}

func TestValidationError_Message(t *testing.T) {
	req := Request{Topic: "solar", Tone: "pirate"}
	err := req.Validate()
	require.Error(t, err)
	assert.Equal(t, `invalid tone: unknown tone "pirate" (want one of professional, casual, academic, journalistic)`, err.Error())
}

func TestTransition_TerminalIsFinal(t *testing.T) {
	r := &run{o: newOrchestrator(t, nil, nil, nil), result: &types.OrchestrationResult{
		Steps: []types.PipelineStep{{Agent: types.AgentWriter, Status: types.StepSkipped, Error: "x"}},
	}}
	r.transition(types.AgentWriter, types.StepRunning, 5, "")
	assert.Equal(t, types.StepSkipped, r.result.Steps[0].Status)
	assert.Equal(t, "x", r.result.Steps[0].Error)
}

// --- result file ---

func TestResultFileRoundTrip(t *testing.T) {
	o := newOrchestrator(t, &fakeResearch{result: researchWithFacts(2)}, goodWriter(), goodEditor())
	res, err := o.Run(context.Background(), Request{Topic: "solar"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out", "run.yaml")
	require.NoError(t, WriteResultFile(path, res))

	got, err := ReadResultFile(path)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)
	assert.Equal(t, res.Status, got.Status)
	assert.Equal(t, res.Steps, got.Steps)
	assert.True(t, res.CompletedAt.Equal(got.CompletedAt))
	require.NotNil(t, got.Research)
	assert.Equal(t, res.Research.Facts, got.Research.Facts)
}

func TestReadResultFile_Missing(t *testing.T) {
	_, err := ReadResultFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
