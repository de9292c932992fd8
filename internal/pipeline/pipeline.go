// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the research, writer and editor stages in order for
// one topic and records each step's status and duration. A stage failure
// never escapes as an error: it is written into the step record and the
// remaining steps are skipped, so callers always receive a complete
// OrchestrationResult.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/article-engine/internal/draft"
	"github.com/pdiddy/article-engine/internal/edit"
	"github.com/pdiddy/article-engine/pkg/types"
)

// Skip messages recorded on steps that did not run.
const (
	MsgNoFacts        = "No facts available from research to write about"
	MsgNoArticle      = "Writer step did not produce an article"
	MsgResearchFailed = "Research step failed"
)

// Researcher produces facts and sources for a topic.
type Researcher interface {
	Run(ctx context.Context, topic string) (*types.ResearchResult, error)
}

// Writer drafts an article from research.
type Writer interface {
	Draft(ctx context.Context, in draft.Input) (*types.WriterResult, error)
}

// Editor revises a drafted article.
type Editor interface {
	Edit(ctx context.Context, in edit.Input) (*types.EditorResult, error)
}

// Clock returns the current time.
type Clock func() time.Time

// Options tunes an Orchestrator; zero values take defaults.
type Options struct {
	Clock Clock
	NewID func() string
}

// Orchestrator sequences the three stages. It holds no per-run state and is
// safe for concurrent use when its stages are.
type Orchestrator struct {
	research Researcher
	writer   Writer
	editor   Editor
	clock    Clock
	newID    func() string
	log      *zap.Logger
}

// New builds an Orchestrator over the given stages.
func New(research Researcher, writer Writer, editor Editor, opts Options, log *zap.Logger) *Orchestrator {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		research: research,
		writer:   writer,
		editor:   editor,
		clock:    opts.Clock,
		newID:    opts.NewID,
		log:      log,
	}
}

// run is the mutable state of one orchestration.
type run struct {
	o      *Orchestrator
	result *types.OrchestrationResult
}

// Run executes the pipeline for req. The only error is a *ValidationError
// for a malformed request; every stage outcome is reported in the result.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*types.OrchestrationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := o.clock()
	r := &run{o: o, result: &types.OrchestrationResult{
		ID:    o.newID(),
		Topic: req.Topic,
		Tone:  req.Tone,
		Steps: []types.PipelineStep{
			{Agent: types.AgentResearch, Status: types.StepPending},
			{Agent: types.AgentWriter, Status: types.StepPending},
			{Agent: types.AgentEditor, Status: types.StepPending},
		},
	}}
	log := o.log.With(zap.String("run_id", r.result.ID), zap.String("topic", req.Topic))

	r.result.Status = r.execute(ctx, req, log)

	end := o.clock()
	r.result.TotalDurationMs = end.Sub(start).Milliseconds()
	r.result.CompletedAt = end
	log.Info("pipeline finished",
		zap.String("status", string(r.result.Status)),
		zap.Int64("duration_ms", r.result.TotalDurationMs))
	return r.result, nil
}

func (r *run) execute(ctx context.Context, req Request, log *zap.Logger) types.RunStatus {
	res := r.result

	started := r.begin(types.AgentResearch)
	var research *types.ResearchResult
	err := guard(func() (err error) {
		research, err = r.o.research.Run(ctx, req.Topic)
		return err
	})
	if err == nil && research == nil {
		err = errors.New("research returned no result")
	}
	if err != nil {
		r.finish(types.AgentResearch, types.StepFailed, started, err.Error(), log)
		r.skip(types.AgentWriter, MsgResearchFailed)
		r.skip(types.AgentEditor, MsgResearchFailed)
		return types.RunFailed
	}
	res.Research = research
	r.finish(types.AgentResearch, types.StepCompleted, started, "", log)

	if len(research.Facts) == 0 {
		r.skip(types.AgentWriter, MsgNoFacts)
		r.skip(types.AgentEditor, MsgNoArticle)
		return types.RunPartial
	}

	started = r.begin(types.AgentWriter)
	var article *types.WriterResult
	err = guard(func() (err error) {
		article, err = r.o.writer.Draft(ctx, draft.Input{
			Topic:   req.Topic,
			Facts:   research.Facts,
			Sources: research.Sources,
			Tone:    req.Tone,
		})
		return err
	})
	if err == nil && (article == nil || strings.TrimSpace(article.Article) == "") {
		err = errors.New("writer returned an empty article")
	}
	if err != nil {
		r.finish(types.AgentWriter, types.StepFailed, started, err.Error(), log)
		r.skip(types.AgentEditor, MsgNoArticle)
		return types.RunPartial
	}
	res.Article = article
	r.finish(types.AgentWriter, types.StepCompleted, started, "", log)

	started = r.begin(types.AgentEditor)
	var edited *types.EditorResult
	err = guard(func() (err error) {
		edited, err = r.o.editor.Edit(ctx, edit.Input{
			Title:     article.Title,
			Article:   article.Article,
			Topic:     req.Topic,
			Tone:      req.Tone,
			Citations: article.Citations,
		})
		return err
	})
	if err == nil && edited == nil {
		err = errors.New("editor returned no result")
	}
	if err != nil {
		r.finish(types.AgentEditor, types.StepFailed, started, err.Error(), log)
		return types.RunPartial
	}
	res.Edited = edited
	r.finish(types.AgentEditor, types.StepCompleted, started, "", log)
	return types.RunCompleted
}

// begin moves a pending step to running and returns its start time.
func (r *run) begin(agent types.Agent) time.Time {
	r.transition(agent, types.StepRunning, 0, "")
	return r.o.clock()
}

// finish moves a running step to a terminal status.
func (r *run) finish(agent types.Agent, to types.StepStatus, started time.Time, msg string, log *zap.Logger) {
	d := r.o.clock().Sub(started)
	r.transition(agent, to, d.Milliseconds(), msg)

	fields := []zap.Field{zap.String("step", string(agent)), zap.String("status", string(to)), zap.Duration("duration", d)}
	if to == types.StepFailed {
		log.Warn("pipeline step failed", append(fields, zap.String("error", msg))...)
		return
	}
	log.Debug("pipeline step finished", fields...)
}

// skip moves a pending step straight to skipped.
func (r *run) skip(agent types.Agent, msg string) {
	r.transition(agent, types.StepSkipped, 0, msg)
}

// transition is the only place step records change. Terminal steps are
// never moved again.
func (r *run) transition(agent types.Agent, to types.StepStatus, durationMs int64, msg string) {
	step := r.result.Step(agent)
	if step == nil || step.Status.Terminal() {
		return
	}
	step.Status = to
	step.DurationMs = durationMs
	step.Error = msg
}

// guard runs fn and converts a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return fn()
}
