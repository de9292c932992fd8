package main

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pdiddy/article-engine/internal/draft"
	"github.com/pdiddy/article-engine/internal/edit"
	"github.com/pdiddy/article-engine/internal/fetch"
	"github.com/pdiddy/article-engine/internal/httputil"
	"github.com/pdiddy/article-engine/internal/pipeline"
	"github.com/pdiddy/article-engine/internal/research"
	"github.com/pdiddy/article-engine/internal/search"
	"github.com/pdiddy/article-engine/pkg/types"
)

// engine wires every stage from one configuration.
type engine struct {
	chain        *search.Chain
	research     *research.Stage
	orchestrator *pipeline.Orchestrator
}

// userAgent picks the configured agent, then the secrets override, then a
// descriptive default carrying the contact address.
func userAgent(cfg types.EngineConfig) string {
	if cfg.Search.UserAgent != "" {
		return cfg.Search.UserAgent
	}
	if ua := loadedSecrets.UserAgent(); ua != "" {
		return ua
	}
	return httputil.UserAgent(version, loadedSecrets.ContactEmail())
}

func newEngine(cfg types.EngineConfig, log *zap.Logger) (*engine, error) {
	cfg.Search.UserAgent = userAgent(cfg)

	chain, err := search.New(cfg.Search, &http.Client{Timeout: cfg.Search.Timeout}, log.Named("search"))
	if err != nil {
		return nil, err
	}

	// Per-page deadlines come from the fetcher's context, not the client.
	fetcher := fetch.New(&http.Client{}, cfg.Fetch, cfg.Search.UserAgent, log.Named("fetch"))

	stage := research.New(chain, fetcher, cfg.Research, research.Options{
		MaxResults: cfg.Search.MaxResults,
		MaxLength:  cfg.Fetch.MaxLength,
	}, log.Named("research"))

	orch := pipeline.New(stage, draft.New(nil), edit.New(nil), pipeline.Options{}, log.Named("pipeline"))

	return &engine{chain: chain, research: stage, orchestrator: orch}, nil
}
