package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/article-engine/internal/extract"
	"github.com/pdiddy/article-engine/internal/fetch"
	"github.com/pdiddy/article-engine/internal/research"
	"github.com/pdiddy/article-engine/internal/search"
	"github.com/pdiddy/article-engine/pkg/types"
)

// setDefaults registers every configuration key so that environment
// variables (ARTICLE_ENGINE_SEARCH_REGION, ...) reach Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("search.timeout", 15*time.Second)
	v.SetDefault("search.user_agent", "")
	v.SetDefault("search.max_results", search.DefaultMaxResults)
	v.SetDefault("search.region", search.DefaultRegion)
	v.SetDefault("search.providers", search.DefaultProviders)
	v.SetDefault("search.block_threshold", search.DefaultBlockThreshold)

	v.SetDefault("fetch.timeout", fetch.DefaultTimeout)
	v.SetDefault("fetch.max_length", fetch.DefaultMaxLength)
	v.SetDefault("fetch.concurrency", fetch.DefaultConcurrency)

	v.SetDefault("research.target_fact_count", extract.DefaultTargetCount)
	v.SetDefault("research.max_pages_to_fetch", research.DefaultMaxPagesToFetch)
	v.SetDefault("research.supplementary_sources", research.DefaultSupplementarySources)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// loadConfig decodes the merged defaults, config file, environment and
// bound flags.
func loadConfig() (types.EngineConfig, error) {
	var cfg types.EngineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}
