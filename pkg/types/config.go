package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout bounds a single provider request.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent identifies the engine to search providers and fetched sites
	// (e.g. "article-engine/0.1 (+mailto:ops@example.org)").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchConfig holds settings for the search provider chain.
type SearchConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxResults is the number of results requested per query (default 10).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// Region is the provider locale, e.g. "us-en" (default). The language
	// part selects the Wikipedia edition.
	Region string `json:"region" yaml:"region" mapstructure:"region"`

	// Providers lists provider names in fallback order. Empty means the
	// default order: duckduckgo, duckduckgo-lite, wikipedia.
	Providers []string `json:"providers,omitempty" yaml:"providers,omitempty" mapstructure:"providers"`

	// BlockThreshold is the minimum response body size, in bytes, below
	// which an HTML provider is considered blocked (default 500).
	BlockThreshold int `json:"block_threshold" yaml:"block_threshold" mapstructure:"block_threshold"`
}

// FetchConfig holds settings for the content fetcher.
type FetchConfig struct {
	// Timeout is the hard wall-clock limit for one page fetch (default 8s).
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// MaxLength truncates extracted page text, in characters (default 5000).
	MaxLength int `json:"max_length" yaml:"max_length" mapstructure:"max_length"`

	// Concurrency caps simultaneous page fetches (default 5).
	Concurrency int `json:"concurrency" yaml:"concurrency" mapstructure:"concurrency"`
}

// ResearchConfig holds settings for the research stage.
type ResearchConfig struct {
	// TargetFactCount is the maximum number of facts returned (default 10).
	TargetFactCount int `json:"target_fact_count" yaml:"target_fact_count" mapstructure:"target_fact_count"`

	// MaxPagesToFetch is the number of top results whose pages are fetched (default 5).
	MaxPagesToFetch int `json:"max_pages_to_fetch" yaml:"max_pages_to_fetch" mapstructure:"max_pages_to_fetch"`

	// SupplementarySources is the number of non-contributing URLs appended
	// to the source list (default 3).
	SupplementarySources int `json:"supplementary_sources" yaml:"supplementary_sources" mapstructure:"supplementary_sources"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	Addr            string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	// Level is one of debug, info, warn, error (default info).
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is "console" (default) or "json".
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// EngineConfig groups every section of the configuration file.
type EngineConfig struct {
	Search   SearchConfig   `json:"search" yaml:"search" mapstructure:"search"`
	Fetch    FetchConfig    `json:"fetch" yaml:"fetch" mapstructure:"fetch"`
	Research ResearchConfig `json:"research" yaml:"research" mapstructure:"research"`
	Server   ServerConfig   `json:"server" yaml:"server" mapstructure:"server"`
	Log      LogConfig      `json:"log" yaml:"log" mapstructure:"log"`
}
