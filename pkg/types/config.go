// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the per-request HTTP timeout. A hung source degrades the
	// batch but never stalls the shuffle.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "gap-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SourceConfig holds per-source settings for one adapter. Each source
// owns its own rate limiter and cache TTL; concurrency is across
// sources, never within one source's request stream.
type SourceConfig struct {
	// Name identifies the adapter (e.g. "openalex", "semantic_scholar").
	Name string `json:"name" yaml:"name"`

	// Weight is this source's fraction of the sampler target. Weights
	// across configured sources sum to 1.0.
	Weight float64 `json:"weight" yaml:"weight"`

	// MinInterval is the minimum spacing between consecutive requests to
	// this source.
	MinInterval time.Duration `json:"min_interval" yaml:"min_interval"`

	// CacheTTL is how long cached responses from this source stay fresh.
	// Fast-moving feeds use minutes; slow archival sources can use days.
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// APIKey is an optional per-source credential.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Email is sent to sources with a polite-pool convention (OpenAlex).
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// FixturePath points a fixture source at its document file.
	FixturePath string `json:"fixture_path,omitempty" yaml:"fixture_path,omitempty"`
}

// SamplerConfig holds settings for the sampling stage.
type SamplerConfig struct {
	HTTPConfig `yaml:",inline"`

	// TargetCount is the total number of documents one sample aims for
	// (default 2700).
	TargetCount int `json:"target_count" yaml:"target_count"`

	// Query is the topic query distributed to every source.
	Query string `json:"query" yaml:"query"`

	// Sources lists the configured sources in priority order. The first
	// entry is the minimum-viable, broadest-coverage source and is also
	// the target of fallback queries.
	Sources []SourceConfig `json:"sources" yaml:"sources"`

	// FallbackQueries are keyword queries run against the first source
	// when the merged batch falls short of TargetCount.
	FallbackQueries []string `json:"fallback_queries" yaml:"fallback_queries"`

	// BatchCacheTTL is how long a merged batch is reused before a fresh
	// sample is taken (default 1h).
	BatchCacheTTL time.Duration `json:"batch_cache_ttl" yaml:"batch_cache_ttl"`

	// CacheDir is the directory holding the SQLite response cache.
	CacheDir string `json:"cache_dir" yaml:"cache_dir"`
}

// ShuffleConfig holds settings for the shuffle stage.
type ShuffleConfig struct {
	// Interval is the minimum number of ticks between shuffles (default 50).
	Interval int64 `json:"interval" yaml:"interval"`

	// MinDocuments is the absolute floor below which a shuffle aborts
	// rather than publishing a degenerate snapshot (default 27, never
	// configured lower than CellCount).
	MinDocuments int `json:"min_documents" yaml:"min_documents"`

	// CubeDir is the directory holding generation snapshot files.
	CubeDir string `json:"cube_dir" yaml:"cube_dir"`

	// TopDocuments is the default number of documents returned per cell
	// description (default 5).
	TopDocuments int `json:"top_documents" yaml:"top_documents"`
}

// EngineConfig groups all stage configurations.
type EngineConfig struct {
	Sampler SamplerConfig `json:"sampler" yaml:"sampler"`
	Shuffle ShuffleConfig `json:"shuffle" yaml:"shuffle"`
}
