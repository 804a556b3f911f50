// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/gap-engine/internal/httputil"
	"github.com/pdiddy/gap-engine/internal/sample"
	"github.com/pdiddy/gap-engine/internal/secrets"
	"github.com/pdiddy/gap-engine/internal/source"
	"github.com/pdiddy/gap-engine/pkg/types"
)

// defaultSources is the weight table used when the config file defines
// none. OpenAlex leads as the broadest-coverage minimum-viable source.
func defaultSources() []types.SourceConfig {
	return []types.SourceConfig{
		{
			Name:        "openalex",
			Weight:      0.6,
			MinInterval: 1 * time.Second,
			CacheTTL:    24 * time.Hour,
		},
		{
			Name:        "semantic_scholar",
			Weight:      0.4,
			MinInterval: 3 * time.Second,
			CacheTTL:    24 * time.Hour,
		},
	}
}

func samplerConfig() (types.SamplerConfig, error) {
	cfg := types.SamplerConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("sampler.timeout"),
			UserAgent: viper.GetString("sampler.user_agent"),
		},
		TargetCount:     viper.GetInt("sampler.target_count"),
		Query:           viper.GetString("sampler.query"),
		FallbackQueries: viper.GetStringSlice("sampler.fallback_queries"),
		BatchCacheTTL:   viper.GetDuration("sampler.batch_cache_ttl"),
		CacheDir:        viper.GetString("sampler.cache_dir"),
	}

	if cfg.UserAgent == "" {
		cfg.UserAgent = "gap-engine/" + version
	}
	if cfg.TargetCount <= 0 {
		cfg.TargetCount = 2700
	}
	if cfg.Query == "" {
		cfg.Query = "interdisciplinary research"
	}
	if len(cfg.FallbackQueries) == 0 {
		cfg.FallbackQueries = []string{
			"novel scientific methods",
			"unexpected experimental results",
			"cross-domain analysis",
		}
	}
	if cfg.BatchCacheTTL <= 0 {
		cfg.BatchCacheTTL = time.Hour
	}
	if cfg.CacheDir == "" {
		cfg.CacheDir = "cache"
	}

	if viper.IsSet("sampler.sources") {
		if err := viper.UnmarshalKey("sampler.sources", &cfg.Sources); err != nil {
			return cfg, fmt.Errorf("parsing sampler.sources: %w", err)
		}
	}
	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultSources()
	}

	// Fill credentials from .secrets/ when the config leaves them empty.
	for i := range cfg.Sources {
		src := &cfg.Sources[i]
		switch src.Name {
		case "openalex":
			src.Email = secretDefault(secrets.KeyOpenAlexEmail, src.Email)
		case "semantic_scholar":
			src.APIKey = secretDefault(secrets.KeySemanticScholar, src.APIKey)
		}
	}
	return cfg, nil
}

func shuffleConfig() types.ShuffleConfig {
	cfg := types.ShuffleConfig{
		Interval:     viper.GetInt64("shuffle.interval"),
		MinDocuments: viper.GetInt("shuffle.min_documents"),
		CubeDir:      viper.GetString("shuffle.cube_dir"),
		TopDocuments: viper.GetInt("shuffle.top_documents"),
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 50
	}
	if cfg.MinDocuments <= 0 {
		cfg.MinDocuments = types.CellCount
	}
	if cfg.CubeDir == "" {
		cfg.CubeDir = "cube"
	}
	if cfg.TopDocuments <= 0 {
		cfg.TopDocuments = 5
	}
	return cfg
}

// buildSampler assembles the adapters the config names. A cache open
// failure disables caching but never aborts; an unknown source name is
// skipped with a warning.
func buildSampler(cfg types.SamplerConfig, w io.Writer) (*sample.Sampler, func(), error) {
	cache, err := source.OpenCache(cfg.CacheDir, w)
	if err != nil {
		fmt.Fprintf(w, "warning: cache unavailable, continuing without it: %v\n", err)
		cache = nil
	}
	closeCache := func() {
		if cache != nil {
			cache.Close()
		}
	}

	client := httputil.NewClient(cfg.HTTPConfig)

	var sources []sample.Weighted
	for _, srcCfg := range cfg.Sources {
		var adapter source.Adapter
		switch {
		case srcCfg.Name == "openalex":
			adapter = source.NewOpenAlex(client, cache, srcCfg, cfg.HTTPConfig, w)
		case srcCfg.Name == "semantic_scholar":
			adapter = source.NewSemanticScholar(client, cache, srcCfg, cfg.HTTPConfig, w)
		case srcCfg.FixturePath != "":
			fixture, err := source.LoadFixture(srcCfg.Name, srcCfg.FixturePath)
			if err != nil {
				fmt.Fprintf(w, "warning: skipping fixture source %s: %v\n", srcCfg.Name, err)
				continue
			}
			adapter = fixture
		default:
			fmt.Fprintf(w, "warning: unknown source %q skipped\n", srcCfg.Name)
			continue
		}
		sources = append(sources, sample.Weighted{Adapter: adapter, Weight: srcCfg.Weight})
	}

	if len(sources) == 0 {
		closeCache()
		return nil, nil, fmt.Errorf("no usable sources configured")
	}
	return sample.New(sources, cache, cfg), closeCache, nil
}

func warnWriter() io.Writer { return os.Stderr }
