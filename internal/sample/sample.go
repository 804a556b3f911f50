// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sample orchestrates the configured source adapters against a
// weighted target distribution and produces one merged, deduplicated
// batch. Implements: prd001-sampling (R1-R5);
//
//	docs/ARCHITECTURE § Sampler.
//
// This is the pipeline's primary graceful-degradation point: a failed or
// short source reduces the batch, never aborts it.
package sample

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/pdiddy/gap-engine/internal/source"
	"github.com/pdiddy/gap-engine/pkg/types"
)

// batchCacheSource is the pseudo-source name merged batches are cached
// under, shared with per-source response entries in the same database.
const batchCacheSource = "_batch"

const defaultTargetCount = 2700

// Weighted pairs an adapter with its fraction of the sampler target.
// Order carries priority: the first entry is the minimum-viable source
// and is attempted first and used for fallback queries.
type Weighted struct {
	Adapter source.Adapter
	Weight  float64
}

// Batch is one merged sample across all sources.
type Batch struct {
	// Documents holds the deduplicated merged documents.
	Documents []types.Document `json:"documents"`

	// SourceBreakdown maps source name to its post-dedup contribution.
	SourceBreakdown map[string]int `json:"source_breakdown"`

	// FromCache reports whether this batch was served from the batch
	// cache rather than freshly sampled.
	FromCache bool `json:"from_cache"`
}

// Sampler fans the topic query out to its sources and merges the
// results. It holds no per-source state beyond the adapter handles; rate
// limiting lives inside each adapter.
type Sampler struct {
	sources []Weighted
	cache   *source.Cache
	cfg     types.SamplerConfig
}

// New builds a Sampler. cache may be nil to disable batch caching.
func New(sources []Weighted, cache *source.Cache, cfg types.SamplerConfig) *Sampler {
	return &Sampler{sources: sources, cache: cache, cfg: cfg}
}

// Sample produces one merged batch. Sources are fetched concurrently but
// merged in priority order, so dedup conflicts resolve toward the
// higher-priority source. Per-source failures are logged to w and
// contribute zero documents. If the merged total falls short of the
// target, fallback keyword queries run against the first source until
// the target is reached or the queries are exhausted.
func (s *Sampler) Sample(ctx context.Context, w io.Writer) (Batch, error) {
	if w == nil {
		w = io.Discard
	}
	if len(s.sources) == 0 {
		return Batch{}, fmt.Errorf("no sources configured")
	}

	target := s.cfg.TargetCount
	if target <= 0 {
		target = defaultTargetCount
	}

	cacheKey := fmt.Sprintf("%s|%d", s.cfg.Query, target)
	if cached, ok := s.lookupBatch(cacheKey); ok {
		fmt.Fprintf(w, "sample: reusing cached batch (%d documents)\n", len(cached.Documents))
		return cached, nil
	}

	// Fan out to all sources; each slot collects independently so a slow
	// or failed source never blocks the others.
	results := make([][]types.Document, len(s.sources))
	errs := make([]error, len(s.sources))
	var wg sync.WaitGroup
	for i, src := range s.sources {
		perSource := int(math.Ceil(src.Weight * float64(target)))
		if perSource == 0 {
			continue
		}
		wg.Add(1)
		go func(i int, src Weighted, limit int) {
			defer wg.Done()
			results[i], errs[i] = src.Adapter.Search(ctx, s.cfg.Query, limit)
		}(i, src, perSource)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			fmt.Fprintf(w, "warning: source %s failed: %v\n", s.sources[i].Adapter.Name(), err)
		}
	}

	// Merge in priority order, dropping later duplicates silently.
	seen := make(map[string]bool)
	var merged []types.Document
	for _, docs := range results {
		merged = appendDeduped(merged, docs, seen)
	}

	// Fallback keyword queries against the first (most general) source.
	for _, fallback := range s.cfg.FallbackQueries {
		if len(merged) >= target {
			break
		}
		deficit := target - len(merged)
		docs, err := s.sources[0].Adapter.Search(ctx, fallback, deficit)
		if err != nil {
			fmt.Fprintf(w, "warning: fallback query %q failed: %v\n", fallback, err)
			continue
		}
		merged = appendDeduped(merged, docs, seen)
	}

	if len(merged) < target {
		fmt.Fprintf(w, "sample: %d of %d target documents after all sources and fallbacks\n",
			len(merged), target)
	}

	batch := Batch{
		Documents:       merged,
		SourceBreakdown: breakdown(merged),
	}
	s.storeBatch(cacheKey, batch)
	return batch, nil
}

// appendDeduped merges docs into acc keyed by normalized identifier.
func appendDeduped(acc, docs []types.Document, seen map[string]bool) []types.Document {
	for _, doc := range docs {
		key := source.NormalizeDOI(doc.ID)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		acc = append(acc, doc)
	}
	return acc
}

func breakdown(docs []types.Document) map[string]int {
	counts := make(map[string]int)
	for _, doc := range docs {
		name := doc.SourceName
		if name == "" {
			name = "unknown"
		}
		counts[name]++
	}
	return counts
}

func (s *Sampler) lookupBatch(key string) (Batch, bool) {
	if s.cache == nil {
		return Batch{}, false
	}
	payload, ok := s.cache.Get(batchCacheSource, key, s.cfg.BatchCacheTTL)
	if !ok {
		return Batch{}, false
	}
	var batch Batch
	if err := json.Unmarshal(payload, &batch); err != nil {
		return Batch{}, false
	}
	batch.FromCache = true
	return batch, true
}

func (s *Sampler) storeBatch(key string, batch Batch) {
	if s.cache == nil || len(batch.Documents) == 0 {
		return
	}
	if payload, err := json.Marshal(batch); err == nil {
		s.cache.Put(batchCacheSource, key, payload)
	}
}

// FormatTable writes a source-breakdown summary to w.
func FormatTable(batch Batch, w io.Writer) {
	names := make([]string, 0, len(batch.SourceBreakdown))
	for name := range batch.SourceBreakdown {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "%-20s  %s\n", "Source", "Documents")
	fmt.Fprintln(w, strings.Repeat("-", 32))
	for _, name := range names {
		fmt.Fprintf(w, "%-20s  %d\n", name, batch.SourceBreakdown[name])
	}
	fmt.Fprintf(w, "\n%d documents total", len(batch.Documents))
	if batch.FromCache {
		fmt.Fprint(w, " (from cache)")
	}
	fmt.Fprintln(w)
}
