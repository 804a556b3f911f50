// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source defines the adapter contract for external bibliographic
// providers and the shared rate-limit and cache utilities every adapter
// uses. Implements: prd001-sampling (R2: source boundary);
//
//	docs/ARCHITECTURE § Sources.
//
// Each adapter serializes its own requests through a per-source
// RateLimiter and caches responses with a source-appropriate TTL. The
// sampler treats all adapters polymorphically; nothing outside this
// package inspects a source's wire format.
package source

import (
	"context"
	"strings"

	"github.com/pdiddy/gap-engine/pkg/types"
)

// Adapter searches a single bibliographic or code source and returns
// normalized documents. Implementations enforce their own minimum
// inter-request interval and response caching.
type Adapter interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]types.Document, error)
}

// NormalizeDOI lowercases a DOI and strips resolver prefixes so the same
// work sampled from two sources dedups to one identifier.
func NormalizeDOI(doi string) string {
	s := strings.TrimSpace(strings.ToLower(doi))
	for _, prefix := range []string{"https://doi.org/", "http://doi.org/", "doi.org/", "doi:"} {
		s = strings.TrimPrefix(s, prefix)
	}
	return s
}

// DocumentID builds the dedup identifier for a document: the normalized
// DOI when one is known, otherwise a source-qualified native identifier.
func DocumentID(doi, sourceName, nativeID string) string {
	if d := NormalizeDOI(doi); d != "" {
		return d
	}
	return sourceName + ":" + nativeID
}
