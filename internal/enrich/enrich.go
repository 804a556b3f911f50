// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich annotates sampled documents with optional
// retraction/citation signals from an external collaborator.
// Implements: prd002-classification (R5: enrichment boundary).
//
// Enrichment is strictly best-effort: a missing collaborator or a failed
// lookup leaves the document untouched and classification falls back to
// its keyword/topic-only baseline.
package enrich

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/gap-engine/pkg/types"
)

// Enricher looks up retraction and citation-velocity signals for one
// document identifier and its reference list.
type Enricher interface {
	Lookup(ctx context.Context, id string, referencedIDs []string) (types.EnrichmentSignals, error)
}

// MethodTagger is an optional collaborator supplying domain-vocabulary
// method votes for a batch, keyed by document ID.
type MethodTagger interface {
	MethodSignals(ctx context.Context, docs []types.Document) (map[string]types.MethodSignal, error)
}

// Apply returns a new slice of annotated document copies. Source
// documents are never mutated, so a concurrent reader of the original
// batch observes stable values. A nil enricher returns the input
// unchanged; individual lookup failures are logged to w and skip that
// document.
func Apply(ctx context.Context, e Enricher, docs []types.Document, w io.Writer) []types.Document {
	if e == nil {
		return docs
	}
	if w == nil {
		w = io.Discard
	}

	out := make([]types.Document, len(docs))
	failures := 0
	for i, doc := range docs {
		out[i] = doc

		signals, err := e.Lookup(ctx, doc.ID, doc.ReferencedIDs)
		if err != nil {
			failures++
			continue
		}
		out[i].IsRetracted = signals.IsRetracted
		out[i].CitesRetractedCount = signals.CitesRetractedCount
		out[i].CitationVelocitySpike = signals.CitationVelocitySpike
	}

	if failures > 0 {
		fmt.Fprintf(w, "warning: enrichment failed for %d of %d documents\n", failures, len(docs))
	}
	return out
}

// Fixture serves enrichment signals from a local YAML map of document ID
// to signals, for offline runs and tests.
type Fixture struct {
	signals map[string]types.EnrichmentSignals
}

// LoadFixture reads a signal map from path.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading enrichment fixture: %w", err)
	}
	var signals map[string]types.EnrichmentSignals
	if err := yaml.Unmarshal(data, &signals); err != nil {
		return nil, fmt.Errorf("parsing enrichment fixture %s: %w", path, err)
	}
	return &Fixture{signals: signals}, nil
}

// NewFixture wraps an in-memory signal map, for tests.
func NewFixture(signals map[string]types.EnrichmentSignals) *Fixture {
	return &Fixture{signals: signals}
}

// Lookup returns the stored signals for id; unknown ids get zero signals.
func (f *Fixture) Lookup(_ context.Context, id string, _ []string) (types.EnrichmentSignals, error) {
	return f.signals[id], nil
}
