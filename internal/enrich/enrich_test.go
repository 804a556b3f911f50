// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/gap-engine/pkg/types"
)

type failingEnricher struct {
	failIDs map[string]bool
}

func (f *failingEnricher) Lookup(_ context.Context, id string, _ []string) (types.EnrichmentSignals, error) {
	if f.failIDs[id] {
		return types.EnrichmentSignals{}, fmt.Errorf("lookup %s: unavailable", id)
	}
	return types.EnrichmentSignals{IsRetracted: true}, nil
}

func TestApplyNilEnricherPassthrough(t *testing.T) {
	docs := []types.Document{{ID: "10.1/a"}, {ID: "10.1/b"}}
	out := Apply(context.Background(), nil, docs, &bytes.Buffer{})
	if len(out) != 2 || out[0].ID != "10.1/a" {
		t.Errorf("Apply(nil enricher) = %+v, want input unchanged", out)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	docs := []types.Document{{ID: "10.1/a"}}
	fixture := NewFixture(map[string]types.EnrichmentSignals{
		"10.1/a": {IsRetracted: true, CitesRetractedCount: 2, CitationVelocitySpike: true},
	})

	out := Apply(context.Background(), fixture, docs, &bytes.Buffer{})

	if docs[0].IsRetracted || docs[0].CitesRetractedCount != 0 {
		t.Errorf("input document mutated: %+v", docs[0])
	}
	if !out[0].IsRetracted || out[0].CitesRetractedCount != 2 || !out[0].CitationVelocitySpike {
		t.Errorf("output missing signals: %+v", out[0])
	}
}

func TestApplyFailuresSkipDocument(t *testing.T) {
	docs := []types.Document{{ID: "10.1/ok"}, {ID: "10.1/bad"}, {ID: "10.1/worse"}}
	e := &failingEnricher{failIDs: map[string]bool{"10.1/bad": true, "10.1/worse": true}}

	var log bytes.Buffer
	out := Apply(context.Background(), e, docs, &log)

	if !out[0].IsRetracted {
		t.Error("successful lookup not applied")
	}
	if out[1].IsRetracted || out[2].IsRetracted {
		t.Error("failed lookups must leave documents untouched")
	}
	if !strings.Contains(log.String(), "failed for 2 of 3") {
		t.Errorf("log = %q, want a single summary warning", log.String())
	}
}

func TestFixtureUnknownIDZeroSignals(t *testing.T) {
	fixture := NewFixture(map[string]types.EnrichmentSignals{})
	signals, err := fixture.Lookup(context.Background(), "10.1/none", nil)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if signals != (types.EnrichmentSignals{}) {
		t.Errorf("Lookup() = %+v, want zero signals", signals)
	}
}

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signals.yaml")
	content := `
"10.1/a":
  is_retracted: true
  cites_retracted_count: 1
"10.1/b":
  citation_velocity_spike: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fixture, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("LoadFixture() error = %v", err)
	}

	a, _ := fixture.Lookup(context.Background(), "10.1/a", nil)
	if !a.IsRetracted || a.CitesRetractedCount != 1 {
		t.Errorf("signals for 10.1/a = %+v", a)
	}
	b, _ := fixture.Lookup(context.Background(), "10.1/b", nil)
	if !b.CitationVelocitySpike {
		t.Errorf("signals for 10.1/b = %+v", b)
	}
}

func TestLoadFixtureMissingFile(t *testing.T) {
	if _, err := LoadFixture(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("LoadFixture() error = nil, want read error")
	}
}
