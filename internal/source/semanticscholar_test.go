// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pdiddy/gap-engine/pkg/types"
)

const semanticPaperJSON = `{
	"paperId": "abc123",
	"title": "Unexpected protein folding pathways",
	"abstract": "We report results that contradict the standard model.",
	"year": 2023,
	"citationCount": 140,
	"influentialCitationCount": 40,
	"externalIds": {"DOI": "10.5555/FOLD.1"},
	"s2FieldsOfStudy": [
		{"category": "Biology", "source": "s2-fos-model"},
		{"category": "Biology", "source": "external"},
		{"category": "Chemistry", "source": "s2-fos-model"}
	]
}`

func semanticTestServer(t *testing.T, handler http.HandlerFunc) *SemanticScholar {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	saved := semanticAPIBase
	semanticAPIBase = ts.URL
	t.Cleanup(func() { semanticAPIBase = saved })

	cfg := types.SourceConfig{Name: "semantic_scholar", CacheTTL: time.Hour, APIKey: "test-key"}
	httpCfg := types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test/0.1"}
	return NewSemanticScholar(ts.Client(), nil, cfg, httpCfg, &bytes.Buffer{})
}

func TestSemanticScholarSearchNormalizes(t *testing.T) {
	adapter := semanticTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("x-api-key"); got != "test-key" {
			t.Errorf("x-api-key = %q", got)
		}
		fmt.Fprintf(w, `{"total":1,"offset":0,"data":[%s]}`, semanticPaperJSON)
	})

	docs, err := adapter.Search(context.Background(), "protein folding", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("len(docs) = %d, want 1", len(docs))
	}

	doc := docs[0]
	if doc.ID != "10.5555/fold.1" {
		t.Errorf("ID = %q, want normalized DOI", doc.ID)
	}
	if doc.InfluentialCitationCount != 40 {
		t.Errorf("InfluentialCitationCount = %d", doc.InfluentialCitationCount)
	}
	// Duplicate field categories collapse.
	if len(doc.ConceptTags) != 2 || doc.ConceptTags[0] != "biology" || doc.ConceptTags[1] != "chemistry" {
		t.Errorf("ConceptTags = %v", doc.ConceptTags)
	}
	if doc.PrimaryTopic.Field != "biology" {
		t.Errorf("PrimaryTopic.Field = %q", doc.PrimaryTopic.Field)
	}
	if doc.SourceName != "semantic_scholar" {
		t.Errorf("SourceName = %q", doc.SourceName)
	}
}

func TestSemanticScholarFallsBackToPaperID(t *testing.T) {
	adapter := semanticTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"total":1,"offset":0,"data":[{"paperId":"xyz","title":"No DOI here"}]}`)
	})

	docs, err := adapter.Search(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if docs[0].ID != "s2:xyz" {
		t.Errorf("ID = %q, want source-qualified fallback", docs[0].ID)
	}
}

func TestSemanticScholarPaginates(t *testing.T) {
	var offsets []string
	adapter := semanticTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		offsets = append(offsets, r.URL.Query().Get("offset"))
		// Serve one full page, then a short page to stop pagination.
		if r.URL.Query().Get("offset") == "0" {
			fmt.Fprint(w, `{"total":101,"offset":0,"data":[`)
			for i := 0; i < 100; i++ {
				if i > 0 {
					fmt.Fprint(w, ",")
				}
				fmt.Fprintf(w, `{"paperId":"p%d","title":"Paper %d"}`, i, i)
			}
			fmt.Fprint(w, `]}`)
			return
		}
		fmt.Fprint(w, `{"total":101,"offset":100,"data":[{"paperId":"last","title":"Last"}]}`)
	})

	docs, err := adapter.Search(context.Background(), "query", 150)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(docs) != 101 {
		t.Errorf("len(docs) = %d, want 101", len(docs))
	}
	if len(offsets) != 2 || offsets[1] != "100" {
		t.Errorf("offsets = %v, want two pages", offsets)
	}
}
