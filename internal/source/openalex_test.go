// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/gap-engine/pkg/types"
)

const openAlexWorkJSON = `{
	"id": "https://openalex.org/W2741809807",
	"title": "Anomalous thermal transport in layered materials",
	"doi": "https://doi.org/10.1234/ABCD.5",
	"publication_year": 2024,
	"cited_by_count": 87,
	"concepts": [
		{"display_name": "Materials Science", "score": 0.8},
		{"display_name": "Thermal Conduction", "score": 0.6}
	],
	"primary_topic": {
		"display_name": "Thermal transport",
		"field": {"display_name": "Materials Science"},
		"subfield": {"display_name": "Condensed Matter Physics"}
	},
	"referenced_works": ["https://openalex.org/W111", "https://openalex.org/W222"],
	"abstract_inverted_index": {"Heat": [0], "flows": [1], "strangely": [2]}
}`

func openAlexTestServer(t *testing.T, handler http.HandlerFunc) *OpenAlex {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	saved := openAlexSearchBase
	openAlexSearchBase = ts.URL
	t.Cleanup(func() { openAlexSearchBase = saved })

	cfg := types.SourceConfig{Name: "openalex", CacheTTL: time.Hour}
	httpCfg := types.HTTPConfig{Timeout: 5 * time.Second, UserAgent: "test/0.1"}
	return NewOpenAlex(ts.Client(), nil, cfg, httpCfg, &bytes.Buffer{})
}

func TestOpenAlexSearchNormalizes(t *testing.T) {
	adapter := openAlexTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("search"); got != "thermal transport" {
			t.Errorf("search param = %q", got)
		}
		fmt.Fprintf(w, `{"meta":{"count":1},"results":[%s]}`, openAlexWorkJSON)
	})

	docs, err := adapter.Search(context.Background(), "thermal transport", 10)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("len(docs) = %d, want 1", len(docs))
	}

	doc := docs[0]
	if doc.ID != "10.1234/abcd.5" {
		t.Errorf("ID = %q, want normalized lowercase DOI", doc.ID)
	}
	if doc.Abstract != "Heat flows strangely" {
		t.Errorf("Abstract = %q, inverted index not reconstructed", doc.Abstract)
	}
	if doc.Year != 2024 || doc.CitationCount != 87 {
		t.Errorf("Year/CitationCount = %d/%d", doc.Year, doc.CitationCount)
	}
	if len(doc.ConceptTags) != 2 || doc.ConceptTags[0] != "materials science" {
		t.Errorf("ConceptTags = %v", doc.ConceptTags)
	}
	if doc.PrimaryTopic.Field != "Materials Science" || doc.PrimaryTopic.Subfield != "Condensed Matter Physics" {
		t.Errorf("PrimaryTopic = %+v", doc.PrimaryTopic)
	}
	if len(doc.ReferencedIDs) != 2 || doc.ReferencedIDs[0] != "W111" {
		t.Errorf("ReferencedIDs = %v", doc.ReferencedIDs)
	}
	if doc.SourceName != "openalex" {
		t.Errorf("SourceName = %q", doc.SourceName)
	}
}

func TestOpenAlexSearchHTTPError(t *testing.T) {
	adapter := openAlexTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := adapter.Search(context.Background(), "anything", 5)
	if err == nil {
		t.Fatal("Search() error = nil, want HTTP 500 error")
	}
}

func TestOpenAlexSearchUsesCache(t *testing.T) {
	var calls int32
	adapter := openAlexTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		fmt.Fprintf(w, `{"meta":{"count":1},"results":[%s]}`, openAlexWorkJSON)
	})

	cache, err := OpenCache(t.TempDir(), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("OpenCache() error = %v", err)
	}
	defer cache.Close()
	adapter.cache = cache

	for i := 0; i < 3; i++ {
		if _, err := adapter.Search(context.Background(), "thermal", 10); err != nil {
			t.Fatalf("Search() #%d error = %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("server calls = %d, want 1 (later searches cached)", got)
	}
}

func TestOpenAlexEmptyQuery(t *testing.T) {
	adapter := openAlexTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		t.Error("server should not be called for an empty query")
	})

	if _, err := adapter.Search(context.Background(), "  ", 5); err == nil {
		t.Fatal("Search() error = nil, want empty-query error")
	}
}
