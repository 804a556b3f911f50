// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pdiddy/gap-engine/internal/httputil"
	"github.com/pdiddy/gap-engine/pkg/types"
)

// semanticAPIBase is the Semantic Scholar paper search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search"

const (
	semanticFields   = "title,abstract,year,citationCount,influentialCitationCount,externalIds,s2FieldsOfStudy"
	semanticPageSize = 100
)

// SemanticScholar queries the Semantic Scholar Graph API. It contributes
// influential-citation counts no other source reports.
type SemanticScholar struct {
	client  *http.Client
	limiter *RateLimiter
	cache   *Cache
	cfg     types.SourceConfig
	http    types.HTTPConfig
	w       io.Writer
}

// NewSemanticScholar builds the adapter with its own rate limiter.
// cache may be nil to disable response caching.
func NewSemanticScholar(client *http.Client, cache *Cache, cfg types.SourceConfig, httpCfg types.HTTPConfig, w io.Writer) *SemanticScholar {
	if w == nil {
		w = io.Discard
	}
	return &SemanticScholar{
		client:  client,
		limiter: NewRateLimiter(cfg.MinInterval),
		cache:   cache,
		cfg:     cfg,
		http:    httpCfg,
		w:       w,
	}
}

// Name returns the adapter identifier.
func (s *SemanticScholar) Name() string { return "semantic_scholar" }

// Search queries the Semantic Scholar API and returns normalized
// documents. The API caps one page at 100 results; larger limits
// paginate through the offset parameter.
func (s *SemanticScholar) Search(ctx context.Context, query string, limit int) ([]types.Document, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty Semantic Scholar query")
	}
	if limit <= 0 {
		limit = semanticPageSize
	}

	cacheKey := fmt.Sprintf("%s|%d", query, limit)
	if s.cache != nil {
		if payload, ok := s.cache.Get(s.Name(), cacheKey, s.cfg.CacheTTL); ok {
			var docs []types.Document
			if err := json.Unmarshal(payload, &docs); err == nil {
				return docs, nil
			}
			fmt.Fprintf(s.w, "warning: discarding corrupt semantic_scholar cache entry for %q\n", query)
		}
	}

	var docs []types.Document
	for offset := 0; len(docs) < limit; {
		pageLimit := limit - len(docs)
		if pageLimit > semanticPageSize {
			pageLimit = semanticPageSize
		}

		papers, err := s.fetchPage(ctx, query, offset, pageLimit)
		if err != nil {
			return nil, err
		}
		if len(papers) == 0 {
			break
		}

		for _, paper := range papers {
			docs = append(docs, paper.toDocument())
		}
		offset += len(papers)
		if len(papers) < pageLimit {
			break
		}
	}

	if s.cache != nil && len(docs) > 0 {
		if payload, err := json.Marshal(docs); err == nil {
			s.cache.Put(s.Name(), cacheKey, payload)
		}
	}
	return docs, nil
}

func (s *SemanticScholar) fetchPage(ctx context.Context, query string, offset, limit int) ([]semanticPaper, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"query":  {query},
		"offset": {fmt.Sprintf("%d", offset)},
		"limit":  {fmt.Sprintf("%d", limit)},
		"fields": {semanticFields},
	}

	reqURL := semanticAPIBase + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.http.UserAgent)
	if s.cfg.APIKey != "" {
		req.Header.Set("x-api-key", s.cfg.APIKey)
	}

	resp, err := httputil.DoWithRetry(ctx, s.client, req, 0, s.w)
	if err != nil {
		return nil, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return sr.Data, nil
}

func (paper semanticPaper) toDocument() types.Document {
	doc := types.Document{
		ID:                       DocumentID(paper.ExternalIDs.DOI, "s2", paper.PaperID),
		Title:                    paper.Title,
		Abstract:                 paper.Abstract,
		Year:                     paper.Year,
		CitationCount:            paper.CitationCount,
		InfluentialCitationCount: paper.InfluentialCitationCount,
		SourceName:               "semantic_scholar",
	}

	seen := make(map[string]bool)
	for _, field := range paper.S2FieldsOfStudy {
		tag := strings.ToLower(field.Category)
		if tag != "" && !seen[tag] {
			seen[tag] = true
			doc.ConceptTags = append(doc.ConceptTags, tag)
		}
	}
	if len(doc.ConceptTags) > 0 {
		doc.PrimaryTopic = types.PrimaryTopic{Field: doc.ConceptTags[0]}
	}
	return doc
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total  int             `json:"total"`
	Offset int             `json:"offset"`
	Data   []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID                  string              `json:"paperId"`
	Title                    string              `json:"title"`
	Abstract                 string              `json:"abstract"`
	Year                     int                 `json:"year"`
	CitationCount            int                 `json:"citationCount"`
	InfluentialCitationCount int                 `json:"influentialCitationCount"`
	ExternalIDs              semanticExternalIDs `json:"externalIds"`
	S2FieldsOfStudy          []semanticField     `json:"s2FieldsOfStudy"`
}

type semanticExternalIDs struct {
	DOI      string `json:"DOI"`
	ArXiv    string `json:"ArXiv"`
	CorpusID int    `json:"CorpusId"`
}

type semanticField struct {
	Category string `json:"category"`
	Source   string `json:"source"`
}
