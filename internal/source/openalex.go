// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/pdiddy/gap-engine/internal/httputil"
	"github.com/pdiddy/gap-engine/pkg/types"
)

// openAlexSearchBase is the OpenAlex Works search endpoint. Declared as a
// var so tests can substitute an httptest server.
var openAlexSearchBase = "https://api.openalex.org/works"

const openAlexPageSize = 200

// OpenAlex queries the OpenAlex Works API. It is the broadest-coverage
// source and serves as the sampler's minimum-viable source and fallback
// target.
type OpenAlex struct {
	client  *http.Client
	limiter *RateLimiter
	cache   *Cache
	cfg     types.SourceConfig
	http    types.HTTPConfig
	w       io.Writer
}

// NewOpenAlex builds the adapter with its own rate limiter. cache may be
// nil to disable response caching.
func NewOpenAlex(client *http.Client, cache *Cache, cfg types.SourceConfig, httpCfg types.HTTPConfig, w io.Writer) *OpenAlex {
	if w == nil {
		w = io.Discard
	}
	return &OpenAlex{
		client:  client,
		limiter: NewRateLimiter(cfg.MinInterval),
		cache:   cache,
		cfg:     cfg,
		http:    httpCfg,
		w:       w,
	}
}

// Name returns the adapter identifier.
func (s *OpenAlex) Name() string { return "openalex" }

// Search queries the OpenAlex API and returns normalized documents,
// paginating until limit is reached. Responses are cached per
// (query, limit) with the configured TTL.
func (s *OpenAlex) Search(ctx context.Context, query string, limit int) ([]types.Document, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty OpenAlex query")
	}
	if limit <= 0 {
		limit = openAlexPageSize
	}

	cacheKey := fmt.Sprintf("%s|%d", query, limit)
	if s.cache != nil {
		if payload, ok := s.cache.Get(s.Name(), cacheKey, s.cfg.CacheTTL); ok {
			var docs []types.Document
			if err := json.Unmarshal(payload, &docs); err == nil {
				return docs, nil
			}
			fmt.Fprintf(s.w, "warning: discarding corrupt openalex cache entry for %q\n", query)
		}
	}

	var docs []types.Document
	for page := 1; len(docs) < limit; page++ {
		perPage := limit - len(docs)
		if perPage > openAlexPageSize {
			perPage = openAlexPageSize
		}

		works, err := s.fetchPage(ctx, query, page, perPage)
		if err != nil {
			return nil, err
		}
		if len(works) == 0 {
			break
		}

		for _, work := range works {
			docs = append(docs, work.toDocument())
		}
		if len(works) < perPage {
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

// fetchPage requests one result page, waiting on the rate limiter first
// so pagination respects the source's minimum request interval.
func (s *OpenAlex) fetchPage(ctx context.Context, query string, page, perPage int) ([]openAlexWork, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{
		"search":   {query},
		"per_page": {fmt.Sprintf("%d", perPage)},
		"page":     {fmt.Sprintf("%d", page)},
	}
	if s.cfg.Email != "" {
		params.Set("mailto", s.cfg.Email)
	}

	reqURL := openAlexSearchBase + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.http.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, s.client, req, 0, s.w)
	if err != nil {
		return nil, fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var oar openAlexResponse
	if err := json.NewDecoder(resp.Body).Decode(&oar); err != nil {
		return nil, fmt.Errorf("parsing OpenAlex response: %w", err)
	}
	return oar.Results, nil
}

// toDocument maps one OpenAlex work to the normalized shape. OpenAlex is
// DOI-centric, so the dedup ID is the bare lowercase DOI when present.
func (work openAlexWork) toDocument() types.Document {
	doc := types.Document{
		ID:            DocumentID(work.DOI, "openalex", shortOpenAlexID(work.ID)),
		Title:         work.Title,
		Abstract:      reconstructAbstract(work.AbstractInvertedIndex),
		Year:          work.PublicationYear,
		CitationCount: work.CitedByCount,
		SourceName:    "openalex",
	}

	for _, concept := range work.Concepts {
		if concept.DisplayName != "" {
			doc.ConceptTags = append(doc.ConceptTags, strings.ToLower(concept.DisplayName))
		}
	}

	if work.PrimaryTopic.DisplayName != "" || work.PrimaryTopic.Field.DisplayName != "" {
		doc.PrimaryTopic = types.PrimaryTopic{
			Field:    work.PrimaryTopic.Field.DisplayName,
			Subfield: work.PrimaryTopic.Subfield.DisplayName,
		}
	}

	for _, ref := range work.ReferencedWorks {
		doc.ReferencedIDs = append(doc.ReferencedIDs, shortOpenAlexID(ref))
	}
	return doc
}

// shortOpenAlexID strips the https://openalex.org/ prefix from a work URL.
func shortOpenAlexID(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// reconstructAbstract converts OpenAlex's abstract_inverted_index back to
// plain text. The inverted index maps each word to a list of positions
// where that word appears.
func reconstructAbstract(invertedIndex map[string][]int) string {
	if len(invertedIndex) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}
	var pairs []posWord
	for word, positions := range invertedIndex {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	words := make([]string, len(pairs))
	for i, p := range pairs {
		words[i] = p.word
	}
	return strings.Join(words, " ")
}

// OpenAlex API JSON structures.
type openAlexResponse struct {
	Meta    openAlexMeta   `json:"meta"`
	Results []openAlexWork `json:"results"`
}

type openAlexMeta struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
	Page    int `json:"page"`
}

type openAlexWork struct {
	ID                    string             `json:"id"`
	Title                 string             `json:"title"`
	DOI                   string             `json:"doi"`
	PublicationYear       int                `json:"publication_year"`
	CitedByCount          int                `json:"cited_by_count"`
	Concepts              []openAlexConcept  `json:"concepts"`
	PrimaryTopic          openAlexTopic      `json:"primary_topic"`
	ReferencedWorks       []string           `json:"referenced_works"`
	AbstractInvertedIndex map[string][]int   `json:"abstract_inverted_index"`
}

type openAlexConcept struct {
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

type openAlexTopic struct {
	DisplayName string            `json:"display_name"`
	Field       openAlexNamedNode `json:"field"`
	Subfield    openAlexNamedNode `json:"subfield"`
}

type openAlexNamedNode struct {
	DisplayName string `json:"display_name"`
}
