// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/gap-engine/pkg/types"
)

// Fixture serves documents from a local YAML file. It exists for offline
// runs and tests; it honors the same contract as the network adapters
// but never touches the network.
type Fixture struct {
	name string
	docs []types.Document
}

// fixtureFile is the on-disk shape: a list of documents under a top key.
type fixtureFile struct {
	Documents []types.Document `yaml:"documents"`
}

// LoadFixture reads documents from path. The adapter reports name as its
// source, overriding whatever SourceName the file carries.
func LoadFixture(name, path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fixture file: %w", err)
	}

	var ff fixtureFile
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("parsing fixture file %s: %w", path, err)
	}

	docs := make([]types.Document, len(ff.Documents))
	for i, doc := range ff.Documents {
		doc.SourceName = name
		if doc.ID == "" {
			doc.ID = fmt.Sprintf("%s:%d", name, i)
		}
		docs[i] = doc
	}
	return &Fixture{name: name, docs: docs}, nil
}

// NewFixture wraps an in-memory document list, for tests.
func NewFixture(name string, docs []types.Document) *Fixture {
	return &Fixture{name: name, docs: docs}
}

// Name returns the adapter identifier.
func (f *Fixture) Name() string { return f.name }

// Search returns up to limit documents whose title or abstract contains
// any query token (case-insensitive). An empty query matches everything.
func (f *Fixture) Search(_ context.Context, query string, limit int) ([]types.Document, error) {
	tokens := strings.Fields(strings.ToLower(query))

	var out []types.Document
	for _, doc := range f.docs {
		if limit > 0 && len(out) >= limit {
			break
		}
		if matchesAny(doc, tokens) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func matchesAny(doc types.Document, tokens []string) bool {
	if len(tokens) == 0 {
		return true
	}
	text := strings.ToLower(doc.Title + " " + doc.Abstract)
	for _, tok := range tokens {
		if strings.Contains(text, tok) {
			return true
		}
	}
	return false
}
