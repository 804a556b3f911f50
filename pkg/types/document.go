// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the gap-engine pipeline.
// Implements: prd001-sampling (Document, Batch);
//
//	prd002-classification (Classification, MethodSignal, EnrichmentSignals);
//	prd003-cube (Cell, CubeSnapshot, CollisionScore).
//
// See docs/ARCHITECTURE.md § Pipeline Interface, § Data Structures.
package types

// PrimaryTopic is an optional field/subfield pair attached to a Document
// by sources that expose a topic taxonomy (e.g. OpenAlex).
type PrimaryTopic struct {
	// Field is the top-level research field (e.g. "Computer Science").
	Field string `json:"field" yaml:"field"`

	// Subfield is the narrower area within the field (e.g. "Artificial Intelligence").
	Subfield string `json:"subfield,omitempty" yaml:"subfield,omitempty"`
}

// IsZero reports whether no topic information is present.
func (p PrimaryTopic) IsZero() bool {
	return p.Field == "" && p.Subfield == ""
}

// Document is one sampled bibliographic or code artifact normalized to a
// common shape. A Document is immutable once sampled: enrichment produces
// an annotated copy rather than editing fields in place, so a reader
// holding a Document never observes concurrent mutation.
type Document struct {
	// ID is the stable dedup key: a normalized lowercase DOI when one is
	// known, otherwise a source-qualified identifier (e.g. "openalex:W123").
	ID string `json:"id" yaml:"id"`

	// Title is the document title as returned by the source.
	Title string `json:"title" yaml:"title"`

	// Abstract is the abstract or summary text, possibly empty.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// Year is the publication year, 0 when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// CitationCount is the total citation count reported by the source.
	CitationCount int `json:"citation_count" yaml:"citation_count"`

	// InfluentialCitationCount is the count of influential citations
	// (Semantic Scholar's notion); 0 when the source does not report it.
	InfluentialCitationCount int `json:"influential_citation_count,omitempty" yaml:"influential_citation_count,omitempty"`

	// ConceptTags lists normalized concept or topic tags from the source.
	ConceptTags []string `json:"concept_tags,omitempty" yaml:"concept_tags,omitempty"`

	// PrimaryTopic is the source's primary field/subfield assignment.
	PrimaryTopic PrimaryTopic `json:"primary_topic,omitempty" yaml:"primary_topic,omitempty"`

	// SourceName identifies the adapter that produced this document
	// (e.g. "openalex", "semantic_scholar", "fixture").
	SourceName string `json:"source_name" yaml:"source_name"`

	// IsRetracted marks a formally retracted document. Set by enrichment.
	IsRetracted bool `json:"is_retracted,omitempty" yaml:"is_retracted,omitempty"`

	// CitesRetractedCount is the number of retracted works this document
	// cites. Set by enrichment.
	CitesRetractedCount int `json:"cites_retracted_count,omitempty" yaml:"cites_retracted_count,omitempty"`

	// CitationVelocitySpike marks an anomalous recent jump in citation
	// rate. Set by enrichment.
	CitationVelocitySpike bool `json:"citation_velocity_spike,omitempty" yaml:"citation_velocity_spike,omitempty"`

	// ReferencedIDs lists identifiers of works this document cites, used
	// as enrichment lookup input.
	ReferencedIDs []string `json:"referenced_ids,omitempty" yaml:"referenced_ids,omitempty"`
}

// HasUsableText reports whether the document carries text the semantic
// clustering stage can tokenize.
func (d Document) HasUsableText() bool {
	return d.Title != "" || d.Abstract != ""
}

// EnrichmentSignals holds the optional retraction/citation annotations an
// enrichment collaborator can attach to a Document. Absence of the
// collaborator leaves all fields zero and classification falls back to
// its keyword/topic-only baseline.
type EnrichmentSignals struct {
	IsRetracted           bool `json:"is_retracted" yaml:"is_retracted"`
	CitesRetractedCount   int  `json:"cites_retracted_count" yaml:"cites_retracted_count"`
	CitationVelocitySpike bool `json:"citation_velocity_spike" yaml:"citation_velocity_spike"`
}

// MethodSignal is an external domain-vocabulary vote for a method bucket,
// parsed and validated at the boundary. When Confidence exceeds 0.3 the
// signal dominates keyword scoring.
type MethodSignal struct {
	// Bucket is the indicated method axis value, 0-2.
	Bucket int `json:"bucket" yaml:"bucket"`

	// Confidence is the signal confidence in [0,1].
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// Valid reports whether the signal is well-formed.
func (s MethodSignal) Valid() bool {
	return s.Bucket >= 0 && s.Bucket <= 2 && s.Confidence >= 0 && s.Confidence <= 1
}

// Classification is the derived three-axis assignment for one Document.
type Classification struct {
	// X is the method axis: 0 observational/imaging, 1 computational,
	// 2 experimental.
	X int `json:"x" yaml:"x"`

	// Y is the discretized surprise axis, 0-2.
	Y int `json:"y" yaml:"y"`

	// SurpriseScore is the continuous surprise value in [0,1] behind Y.
	SurpriseScore float64 `json:"surprise_score" yaml:"surprise_score"`

	// Z is the semantic cluster axis, 0-2.
	Z int `json:"z" yaml:"z"`
}

// CellIndex flattens the coordinates into [0,26]: z*9 + y*3 + x.
func (c Classification) CellIndex() int {
	return c.Z*9 + c.Y*3 + c.X
}

// ClassifiedDocument pairs a Document with its Classification.
type ClassifiedDocument struct {
	Document       Document       `json:"document" yaml:"document"`
	Classification Classification `json:"classification" yaml:"classification"`
}
