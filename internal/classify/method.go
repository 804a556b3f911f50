// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify assigns each sampled document a position on the three
// grid axes: method (x), surprise (y), and semantic cluster (z).
// Implements: prd002-classification (R1-R4);
//
//	docs/ARCHITECTURE § Classifier.
//
// Method and surprise scoring are pure per-document functions; the
// semantic axis is a batch-wide clustering pass.
package classify

import (
	"strings"

	"github.com/pdiddy/gap-engine/pkg/types"
)

// methodVocab holds the scoring vocabulary for one method bucket.
type methodVocab struct {
	label string

	// fields score +3 when they equal the document's declared field.
	fields []string

	// keywords score +1 per hit in title+abstract free text.
	keywords []string

	// concepts score +2 per matching normalized concept tag.
	concepts []string

	// topicPatterns score +4 when the primary topic field or subfield
	// contains the pattern.
	topicPatterns []string
}

// methodBuckets defines the three method axis values. Bucket 0 doubles
// as the default for unscored or tied documents.
var methodBuckets = [3]methodVocab{
	{
		label:  "observational",
		fields: []string{"astronomy", "earth science", "ecology", "epidemiology", "geology", "sociology"},
		keywords: []string{
			"observation", "observational", "survey", "imaging", "telescope",
			"satellite", "field study", "cohort", "longitudinal", "census",
			"spectroscopy", "monitoring", "remote sensing", "catalog",
		},
		concepts:      []string{"observational study", "imaging", "astronomy", "remote sensing", "epidemiology", "survey methodology"},
		topicPatterns: []string{"astronom", "epidemiol", "earth", "environmental", "ecolog"},
	},
	{
		label:  "computational",
		fields: []string{"computer science", "mathematics", "statistics", "artificial intelligence"},
		keywords: []string{
			"algorithm", "simulation", "model", "computational", "neural network",
			"machine learning", "deep learning", "software", "benchmark",
			"numerical", "in silico", "framework", "solver", "dataset",
		},
		concepts:      []string{"machine learning", "artificial intelligence", "simulation", "computational science", "algorithm", "data science"},
		topicPatterns: []string{"comput", "artificial intelligence", "mathemat", "informat", "software"},
	},
	{
		label:  "experimental",
		fields: []string{"chemistry", "physics", "biology", "medicine", "materials science", "neuroscience"},
		keywords: []string{
			"experiment", "experimental", "in vitro", "in vivo", "assay",
			"trial", "randomized", "synthesis", "fabricated", "measured",
			"clinical", "laboratory", "intervention", "placebo", "specimen",
		},
		concepts:      []string{"experiment", "clinical trial", "chemistry", "materials science", "molecular biology", "laboratory"},
		topicPatterns: []string{"chemi", "physic", "biolo", "medic", "material", "clinical"},
	},
}

// MethodLabels returns the fixed human-readable names for the x axis.
func MethodLabels() [3]string {
	return [3]string{methodBuckets[0].label, methodBuckets[1].label, methodBuckets[2].label}
}

// Method scores the document against each bucket's vocabulary and
// returns the winning bucket. A valid external signal with confidence
// above 0.3 dominates all other evidence. All-zero scores and ties
// default to bucket 0. Pure and deterministic.
func Method(doc types.Document, signal *types.MethodSignal) int {
	var scores [3]int

	text := strings.ToLower(doc.Title + " " + doc.Abstract)
	declaredField := strings.ToLower(doc.PrimaryTopic.Field)
	topic := strings.ToLower(doc.PrimaryTopic.Field + " " + doc.PrimaryTopic.Subfield)

	tags := make(map[string]bool, len(doc.ConceptTags))
	for _, tag := range doc.ConceptTags {
		tags[strings.ToLower(tag)] = true
	}

	for i, bucket := range methodBuckets {
		for _, field := range bucket.fields {
			if declaredField == field {
				scores[i] += 3
			}
		}
		for _, kw := range bucket.keywords {
			if strings.Contains(text, kw) {
				scores[i]++
			}
		}
		for _, concept := range bucket.concepts {
			if tags[concept] {
				scores[i] += 2
			}
		}
		for _, pattern := range bucket.topicPatterns {
			if topic != " " && strings.Contains(topic, pattern) {
				scores[i] += 4
				break
			}
		}
	}

	// A confident external vocabulary signal outweighs everything above.
	if signal != nil && signal.Valid() && signal.Confidence > 0.3 {
		scores[signal.Bucket] += 5
	}

	best := 0
	for i := 1; i < 3; i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}
