// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"strings"
	"time"

	"github.com/pdiddy/gap-engine/pkg/types"
)

// Anomaly marker phrases. Strong markers flag explicit contradiction or
// anomaly language; weak markers flag milder deviation language.
var (
	strongMarkers = []string{
		"anomalous", "anomaly", "unexpected", "contradicts", "contradiction",
		"paradox", "inconsistent with", "challenges the", "violates",
		"cannot be explained", "defies",
	}
	weakMarkers = []string{
		"surprising", "unusual", "novel", "puzzling", "rare", "tension",
		"revisit", "reassess", "unexplained", "counterintuitive",
	}
)

// Marker weighting. Only the first two strong hits count, so a document
// repeating "anomalous" ten times scores no higher than one saying it
// twice.
const (
	strongWeight  = 2.0
	strongHitCap  = 2
	weakWeight    = 1.0
	weakHitCap    = 4
	surpriseScale = 4.0
)

// Discretization cut points for the y axis.
const (
	surpriseCutLow  = 0.30
	surpriseCutHigh = 0.55
)

// Structural signal bonuses.
const (
	bonusRetracted       = 3.0
	bonusCitesRetracted  = 2.0
	bonusVelocitySpike   = 2.0
	bonusCitationBurst   = 2.0
	bonusInfluentialHigh = 1.0
)

// Citation-burst thresholds: a very recent document already heavily cited.
const (
	burstMaxAgeYears   = 1
	burstMinCitations  = 50
	influentialRatioHi = 0.25
)

// surpriseLabels are the fixed human-readable names for the y axis.
var surpriseLabels = [3]string{"expected", "notable", "anomalous"}

// SurpriseLabels returns the fixed names for the y axis values.
func SurpriseLabels() [3]string {
	return surpriseLabels
}

// Surprise computes the continuous surprise score in [0,1] and its
// discretized y value. Marker hits and structural signals accumulate
// into a raw score that is squashed by raw/(raw+scale), which is
// strictly monotone non-decreasing and bounded below 1. Pure and
// deterministic for a fixed wall-clock year.
func Surprise(doc types.Document) (float64, int) {
	raw := markerScore(doc) + structuralScore(doc)

	score := raw / (raw + surpriseScale)

	y := 0
	switch {
	case score >= surpriseCutHigh:
		y = 2
	case score >= surpriseCutLow:
		y = 1
	}
	return score, y
}

func markerScore(doc types.Document) float64 {
	text := strings.ToLower(doc.Title + " " + doc.Abstract)

	strongHits := 0
	for _, marker := range strongMarkers {
		if strings.Contains(text, marker) {
			strongHits++
		}
	}
	if strongHits > strongHitCap {
		strongHits = strongHitCap
	}

	weakHits := 0
	for _, marker := range weakMarkers {
		if strings.Contains(text, marker) {
			weakHits++
		}
	}
	if weakHits > weakHitCap {
		weakHits = weakHitCap
	}

	return float64(strongHits)*strongWeight + float64(weakHits)*weakWeight
}

func structuralScore(doc types.Document) float64 {
	score := 0.0
	if doc.IsRetracted {
		score += bonusRetracted
	}
	if doc.CitesRetractedCount > 0 {
		score += bonusCitesRetracted
	}
	if doc.CitationVelocitySpike {
		score += bonusVelocitySpike
	}
	if isCitationBurst(doc) {
		score += bonusCitationBurst
	}
	if doc.CitationCount > 0 &&
		float64(doc.InfluentialCitationCount)/float64(doc.CitationCount) >= influentialRatioHi {
		score += bonusInfluentialHigh
	}
	return score
}

// isCitationBurst reports a very recent document with an already high
// citation count.
func isCitationBurst(doc types.Document) bool {
	if doc.Year == 0 {
		return false
	}
	age := time.Now().Year() - doc.Year
	return age <= burstMaxAgeYears && doc.CitationCount >= burstMinCitations
}
