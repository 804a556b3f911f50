// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// CellCount is the fixed number of grid buckets: 3 method x 3 surprise
// x 3 semantic-cluster values.
const CellCount = 27

// Cell is one bucket of the 3x3x3 grid. All 27 cells exist in every
// generation; an empty or thin cell is a warning condition, never an
// error.
type Cell struct {
	// Index is the flattened coordinate, z*9 + y*3 + x.
	Index int `json:"index" yaml:"index"`

	// X, Y, Z are the cell coordinates, each 0-2.
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	Z int `json:"z" yaml:"z"`

	// MethodLabel is the human-readable name for the X value.
	MethodLabel string `json:"method_label" yaml:"method_label"`

	// SurpriseLabel is the human-readable name for the Y value.
	SurpriseLabel string `json:"surprise_label" yaml:"surprise_label"`

	// ClusterLabel is the per-generation derived name for the Z value
	// (top terms of the semantic cluster).
	ClusterLabel string `json:"cluster_label" yaml:"cluster_label"`

	// Documents holds the cell's members sorted by citation count descending.
	Documents []Document `json:"documents" yaml:"documents"`

	// PaperCount is len(Documents), persisted for cheap reads.
	PaperCount int `json:"paper_count" yaml:"paper_count"`

	// AvgSurpriseScore is the mean continuous surprise score of the
	// cell's members, 0 for an empty cell.
	AvgSurpriseScore float64 `json:"avg_surprise_score" yaml:"avg_surprise_score"`
}

// AxisLabels names the values of each axis. Method and surprise labels
// are fixed; cluster labels are derived fresh each generation from the
// clustered corpus.
type AxisLabels struct {
	Method   [3]string `json:"method" yaml:"method"`
	Surprise [3]string `json:"surprise" yaml:"surprise"`
	Cluster  [3]string `json:"cluster" yaml:"cluster"`
}

// CubeSnapshot is one immutable generation of the full grid. A snapshot
// is created wholesale by one shuffle run and superseded, never edited,
// by the next; readers always see a complete generation or none.
type CubeSnapshot struct {
	// Generation is a monotonically increasing version number.
	Generation int `json:"generation" yaml:"generation"`

	// RunID is a unique identifier for the shuffle run that produced
	// this snapshot, for log correlation.
	RunID string `json:"run_id" yaml:"run_id"`

	// CreatedAtTick is the external tick at which the shuffle ran.
	CreatedAtTick int64 `json:"created_at_tick" yaml:"created_at_tick"`

	// CreatedAt is the wall-clock creation time.
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// TotalDocuments is the deduplicated document count across all cells.
	TotalDocuments int `json:"total_documents" yaml:"total_documents"`

	// SourceBreakdown maps source name to the number of documents it
	// contributed to the batch.
	SourceBreakdown map[string]int `json:"source_breakdown" yaml:"source_breakdown"`

	// AxisLabels names the axis values for this generation.
	AxisLabels AxisLabels `json:"axis_labels" yaml:"axis_labels"`

	// Cells holds all 27 buckets indexed by CellIndex.
	Cells [CellCount]Cell `json:"cells" yaml:"cells"`
}

// CollisionComponents breaks a collision score into its three terms.
type CollisionComponents struct {
	// MethodDistance is |xA-xB|/2.
	MethodDistance float64 `json:"method_distance" yaml:"method_distance"`

	// SurpriseInteraction blends the two surprise values, rewarding
	// both-high pairs without zeroing when one is low.
	SurpriseInteraction float64 `json:"surprise_interaction" yaml:"surprise_interaction"`

	// SemanticDistance is 1.0 for different clusters, 0.3 for the same.
	SemanticDistance float64 `json:"semantic_distance" yaml:"semantic_distance"`
}

// CollisionScore is the on-demand similarity score for a cell pair. It
// is never persisted; it is purely a function of the two cells'
// coordinates.
type CollisionScore struct {
	// Score is the blended collision value in [0,1].
	Score float64 `json:"score" yaml:"score"`

	// Golden marks a pair scoring above the "interesting" threshold.
	Golden bool `json:"golden" yaml:"golden"`

	// Components holds the individual score terms.
	Components CollisionComponents `json:"components" yaml:"components"`
}
