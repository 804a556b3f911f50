// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cube

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/pdiddy/gap-engine/internal/classify"
	"github.com/pdiddy/gap-engine/internal/enrich"
	"github.com/pdiddy/gap-engine/internal/sample"
	"github.com/pdiddy/gap-engine/pkg/types"
)

// ErrInsufficientSample is the shuffle pipeline's one fatal condition:
// the sampled, enriched, and fallback-padded batch is still too small to
// populate the grid. The prior generation stays served.
var ErrInsufficientSample = errors.New("insufficient sample")

const (
	defaultInterval     = 50
	defaultTopDocuments = 5
)

// Shuffler drives one full sample→classify→bucket→persist cycle. It is
// driven by an external tick loop and holds no internal timer; only one
// shuffle runs at a time.
//
// Each shuffle fully resamples and reclassifies all three axes: document
// identity is not stable across fresh batches, so carrying x/y forward
// would pin labels to documents that may no longer be in the sample. The
// sampler's batch cache gives intra-interval stability, and generations
// are immutable, so readers never see axes move underneath them.
type Shuffler struct {
	sampler  *sample.Sampler
	enricher enrich.Enricher
	tagger   enrich.MethodTagger
	store    *Store
	cfg      types.ShuffleConfig
}

// NewShuffler builds a Shuffler. enricher and tagger are optional
// collaborators; nil disables them without degrading classification
// below its keyword/topic baseline.
func NewShuffler(sampler *sample.Sampler, enricher enrich.Enricher, tagger enrich.MethodTagger, store *Store, cfg types.ShuffleConfig) *Shuffler {
	return &Shuffler{
		sampler:  sampler,
		enricher: enricher,
		tagger:   tagger,
		store:    store,
		cfg:      cfg,
	}
}

// ShouldShuffle reports whether a shuffle is due: always on the first
// call (negative lastShuffleTick means no prior shuffle), then whenever
// the configured interval has elapsed.
func (s *Shuffler) ShouldShuffle(currentTick, lastShuffleTick int64) bool {
	interval := s.cfg.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	if lastShuffleTick < 0 {
		return true
	}
	return currentTick-lastShuffleTick >= interval
}

// Shuffle runs one full cycle and persists the resulting generation.
// prior may be nil for the first generation. Progress and warnings go
// to w. On ErrInsufficientSample nothing is written and the previous
// generation remains the one served.
func (s *Shuffler) Shuffle(ctx context.Context, tick int64, prior *types.CubeSnapshot, w io.Writer) (*types.CubeSnapshot, error) {
	if w == nil {
		w = io.Discard
	}
	runID := uuid.NewString()
	fmt.Fprintf(w, "shuffle %s: starting at tick %d\n", runID, tick)

	batch, err := s.sampler.Sample(ctx, w)
	if err != nil {
		return nil, fmt.Errorf("sampling: %w", err)
	}

	docs := enrich.Apply(ctx, s.enricher, batch.Documents, w)

	floor := s.cfg.MinDocuments
	if floor < types.CellCount {
		floor = types.CellCount
	}
	if len(docs) < floor {
		return nil, fmt.Errorf("%w: %d documents, need at least %d", ErrInsufficientSample, len(docs), floor)
	}

	var signals map[string]types.MethodSignal
	if s.tagger != nil {
		signals, err = s.tagger.MethodSignals(ctx, docs)
		if err != nil {
			fmt.Fprintf(w, "warning: method signals unavailable: %v\n", err)
			signals = nil
		}
	}

	classified, labels := classify.Batch(docs, signals, w)
	cells := Bucket(classified, labels, w)

	generation := 1
	if prior != nil {
		generation = prior.Generation + 1
	}

	snapshot := &types.CubeSnapshot{
		Generation:      generation,
		RunID:           runID,
		CreatedAtTick:   tick,
		CreatedAt:       time.Now().UTC(),
		TotalDocuments:  len(docs),
		SourceBreakdown: batch.SourceBreakdown,
		AxisLabels:      labels,
		Cells:           cells,
	}

	if err := s.store.Write(snapshot); err != nil {
		return nil, fmt.Errorf("persisting generation %d: %w", generation, err)
	}

	fmt.Fprintf(w, "shuffle %s: generation %d published (%d documents)\n",
		runID, generation, len(docs))
	return snapshot, nil
}

// CellDescription is the query-interface view of one cell in the latest
// persisted generation.
type CellDescription struct {
	Index            int              `json:"index"`
	X                int              `json:"x"`
	Y                int              `json:"y"`
	Z                int              `json:"z"`
	MethodLabel      string           `json:"method_label"`
	SurpriseLabel    string           `json:"surprise_label"`
	ClusterLabel     string           `json:"cluster_label"`
	PaperCount       int              `json:"paper_count"`
	AvgSurpriseScore float64          `json:"avg_surprise_score"`
	Generation       int              `json:"generation"`
	TopDocuments     []types.Document `json:"top_documents"`
}

// DescribeCell returns the cell's labels, counts, and top documents from
// the latest persisted generation. topK <= 0 uses the configured default.
func (s *Shuffler) DescribeCell(cellIndex, topK int) (CellDescription, error) {
	if cellIndex < 0 || cellIndex >= types.CellCount {
		return CellDescription{}, fmt.Errorf("cell index %d out of range [0,%d]", cellIndex, types.CellCount-1)
	}
	if topK <= 0 {
		topK = s.cfg.TopDocuments
	}
	if topK <= 0 {
		topK = defaultTopDocuments
	}

	snapshot, err := s.store.Latest()
	if err != nil {
		return CellDescription{}, err
	}

	cell := snapshot.Cells[cellIndex]
	top := cell.Documents
	if len(top) > topK {
		top = top[:topK]
	}

	return CellDescription{
		Index:            cell.Index,
		X:                cell.X,
		Y:                cell.Y,
		Z:                cell.Z,
		MethodLabel:      cell.MethodLabel,
		SurpriseLabel:    cell.SurpriseLabel,
		ClusterLabel:     cell.ClusterLabel,
		PaperCount:       cell.PaperCount,
		AvgSurpriseScore: cell.AvgSurpriseScore,
		Generation:       snapshot.Generation,
		TopDocuments:     top,
	}, nil
}

// CollisionScore scores two cells of the latest persisted generation.
func (s *Shuffler) CollisionScore(cellIndexA, cellIndexB int) (types.CollisionScore, error) {
	if cellIndexA < 0 || cellIndexA >= types.CellCount || cellIndexB < 0 || cellIndexB >= types.CellCount {
		return types.CollisionScore{}, fmt.Errorf("cell indices (%d, %d) out of range [0,%d]",
			cellIndexA, cellIndexB, types.CellCount-1)
	}
	snapshot, err := s.store.Latest()
	if err != nil {
		return types.CollisionScore{}, err
	}
	return Collide(snapshot.Cells[cellIndexA], snapshot.Cells[cellIndexB]), nil
}
