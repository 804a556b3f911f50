// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"io"

	"github.com/pdiddy/gap-engine/pkg/types"
)

// Batch classifies a full sampled batch on all three axes. signals maps
// document ID to an optional external method vote; it may be nil.
// Warnings from the clustering pass go to w. The returned axis labels
// carry the fixed method/surprise names plus this batch's derived
// cluster labels.
func Batch(docs []types.Document, signals map[string]types.MethodSignal, w io.Writer) ([]types.ClassifiedDocument, types.AxisLabels) {
	clusters, clusterNames := Cluster(docs, w)

	classified := make([]types.ClassifiedDocument, len(docs))
	for i, doc := range docs {
		var signal *types.MethodSignal
		if s, ok := signals[doc.ID]; ok {
			signal = &s
		}

		score, y := Surprise(doc)
		classified[i] = types.ClassifiedDocument{
			Document: doc,
			Classification: types.Classification{
				X:             Method(doc, signal),
				Y:             y,
				SurpriseScore: score,
				Z:             clusters[i],
			},
		}
	}

	labels := types.AxisLabels{
		Method:   MethodLabels(),
		Surprise: SurpriseLabels(),
		Cluster:  clusterNames,
	}
	return classified, labels
}
