// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package cube buckets classified documents into the 27-cell grid,
// persists immutable generation snapshots, and scores cell pairs for
// collision value. Implements: prd003-cube (R1-R6);
//
//	docs/ARCHITECTURE § Cube.
package cube

import (
	"fmt"
	"io"
	"sort"

	"github.com/pdiddy/gap-engine/pkg/types"
)

// thinCellThreshold is the document count below which a populated
// generation's cell draws a warning. Thinness is never an error.
const thinCellThreshold = 10

// Bucket distributes classified documents into the 27 cells. Every cell
// exists in the result even when empty; members are sorted by citation
// count descending. Thin cells are reported to w.
func Bucket(classified []types.ClassifiedDocument, labels types.AxisLabels, w io.Writer) [types.CellCount]types.Cell {
	if w == nil {
		w = io.Discard
	}

	var cells [types.CellCount]types.Cell
	for i := range cells {
		x, y, z := i%3, (i/3)%3, i/9
		cells[i] = types.Cell{
			Index:         i,
			X:             x,
			Y:             y,
			Z:             z,
			MethodLabel:   labels.Method[x],
			SurpriseLabel: labels.Surprise[y],
			ClusterLabel:  labels.Cluster[z],
		}
	}

	for _, cd := range classified {
		idx := cd.Classification.CellIndex()
		cells[idx].Documents = append(cells[idx].Documents, cd.Document)
		cells[idx].AvgSurpriseScore += cd.Classification.SurpriseScore
	}

	thin := 0
	for i := range cells {
		cell := &cells[i]
		cell.PaperCount = len(cell.Documents)
		if cell.PaperCount > 0 {
			cell.AvgSurpriseScore /= float64(cell.PaperCount)
		}
		sort.SliceStable(cell.Documents, func(a, b int) bool {
			return cell.Documents[a].CitationCount > cell.Documents[b].CitationCount
		})
		if cell.PaperCount < thinCellThreshold {
			thin++
		}
	}
	if thin > 0 {
		fmt.Fprintf(w, "bucket: %d of %d cells are thin (<%d documents)\n",
			thin, types.CellCount, thinCellThreshold)
	}
	return cells
}
