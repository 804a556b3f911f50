// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cube

import (
	"testing"

	"github.com/pdiddy/gap-engine/pkg/types"
)

func cellAt(x, y, z int) types.Cell {
	return types.Cell{Index: z*9 + y*3 + x, X: x, Y: y, Z: z}
}

func TestCollideSymmetric(t *testing.T) {
	for i := 0; i < types.CellCount; i++ {
		for j := i; j < types.CellCount; j++ {
			a := cellAt(i%3, (i/3)%3, i/9)
			b := cellAt(j%3, (j/3)%3, j/9)

			ab := Collide(a, b)
			ba := Collide(b, a)
			if ab.Score != ba.Score {
				t.Errorf("Collide(%d,%d) = %v but Collide(%d,%d) = %v", i, j, ab.Score, j, i, ba.Score)
			}
			if ab.Golden != ba.Golden {
				t.Errorf("golden flag asymmetric for (%d,%d)", i, j)
			}
		}
	}
}

func TestCollideBounds(t *testing.T) {
	for i := 0; i < types.CellCount; i++ {
		for j := 0; j < types.CellCount; j++ {
			a := cellAt(i%3, (i/3)%3, i/9)
			b := cellAt(j%3, (j/3)%3, j/9)
			score := Collide(a, b).Score
			if score < 0 || score > 1 {
				t.Errorf("Collide(%d,%d).Score = %v, out of [0,1]", i, j, score)
			}
		}
	}
}

func TestCollideComponents(t *testing.T) {
	// Opposite methods, both maximally surprising, different clusters.
	a := cellAt(0, 2, 0)
	b := cellAt(2, 2, 1)
	got := Collide(a, b)

	if got.Components.MethodDistance != 1.0 {
		t.Errorf("MethodDistance = %v, want 1.0", got.Components.MethodDistance)
	}
	if got.Components.SurpriseInteraction != 1.0 {
		t.Errorf("SurpriseInteraction = %v, want 1.0", got.Components.SurpriseInteraction)
	}
	if got.Components.SemanticDistance != 1.0 {
		t.Errorf("SemanticDistance = %v, want 1.0", got.Components.SemanticDistance)
	}
	if got.Score != 1.0 {
		t.Errorf("Score = %v, want 1.0", got.Score)
	}
	if !got.Golden {
		t.Error("maximal pair not golden")
	}
}

func TestCollideSelfUsesSameClusterFloor(t *testing.T) {
	a := cellAt(1, 1, 2)
	got := Collide(a, a)

	if got.Components.MethodDistance != 0 {
		t.Errorf("MethodDistance = %v, want 0", got.Components.MethodDistance)
	}
	if got.Components.SemanticDistance != 0.3 {
		t.Errorf("SemanticDistance = %v, want 0.3 for same cluster", got.Components.SemanticDistance)
	}
}

func TestCollideAllExpectedPairKeepsFloor(t *testing.T) {
	// Both sides y=0: the interaction collapses to the floor offset, so
	// the surprise term contributes but stays small.
	got := Collide(cellAt(0, 0, 0), cellAt(2, 0, 1))

	if got.Components.SurpriseInteraction != 0.1 {
		t.Errorf("SurpriseInteraction = %v, want 0.1 floor", got.Components.SurpriseInteraction)
	}
	// 0.45*1 + 0.35*0.1 + 0.20*1 = 0.685
	if got.Score != 0.685 {
		t.Errorf("Score = %v, want 0.685", got.Score)
	}
}

func TestCollideGoldenThreshold(t *testing.T) {
	// Same method, both expected, same cluster: 0.35*0.1 + 0.20*0.3 = 0.095.
	low := Collide(cellAt(0, 0, 0), cellAt(0, 0, 0))
	if low.Golden {
		t.Errorf("Score %v flagged golden", low.Score)
	}
	if low.Score != 0.095 {
		t.Errorf("Score = %v, want 0.095", low.Score)
	}

	high := Collide(cellAt(0, 2, 0), cellAt(2, 2, 1))
	if !high.Golden {
		t.Errorf("Score %v not flagged golden", high.Score)
	}
}

func TestCollideRoundsToFourDecimals(t *testing.T) {
	// The persisted score carries at most four decimal places.
	got := Collide(cellAt(0, 1, 0), cellAt(1, 0, 1))
	if got.Score != round4(got.Score) {
		t.Errorf("Score = %v, want at most four decimal places", got.Score)
	}
	if got.Score < 0.50 || got.Score > 0.51 {
		t.Errorf("Score = %v, want ~0.5038", got.Score)
	}
}
