// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cube

import (
	"math"

	"github.com/pdiddy/gap-engine/pkg/types"
)

// Collision score weights. The final score is a convex combination of
// the three component terms.
const (
	weightMethod   = 0.45
	weightSurprise = 0.35
	weightSemantic = 0.20
)

// sameClusterDistance is the semantic term for two cells in the same
// cluster. It stays above zero so a cell never trivially collides with
// itself at maximal semantic distance.
const sameClusterDistance = 0.3

// goldenThreshold marks the score above which a pair is flagged as an
// interesting "golden" collision.
const goldenThreshold = 0.5

// Surprise-interaction blend coefficients: arithmetic mean, geometric
// mean, and a floor offset that keeps the term alive when one side is
// low. They sum to the term's maximum of 1.0.
const (
	blendMean  = 0.5
	blendGeo   = 0.4
	blendFloor = 0.1
)

// Collide scores two cells for collision value from their coordinates
// alone. The result is symmetric: Collide(a, b) == Collide(b, a).
func Collide(a, b types.Cell) types.CollisionScore {
	components := types.CollisionComponents{
		MethodDistance:      math.Abs(float64(a.X-b.X)) / 2,
		SurpriseInteraction: surpriseInteraction(float64(a.Y)/2, float64(b.Y)/2),
		SemanticDistance:    semanticDistance(a.Z, b.Z),
	}

	score := weightMethod*components.MethodDistance +
		weightSurprise*components.SurpriseInteraction +
		weightSemantic*components.SemanticDistance
	score = round4(clamp01(score))

	return types.CollisionScore{
		Score:      score,
		Golden:     score > goldenThreshold,
		Components: components,
	}
}

// surpriseInteraction blends the normalized surprise values. Both-high
// pairs score near 1; a pair with one low side keeps the floor offset
// plus half the mean rather than collapsing to zero.
func surpriseInteraction(a, b float64) float64 {
	return blendMean*(a+b)/2 + blendGeo*math.Sqrt(a*b) + blendFloor
}

func semanticDistance(za, zb int) float64 {
	if za != zb {
		return 1.0
	}
	return sameClusterDistance
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
