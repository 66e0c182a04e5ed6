package quality

import (
	"fmt"
	"strings"
)

// starGlyph is the character ClinVar uses to encode review confidence.
const starGlyph = "★"

// Point budgets for the quality score factors. Each factor is capped so
// no single one can swing the score beyond its budget.
const (
	completenessBudget = 30.0
	conflictBudget     = 25.0
	reviewBonusBudget  = 25.0
	sizeBudget         = 20.0
	smallDatasetRows   = 100
)

// ScoreInput carries the report fields the quality score derives from.
type ScoreInput struct {
	RowCount           int
	NullPercentageAvg  float64
	ConflictingCount   int64
	FourStarPercentage float64
}

// Score computes the composite quality score in [0, 100].
//
// The score is a heuristic, not a certified metric: it summarizes
// completeness, conflict rate, review confidence and dataset size
// against fixed point budgets and has no probabilistic interpretation.
func Score(in ScoreInput) float64 {
	score := 100.0

	// Completeness penalty.
	score -= minf(in.NullPercentageAvg*0.5, completenessBudget)

	// Conflict penalty.
	conflictRate := 0.0
	if in.RowCount > 0 {
		conflictRate = float64(in.ConflictingCount) / float64(in.RowCount) * 100
	}
	score -= minf(conflictRate*2, conflictBudget)

	// High-confidence review bonus.
	score += minf(in.FourStarPercentage*0.25, reviewBonusBudget)

	// Small-dataset penalty.
	if in.RowCount < smallDatasetRows {
		score -= minf(float64(smallDatasetRows-in.RowCount)*0.2, sizeBudget)
	}

	return clamp(score, 0, 100)
}

// StarBucket maps a review-status cell to its star-rating bucket. A
// missing cell is "no-review"; any present cell, including one with no
// star glyphs at all, buckets by its glyph count ("0-star", "1-star",
// ...).
func StarBucket(cell string, present bool) string {
	if !present {
		return "no-review"
	}
	return fmt.Sprintf("%d-star", strings.Count(cell, starGlyph))
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
