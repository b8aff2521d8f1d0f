package stations

import (
	"log"
	"math"

	"github.com/voxsplit/backend/internal/models"
)

// DefaultTargetChunkSec is the target duration of one physical segment.
const DefaultTargetChunkSec = 600.0

// searchRadius bounds how far from the target a silence may be used as a cut
// point, and keeps every split at least a minute past the previous one.
const searchRadius = 60.0

// PlanSplits computes ordered, strictly increasing split timestamps in
// (0, total). Around each target it looks for the silence interval whose
// start is closest to the target and splits mid-silence so neither trailing
// nor leading speech is truncated. With no candidate in the window it splits
// exactly at the target; that cut may land mid-speech and is accepted as is.
func PlanSplits(total, target float64, silences []models.SilenceInterval) []float64 {
	var splits []float64

	current := 0.0
	for current+target < total {
		t := current + target
		lo := math.Max(current+searchRadius, t-searchRadius)
		hi := math.Min(total, t+searchRadius)

		split := t
		best := math.Inf(1)
		for _, iv := range silences {
			if iv.Start < lo || iv.Start > hi {
				continue
			}
			mid := iv.Start + iv.Duration/2
			if mid >= total {
				continue
			}
			if d := math.Abs(iv.Start - t); d < best {
				best = d
				split = mid
			}
		}

		splits = append(splits, split)
		current = split
	}

	return splits
}

// Boundaries returns the full ordered cut list: [0, splits..., total].
func Boundaries(total, target float64, silences []models.SilenceInterval) []float64 {
	splits := PlanSplits(total, target, silences)
	log.Printf("[S3][OK] duration=%.1fs splits=%d", total, len(splits))

	bounds := make([]float64, 0, len(splits)+2)
	bounds = append(bounds, 0)
	bounds = append(bounds, splits...)
	return append(bounds, total)
}
