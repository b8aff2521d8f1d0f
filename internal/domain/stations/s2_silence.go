package stations

import (
	"context"
	"log"
	"path/filepath"

	"github.com/voxsplit/backend/internal/models"
	"github.com/voxsplit/backend/internal/ports"
)

const (
	DefaultNoiseFloorDb  = -30.0
	DefaultMinSilenceSec = 1.0
)

type S2Silence struct {
	detector      ports.SilenceDetector
	noiseFloorDb  float64
	minSilenceSec float64
}

func NewS2Silence(d ports.SilenceDetector) *S2Silence {
	return &S2Silence{
		detector:      d,
		noiseFloorDb:  DefaultNoiseFloorDb,
		minSilenceSec: DefaultMinSilenceSec,
	}
}

// Run never fails the pipeline: a broken detector just means no split
// candidates, and the planner falls back to forced splits.
func (s *S2Silence) Run(ctx context.Context, path string) []models.SilenceInterval {
	log.Printf("[S2][START] file=%s noise=%gdB min=%gs",
		filepath.Base(path), s.noiseFloorDb, s.minSilenceSec)

	intervals, err := s.detector.DetectSilence(ctx, path, s.noiseFloorDb, s.minSilenceSec)
	if err != nil {
		log.Printf("[S2][ERR] %v (continuing with zero intervals)", err)
		return nil
	}

	log.Printf("[S2][OK] intervals=%d", len(intervals))
	return intervals
}
