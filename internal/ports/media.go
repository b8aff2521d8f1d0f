package ports

import (
	"context"

	"github.com/voxsplit/backend/internal/models"
)

// The media toolchain is kept behind these three interfaces so the pipeline
// can be exercised without real ffmpeg binaries.

type DurationProber interface {
	// Probe returns the total duration of a media file in seconds.
	Probe(ctx context.Context, path string) (float64, error)
}

type SilenceDetector interface {
	// DetectSilence returns the ordered intervals where signal energy stays
	// below noiseFloorDb for at least minSilenceSec.
	DetectSilence(ctx context.Context, path string, noiseFloorDb, minSilenceSec float64) ([]models.SilenceInterval, error)
}

type SegmentCutter interface {
	// Cut re-encodes [start, end] of src into dst and returns the exported
	// file's byte size.
	Cut(ctx context.Context, src, dst string, start, end float64) (int64, error)
}
