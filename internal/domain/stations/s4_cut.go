package stations

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/voxsplit/backend/internal/ports"
)

// minCutSec skips degenerate ranges that carry no usable speech.
const minCutSec = 0.1

// providerSizeCeiling is the speech provider's hard upload limit. An export
// that still exceeds it can never be transcribed, so the run fails here
// instead of being rejected upstream.
const providerSizeCeiling = 25 * 1024 * 1024

type S4Cut struct {
	cutter ports.SegmentCutter
}

func NewS4Cut(c ports.SegmentCutter) *S4Cut {
	return &S4Cut{cutter: c}
}

// Run exports the [start, end] range of src to dst. The bool result is false
// when the range was too short to export.
func (s *S4Cut) Run(ctx context.Context, src, dst string, start, end float64) (bool, error) {
	if end-start < minCutSec {
		log.Printf("[S4][SKIP] range=%.3f-%.3f too short", start, end)
		return false, nil
	}

	log.Printf("[S4][START] src=%s range=%.1f-%.1f", filepath.Base(src), start, end)

	size, err := s.cutter.Cut(ctx, src, dst, start, end)
	if err != nil {
		log.Printf("[S4][ERR] %v", err)
		return false, fmt.Errorf("%w: %v", ErrSegmentExport, err)
	}
	if size > providerSizeCeiling {
		log.Printf("[S4][ERR] exported %d bytes, ceiling %d", size, providerSizeCeiling)
		return false, fmt.Errorf("%w: exported %d bytes exceeds provider ceiling %d",
			ErrSegmentExport, size, providerSizeCeiling)
	}

	log.Printf("[S4][OK] dst=%s bytes=%d", filepath.Base(dst), size)
	return true, nil
}
