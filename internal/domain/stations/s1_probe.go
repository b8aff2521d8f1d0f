package stations

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/voxsplit/backend/internal/ports"
)

type S1Probe struct {
	prober ports.DurationProber
}

func NewS1Probe(p ports.DurationProber) *S1Probe {
	return &S1Probe{prober: p}
}

// Run returns the recording's total duration. Failure here is fatal: without
// a duration there is nothing to plan splits against.
func (s *S1Probe) Run(ctx context.Context, path string) (float64, error) {
	log.Printf("[S1][START] file=%s", filepath.Base(path))

	dur, err := s.prober.Probe(ctx, path)
	if err != nil {
		log.Printf("[S1][ERR] %v", err)
		return 0, fmt.Errorf("%w: %v", ErrProbe, err)
	}
	if dur <= 0 {
		log.Printf("[S1][ERR] non-positive duration %f", dur)
		return 0, fmt.Errorf("%w: non-positive duration %f", ErrProbe, dur)
	}

	log.Printf("[S1][OK] duration=%.1fs", dur)
	return dur, nil
}
