package stations

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/voxsplit/backend/internal/models"
	"github.com/voxsplit/backend/internal/ports"
)

const maxTranscribeAttempts = 3

type S5Transcribe struct {
	stt ports.STTService

	// Backoff between attempts. Tests shorten it.
	Backoff time.Duration
}

func NewS5Transcribe(stt ports.STTService) *S5Transcribe {
	return &S5Transcribe{stt: stt, Backoff: time.Second}
}

// Run transcribes one file with bounded retry. After the final attempt the
// last provider error is returned; a failed segment fails the whole run.
func (s *S5Transcribe) Run(ctx context.Context, path string) ([]models.Segment, error) {
	var lastErr error

	for attempt := 1; attempt <= maxTranscribeAttempts; attempt++ {
		log.Printf("[S5][START] file=%s attempt=%d", filepath.Base(path), attempt)

		segments, err := s.stt.Transcribe(ctx, path)
		if err == nil {
			log.Printf("[S5][OK] segments=%d", len(segments))
			return segments, nil
		}

		lastErr = err
		log.Printf("[S5][ERR] attempt=%d err=%v", attempt, err)

		if attempt < maxTranscribeAttempts {
			select {
			case <-time.After(s.Backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	return nil, fmt.Errorf("%w after %d attempts: %v",
		ErrTranscription, maxTranscribeAttempts, lastErr)
}
