package stations

import (
	"context"
	"fmt"
	"log"

	"github.com/voxsplit/backend/internal/models"
	"github.com/voxsplit/backend/internal/ports"
)

type S6Structure struct {
	structurer ports.StructuringService
}

func NewS6Structure(st ports.StructuringService) *S6Structure {
	return &S6Structure{structurer: st}
}

// Run turns transcript segments into titled chunks. Empty input yields an
// empty result without a provider round trip. Errors here are transport
// failures and fatal; a malformed provider response already degraded to zero
// chunks inside the client.
func (s *S6Structure) Run(ctx context.Context, segments []models.Segment) ([]models.ChunkDraft, error) {
	if len(segments) == 0 {
		log.Printf("[S6][SKIP] no segments")
		return nil, nil
	}

	log.Printf("[S6][START] segments=%d", len(segments))

	chunks, err := s.structurer.Structure(ctx, segments)
	if err != nil {
		log.Printf("[S6][ERR] %v", err)
		return nil, fmt.Errorf("%w: %v", ErrStructuring, err)
	}

	log.Printf("[S6][OK] chunks=%d", len(chunks))
	return chunks, nil
}
