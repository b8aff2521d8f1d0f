package ports

import (
	"context"

	"github.com/voxsplit/backend/internal/models"
)

// StructuringService groups ordered transcript segments into titled chunks.
// Implementations return an error only for transport failures; a malformed
// provider response degrades to zero chunks instead.
type StructuringService interface {
	Structure(ctx context.Context, segments []models.Segment) ([]models.ChunkDraft, error)
}
