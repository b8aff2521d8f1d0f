package ports

import (
	"context"

	"github.com/voxsplit/backend/internal/models"
)

// STTService sends one audio file to the speech provider and returns its
// segments, with timestamps relative to the submitted file.
type STTService interface {
	Transcribe(ctx context.Context, path string) ([]models.Segment, error)
}
