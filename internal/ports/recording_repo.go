package ports

import (
	"context"
	"errors"

	"github.com/voxsplit/backend/internal/models"
)

// ErrChunkNotFound is returned by chunk mutations that matched no row, so
// handlers can answer 404 instead of treating it as a storage failure.
var ErrChunkNotFound = errors.New("chunk not found")

type RecordingRepository interface {
	InsertRecording(ctx context.Context, rec *models.Recording) (*models.Recording, error)
	GetRecordingByID(ctx context.Context, id int) (*models.Recording, error)
	ListRecordings(ctx context.Context, limit, offset int) ([]models.Recording, error)
	UpdateRecordingStatus(ctx context.Context, id int, status string) error
	DeleteRecording(ctx context.Context, id int) error

	// MarkStaleProcessingFailed is the startup sweep: every recording still
	// in "processing" from a previous process is forced to "failed".
	MarkStaleProcessingFailed(ctx context.Context) (int, error)

	// CompleteRecording persists the full chunk list and flips the recording
	// to "completed" in one transaction.
	CompleteRecording(ctx context.Context, recordingID int, drafts []models.ChunkDraft) error

	ListChunksByRecording(ctx context.Context, recordingID int) ([]models.Chunk, error)
	CountChunksByRecording(ctx context.Context, recordingID int) (int, error)
	DeleteChunksByRecording(ctx context.Context, recordingID int) error
	UpdateChunkNote(ctx context.Context, chunkID int, note *string) error
}
