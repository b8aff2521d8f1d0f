package delivery

import (
	"context"
	"time"

	"github.com/voxsplit/backend/internal/models"
	"github.com/voxsplit/backend/internal/ports"
)

type fakeProfileRepo struct {
	nextID   int
	profiles map[int]*models.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[int]*models.Profile)}
}

func (f *fakeProfileRepo) InsertProfile(ctx context.Context, p *models.Profile) (*models.Profile, error) {
	f.nextID++
	p.ID = f.nextID
	p.CreatedAt = time.Now()
	cp := *p
	f.profiles[p.ID] = &cp
	return p, nil
}

func (f *fakeProfileRepo) GetProfileByID(ctx context.Context, id int) (*models.Profile, error) {
	p, ok := f.profiles[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfileRepo) ListProfiles(ctx context.Context, limit, offset int) ([]models.Profile, error) {
	out := []models.Profile{}
	for _, p := range f.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProfileRepo) DeleteProfile(ctx context.Context, id int) error {
	delete(f.profiles, id)
	return nil
}

// stubRecordingRepo answers with canned values; only the methods a test
// exercises need configuring.
type stubRecordingRepo struct {
	rec      *models.Recording
	inserted []models.Recording
	chunks   []models.Chunk
	noteErr  error
}

func (s *stubRecordingRepo) InsertRecording(ctx context.Context, rec *models.Recording) (*models.Recording, error) {
	rec.ID = len(s.inserted) + 1
	s.inserted = append(s.inserted, *rec)
	return rec, nil
}

func (s *stubRecordingRepo) GetRecordingByID(ctx context.Context, id int) (*models.Recording, error) {
	if s.rec != nil && s.rec.ID == id {
		cp := *s.rec
		return &cp, nil
	}
	return nil, nil
}

func (s *stubRecordingRepo) ListRecordings(ctx context.Context, limit, offset int) ([]models.Recording, error) {
	return nil, nil
}

func (s *stubRecordingRepo) UpdateRecordingStatus(ctx context.Context, id int, status string) error {
	return nil
}

func (s *stubRecordingRepo) DeleteRecording(ctx context.Context, id int) error { return nil }

func (s *stubRecordingRepo) MarkStaleProcessingFailed(ctx context.Context) (int, error) {
	return 0, nil
}

func (s *stubRecordingRepo) CompleteRecording(ctx context.Context, recordingID int, drafts []models.ChunkDraft) error {
	return nil
}

func (s *stubRecordingRepo) ListChunksByRecording(ctx context.Context, recordingID int) ([]models.Chunk, error) {
	return s.chunks, nil
}

func (s *stubRecordingRepo) CountChunksByRecording(ctx context.Context, recordingID int) (int, error) {
	return len(s.chunks), nil
}

func (s *stubRecordingRepo) DeleteChunksByRecording(ctx context.Context, recordingID int) error {
	return nil
}

func (s *stubRecordingRepo) UpdateChunkNote(ctx context.Context, chunkID int, note *string) error {
	return s.noteErr
}

type stubProcessor struct {
	canRetryErr error
}

func (s *stubProcessor) Process(ctx context.Context, recordingID int) error  { return nil }
func (s *stubProcessor) Retry(ctx context.Context, recordingID int) error    { return nil }
func (s *stubProcessor) CanRetry(ctx context.Context, recordingID int) error { return s.canRetryErr }
func (s *stubProcessor) Events() <-chan ports.ProcessEvent                   { return nil }
