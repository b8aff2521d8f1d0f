package domain

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/voxsplit/backend/internal/models"
)

type fakeProber struct {
	duration float64
	err      error
}

func (f *fakeProber) Probe(ctx context.Context, path string) (float64, error) {
	return f.duration, f.err
}

type fakeDetector struct {
	intervals []models.SilenceInterval
	err       error
}

func (f *fakeDetector) DetectSilence(ctx context.Context, path string, noiseFloorDb, minSilenceSec float64) ([]models.SilenceInterval, error) {
	return f.intervals, f.err
}

type cutCall struct {
	src, dst   string
	start, end float64
}

type fakeCutter struct {
	mu        sync.Mutex
	calls     []cutCall
	size      int64
	errOnCall int // 1-based call number that fails; 0 means never
}

func (f *fakeCutter) Cut(ctx context.Context, src, dst string, start, end float64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, cutCall{src: src, dst: dst, start: start, end: end})
	if f.errOnCall != 0 && len(f.calls) == f.errOnCall {
		return 0, fmt.Errorf("encode failed")
	}
	// Materialize the output so cleanup behavior is observable.
	if err := os.WriteFile(dst, []byte("mp3"), 0644); err != nil {
		return 0, err
	}
	if f.size == 0 {
		return 1000, nil
	}
	return f.size, nil
}

type fakeSTT struct {
	mu       sync.Mutex
	paths    []string
	segments []models.Segment
	err      error
	block    chan struct{} // when set, Transcribe waits until it is closed
}

func (f *fakeSTT) Transcribe(ctx context.Context, path string) ([]models.Segment, error) {
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	if f.err != nil {
		return nil, f.err
	}
	return f.segments, nil
}

// fakeStructurer groups each incoming batch into a single titled chunk
// spanning the whole batch, unless chunks is set explicitly.
type fakeStructurer struct {
	mu          sync.Mutex
	calls       int
	chunks      []models.ChunkDraft
	err         error
	emptyOnCall int // 1-based call number that yields zero chunks; 0 means never
}

func (f *fakeStructurer) Structure(ctx context.Context, segments []models.Segment) ([]models.ChunkDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.emptyOnCall != 0 && f.calls == f.emptyOnCall {
		return nil, nil
	}
	if f.chunks != nil {
		return f.chunks, nil
	}

	var texts []string
	for _, s := range segments {
		texts = append(texts, s.Text)
	}
	return []models.ChunkDraft{{
		Title:      fmt.Sprintf("Part %d", f.calls),
		Transcript: strings.Join(texts, " "),
		Start:      segments[0].Start,
		End:        segments[len(segments)-1].End,
	}}, nil
}

// fakeRepo is an in-memory ports.RecordingRepository that records the order
// of mutating operations.
type fakeRepo struct {
	mu     sync.Mutex
	nextID int
	recs   map[int]*models.Recording
	chunks map[int][]models.Chunk
	ops    []string

	failComplete bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		recs:   make(map[int]*models.Recording),
		chunks: make(map[int][]models.Chunk),
	}
}

func (f *fakeRepo) op(s string) { f.ops = append(f.ops, s) }

func (f *fakeRepo) InsertRecording(ctx context.Context, rec *models.Recording) (*models.Recording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	rec.ID = f.nextID
	cp := *rec
	f.recs[rec.ID] = &cp
	f.op("insert_recording")
	return rec, nil
}

func (f *fakeRepo) GetRecordingByID(ctx context.Context, id int) (*models.Recording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeRepo) ListRecordings(ctx context.Context, limit, offset int) ([]models.Recording, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Recording
	for _, r := range f.recs {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRepo) UpdateRecordingStatus(ctx context.Context, id int, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.recs[id]
	if !ok {
		return fmt.Errorf("recording %d not found", id)
	}
	rec.Status = status
	f.op("status:" + status)
	return nil
}

func (f *fakeRepo) DeleteRecording(ctx context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.recs, id)
	delete(f.chunks, id)
	f.op("delete_recording")
	return nil
}

func (f *fakeRepo) MarkStaleProcessingFailed(ctx context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.recs {
		if r.Status == models.StatusProcessing {
			r.Status = models.StatusFailed
			n++
		}
	}
	f.op("sweep")
	return n, nil
}

func (f *fakeRepo) CompleteRecording(ctx context.Context, recordingID int, drafts []models.ChunkDraft) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failComplete {
		return fmt.Errorf("tx failed")
	}
	rec, ok := f.recs[recordingID]
	if !ok {
		return fmt.Errorf("recording %d not found", recordingID)
	}
	for _, d := range drafts {
		c := models.Chunk{
			RecordingID: recordingID,
			Title:       d.Title,
			Transcript:  d.Transcript,
			StartTime:   d.Start,
			EndTime:     d.End,
		}
		if d.AudioPath != "" {
			p := d.AudioPath
			c.AudioPath = &p
		}
		f.chunks[recordingID] = append(f.chunks[recordingID], c)
	}
	rec.Status = models.StatusCompleted
	f.op("complete")
	return nil
}

func (f *fakeRepo) ListChunksByRecording(ctx context.Context, recordingID int) ([]models.Chunk, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Chunk(nil), f.chunks[recordingID]...), nil
}

func (f *fakeRepo) CountChunksByRecording(ctx context.Context, recordingID int) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.chunks[recordingID]), nil
}

func (f *fakeRepo) DeleteChunksByRecording(ctx context.Context, recordingID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.chunks, recordingID)
	f.op("purge_chunks")
	return nil
}

func (f *fakeRepo) UpdateChunkNote(ctx context.Context, chunkID int, note *string) error {
	return nil
}

func (f *fakeRepo) opsSnapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.ops...)
}
