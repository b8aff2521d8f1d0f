package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/voxsplit/backend/internal/models"
	"github.com/voxsplit/backend/internal/ports"
)

var (
	ErrRecordingNotFound = errors.New("recording not found")
	ErrAlreadyRunning    = errors.New("recording is already being processed")
	ErrAlreadyCompleted  = errors.New("recording is completed with chunks")
)

// RecordingService drives the per-recording state machine around the
// pipeline: pending → processing → completed|failed. It owns the retry flow
// and the crash-recovery sweep, and enforces at most one concurrent run per
// recording.
type RecordingService struct {
	repo     ports.RecordingRepository
	pipeline *Pipeline
	logDir   string

	mu       sync.Mutex
	inflight map[int]struct{}

	events chan ports.ProcessEvent
}

func NewRecordingService(repo ports.RecordingRepository, pipeline *Pipeline, logDir string) *RecordingService {
	return &RecordingService{
		repo:     repo,
		pipeline: pipeline,
		logDir:   logDir,
		inflight: make(map[int]struct{}),
		events:   make(chan ports.ProcessEvent, 100),
	}
}

func (s *RecordingService) Events() <-chan ports.ProcessEvent { return s.events }

// RecoverStale forces every recording still in "processing" to "failed".
// In-memory progress does not survive a restart; the status itself is the
// evidence of the crash. Runs once at startup, before any request is served.
func (s *RecordingService) RecoverStale(ctx context.Context) (int, error) {
	n, err := s.repo.MarkStaleProcessingFailed(ctx)
	if err != nil {
		return 0, fmt.Errorf("stale sweep: %w", err)
	}
	if n > 0 {
		log.Printf("[SWEEP] forced %d stale recording(s) to failed", n)
	}
	return n, nil
}

// Process runs the pipeline for a recording and reconciles its status.
// Either the complete chunk list is persisted together with the "completed"
// status, or nothing new is persisted and the status is "failed".
func (s *RecordingService) Process(ctx context.Context, recordingID int) error {
	rec, err := s.repo.GetRecordingByID(ctx, recordingID)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrRecordingNotFound
	}

	if !s.begin(rec.ID) {
		return ErrAlreadyRunning
	}
	defer s.end(rec.ID)

	return s.run(ctx, rec)
}

// run executes the pipeline for a recording whose in-flight slot the caller
// already holds.
func (s *RecordingService) run(ctx context.Context, rec *models.Recording) error {
	runLog, closeLog := s.runLogger(rec.ID)
	defer closeLog()

	runLog.Printf("[START] recording=%d file=%s", rec.ID, rec.FilePath)

	if err := s.repo.UpdateRecordingStatus(ctx, rec.ID, models.StatusProcessing); err != nil {
		return err
	}
	s.emit(rec.ID, models.StatusProcessing, 0)

	drafts, err := s.pipeline.Process(ctx, rec.FilePath)
	if err != nil {
		runLog.Printf("[FAIL] recording=%d err=%v", rec.ID, err)
		s.markFailed(ctx, rec.ID, runLog)
		return err
	}

	if err := s.repo.CompleteRecording(ctx, rec.ID, drafts); err != nil {
		runLog.Printf("[FAIL] recording=%d persist: %v", rec.ID, err)
		s.markFailed(ctx, rec.ID, runLog)
		return err
	}

	s.emit(rec.ID, models.StatusCompleted, len(drafts))
	runLog.Printf("[DONE] recording=%d chunks=%d", rec.ID, len(drafts))
	return nil
}

// CanRetry reports whether a recording is eligible for reprocessing:
// "failed", or "completed" with zero persisted chunks.
func (s *RecordingService) CanRetry(ctx context.Context, recordingID int) error {
	rec, err := s.repo.GetRecordingByID(ctx, recordingID)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrRecordingNotFound
	}
	return s.retryEligible(ctx, rec)
}

func (s *RecordingService) retryEligible(ctx context.Context, rec *models.Recording) error {
	count, err := s.repo.CountChunksByRecording(ctx, rec.ID)
	if err != nil {
		return err
	}

	switch {
	case rec.Status == models.StatusFailed:
		return nil
	case rec.Status == models.StatusCompleted && count == 0:
		return nil
	case rec.Status == models.StatusCompleted:
		return ErrAlreadyCompleted
	default:
		return ErrAlreadyRunning
	}
}

// Retry purges everything a superseded run left behind, then reruns the
// pipeline. Eligibility check, purge and rerun happen under the recording's
// in-flight slot, so a concurrent retry cannot pass the check and then purge
// the artifacts of a run that finished in between.
func (s *RecordingService) Retry(ctx context.Context, recordingID int) error {
	rec, err := s.repo.GetRecordingByID(ctx, recordingID)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrRecordingNotFound
	}

	if !s.begin(rec.ID) {
		return ErrAlreadyRunning
	}
	defer s.end(rec.ID)

	// Re-read inside the critical section; the snapshot taken before the
	// slot was acquired may be stale.
	rec, err = s.repo.GetRecordingByID(ctx, recordingID)
	if err != nil {
		return err
	}
	if rec == nil {
		return ErrRecordingNotFound
	}
	if err := s.retryEligible(ctx, rec); err != nil {
		return err
	}

	if err := s.repo.DeleteChunksByRecording(ctx, rec.ID); err != nil {
		return fmt.Errorf("purge stale chunks: %w", err)
	}
	_ = os.RemoveAll(s.pipeline.ChunkDir(rec.FilePath))

	return s.run(ctx, rec)
}

func (s *RecordingService) markFailed(ctx context.Context, id int, runLog *log.Logger) {
	if err := s.repo.UpdateRecordingStatus(ctx, id, models.StatusFailed); err != nil {
		runLog.Printf("[FAIL] recording=%d status update: %v", id, err)
	}
	s.emit(id, models.StatusFailed, 0)
}

func (s *RecordingService) begin(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, running := s.inflight[id]; running {
		return false
	}
	s.inflight[id] = struct{}{}
	return true
}

func (s *RecordingService) end(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, id)
}

func (s *RecordingService) emit(id int, status string, chunks int) {
	select {
	case s.events <- ports.ProcessEvent{RecordingID: id, Status: status, Chunks: chunks}:
	default:
	}
}

// runLogger mirrors every run's lifecycle into a dedicated file next to
// stdout, one file per invocation.
func (s *RecordingService) runLogger(id int) (*log.Logger, func()) {
	stdout := log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)
	if s.logDir == "" {
		return stdout, func() {}
	}

	_ = os.MkdirAll(s.logDir, 0755)
	name := fmt.Sprintf("recording_%d_%s.log", id, time.Now().Format("2006-01-02T15-04-05"))

	f, err := os.OpenFile(filepath.Join(s.logDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return stdout, func() {}
	}

	l := log.New(io.MultiWriter(os.Stdout, f), "", log.LstdFlags|log.Lmicroseconds)
	return l, func() { _ = f.Close() }
}
