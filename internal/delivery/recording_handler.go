package delivery

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/voxsplit/backend/internal/domain"
	"github.com/voxsplit/backend/internal/models"
	"github.com/voxsplit/backend/internal/ports"
)

type RecordingHandler struct {
	repo      ports.RecordingRepository
	profiles  ports.ProfileRepository
	processor ports.RecordingProcessor
	uploadDir string
	chunkRoot string
	log       *logger.ZapLogger
}

func NewRecordingHandler(
	repo ports.RecordingRepository,
	profiles ports.ProfileRepository,
	processor ports.RecordingProcessor,
	uploadDir, chunkRoot string,
	log *logger.ZapLogger,
) *RecordingHandler {
	return &RecordingHandler{
		repo:      repo,
		profiles:  profiles,
		processor: processor,
		uploadDir: uploadDir,
		chunkRoot: chunkRoot,
		log:       log,
	}
}

// POST /api/recordings
func (h *RecordingHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	// An upload may be filed under a profile up front.
	var profileID *int
	if raw := r.FormValue("profile_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id <= 0 {
			http.Error(w, "invalid profile_id", http.StatusBadRequest)
			return
		}
		p, err := h.profiles.GetProfileByID(r.Context(), id)
		if err != nil {
			http.Error(w, "failed to get profile: "+err.Error(), http.StatusInternalServerError)
			return
		}
		if p == nil {
			http.Error(w, "profile not found", http.StatusNotFound)
			return
		}
		profileID = &id
	}

	name := uuid.New().String() + filepath.Ext(header.Filename)
	path := filepath.Join(h.uploadDir, name)

	dst, err := os.Create(path)
	if err != nil {
		http.Error(w, "failed to store upload: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(dst, file); err != nil {
		dst.Close()
		_ = os.Remove(path)
		http.Error(w, "failed to store upload: "+err.Error(), http.StatusInternalServerError)
		return
	}
	dst.Close()

	rec, err := h.repo.InsertRecording(r.Context(), &models.Recording{
		ProfileID: profileID,
		FilePath:  path,
		Status:    models.StatusPending,
	})
	if err != nil {
		_ = os.Remove(path)
		http.Error(w, "failed to create recording: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "recording uploaded",
		Fields:  map[string]any{"recordingID": rec.ID, "file": header.Filename, "bytes": header.Size},
	})

	// Processing runs in the background; progress is observable over the
	// websocket and through the persisted status. The request context dies
	// with this handler, so the run gets its own.
	go func() {
		_ = h.processor.Process(context.Background(), rec.ID)
	}()

	writeJSON(w, http.StatusCreated, rec)
}

// GET /api/recordings
func (h *RecordingHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)

	recs, err := h.repo.ListRecordings(r.Context(), limit, offset)
	if err != nil {
		http.Error(w, "failed to list recordings: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, recs)
}

// GET /api/recordings/{id}
func (h *RecordingHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rec, err := h.repo.GetRecordingByID(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to get recording: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.Error(w, "recording not found", http.StatusNotFound)
		return
	}

	chunks, err := h.repo.ListChunksByRecording(r.Context(), rec.ID)
	if err != nil {
		http.Error(w, "failed to load chunks: "+err.Error(), http.StatusInternalServerError)
		return
	}
	rec.Chunks = chunks

	writeJSON(w, http.StatusOK, rec)
}

// DELETE /api/recordings/{id}
func (h *RecordingHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	rec, err := h.repo.GetRecordingByID(r.Context(), id)
	if err != nil {
		http.Error(w, "failed to get recording: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if rec == nil {
		http.Error(w, "recording not found", http.StatusNotFound)
		return
	}

	if err := h.repo.DeleteRecording(r.Context(), rec.ID); err != nil {
		http.Error(w, "failed to delete recording: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// The recording owns its artifacts: source upload and chunk audio dir.
	_ = os.Remove(rec.FilePath)
	_ = os.RemoveAll(domain.ChunkDirFor(h.chunkRoot, rec.FilePath))

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "recording deleted",
		Fields:  map[string]any{"recordingID": rec.ID},
	})

	w.WriteHeader(http.StatusNoContent)
}

// POST /api/recordings/{id}/retry
func (h *RecordingHandler) Retry(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.processor.CanRetry(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordingNotFound):
			http.Error(w, err.Error(), http.StatusNotFound)
		case errors.Is(err, domain.ErrAlreadyCompleted), errors.Is(err, domain.ErrAlreadyRunning):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	go func() {
		_ = h.processor.Retry(context.Background(), id)
	}()

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "recording retry accepted",
		Fields:  map[string]any{"recordingID": id},
	})

	writeJSON(w, http.StatusAccepted, map[string]any{"id": id, "status": models.StatusPending})
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	idStr := chi.URLParam(r, "id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
