package delivery

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/voxsplit/backend/internal/ports"
)

type ChunkHandler struct {
	repo ports.RecordingRepository
	log  *logger.ZapLogger
}

func NewChunkHandler(repo ports.RecordingRepository, log *logger.ZapLogger) *ChunkHandler {
	return &ChunkHandler{repo: repo, log: log}
}

// GET /api/recordings/{id}/chunks
func (h *ChunkHandler) ListByRecording(w http.ResponseWriter, r *http.Request) {
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
		http.Error(w, "failed to list chunks: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, chunks)
}

type chunkUpdate struct {
	UserNote *string `json:"user_note"`
}

// PATCH /api/chunks/{id}
func (h *ChunkHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var upd chunkUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	if err := h.repo.UpdateChunkNote(r.Context(), id, upd.UserNote); err != nil {
		if errors.Is(err, ports.ErrChunkNotFound) {
			http.Error(w, "chunk not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to update note: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "chunk note updated",
		Fields:  map[string]any{"chunkID": id},
	})

	w.WriteHeader(http.StatusNoContent)
}
