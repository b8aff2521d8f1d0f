package delivery

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/voxsplit/backend/internal/domain"
	"github.com/voxsplit/backend/internal/models"
	"github.com/voxsplit/backend/internal/ports"
)

type ProfileHandler struct {
	profiles  ports.ProfileRepository
	chunkRoot string
	log       *logger.ZapLogger
}

func NewProfileHandler(profiles ports.ProfileRepository, chunkRoot string, log *logger.ZapLogger) *ProfileHandler {
	return &ProfileHandler{
		profiles:  profiles,
		chunkRoot: chunkRoot,
		log:       log,
	}
}

type profileCreate struct {
	Title      string    `json:"title"`
	RecordedAt time.Time `json:"recorded_at"`
	Summary    *string   `json:"summary"`
}

// POST /api/profiles
func (h *ProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in profileCreate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if in.Title == "" {
		http.Error(w, "title is required", http.StatusBadRequest)
		return
	}
	if in.RecordedAt.IsZero() {
		http.Error(w, "recorded_at is required", http.StatusBadRequest)
		return
	}

	p, err := h.profiles.InsertProfile(r.Context(), &models.Profile{
		Title:      in.Title,
		RecordedAt: in.RecordedAt,
		Summary:    in.Summary,
	})
	if err != nil {
		http.Error(w, "failed to create profile: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "profile created",
		Fields:  map[string]any{"profileID": p.ID, "title": p.Title},
	})

	writeJSON(w, http.StatusCreated, p)
}

// GET /api/profiles
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 100)
	offset := queryInt(r, "offset", 0)

	profiles, err := h.profiles.ListProfiles(r.Context(), limit, offset)
	if err != nil {
		http.Error(w, "failed to list profiles: "+err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

// GET /api/profiles/{id}
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
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

	writeJSON(w, http.StatusOK, p)
}

// DELETE /api/profiles/{id}
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
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

	if err := h.profiles.DeleteProfile(r.Context(), p.ID); err != nil {
		http.Error(w, "failed to delete profile: "+err.Error(), http.StatusInternalServerError)
		return
	}

	// Rows cascade in the database; the files cascade here.
	for _, rec := range p.Recordings {
		_ = os.Remove(rec.FilePath)
		_ = os.RemoveAll(domain.ChunkDirFor(h.chunkRoot, rec.FilePath))
	}

	h.log.Log(logger.LogEntry{
		Level:   "info",
		Message: "profile deleted",
		Fields:  map[string]any{"profileID": p.ID, "recordings": len(p.Recordings)},
	})

	w.WriteHeader(http.StatusNoContent)
}
