package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/voxsplit/backend/internal/delivery"
	ws "github.com/voxsplit/backend/internal/delivery/ws"
	"github.com/voxsplit/backend/internal/domain"
	"github.com/voxsplit/backend/internal/infra"
	"go.uber.org/zap"
)

func main() {

	// LOGGER
	zcore, _ := zap.NewProduction()
	zl := logger.NewZapLogger(zcore.Sugar())

	// ENV
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		panic("DATABASE_URL is not set")
	}

	// A missing provider key is a configuration error, caught here and not
	// on the first upload.
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		panic("OPENAI_API_KEY is not set")
	}

	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "uploads"
	}
	chunkRoot := filepath.Join(uploadDir, "chunks")

	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}

	for _, dir := range []string{uploadDir, chunkRoot, logDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			panic("cannot create dir " + dir + ": " + err.Error())
		}
	}

	// POSTGRES
	ctx := context.Background()

	pool, err := infra.NewPgxPool(ctx, dsn)
	if err != nil {
		panic("cannot connect postgres: " + err.Error())
	}
	defer pool.Close()

	repo := infra.NewPostgresRecordingRepo(pool)
	profileRepo := infra.NewPostgresProfileRepo(pool)

	// PIPELINE
	toolchain := infra.NewFFmpegToolchain()
	stt := infra.NewWhisperClient(apiKey)
	structurer := infra.NewStructurerClient(apiKey)

	pipeline := domain.NewPipeline(toolchain, toolchain, toolchain, stt, structurer, chunkRoot)
	service := domain.NewRecordingService(repo, pipeline, logDir)

	// Crash recovery before any request is accepted: a recording stuck in
	// "processing" lost its run with the previous process.
	if _, err := service.RecoverStale(ctx); err != nil {
		panic("stale sweep failed: " + err.Error())
	}

	// WS HUB
	hub := ws.NewHub()

	go func() {
		for ev := range service.Events() {
			payload, err := json.Marshal(map[string]any{
				"recordingId": ev.RecordingID,
				"status":      ev.Status,
				"chunks":      ev.Chunks,
			})
			if err != nil {
				log.Printf("[SEND][ERR] json marshal failed: %v", err)
				continue
			}
			hub.Broadcast(ev.RecordingID, payload)
		}
	}()

	// HANDLERS
	hProfile := delivery.NewProfileHandler(profileRepo, chunkRoot, zl)
	hRec := delivery.NewRecordingHandler(repo, profileRepo, service, uploadDir, chunkRoot, zl)
	hChunk := delivery.NewChunkHandler(repo, zl)

	// ROUTER
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	}))

	delivery.RegisterRoutes(r, hProfile, hRec, hChunk)

	r.Get("/ws", ws.ProgressHandler(hub))

	// Materialized chunk audio.
	r.Handle("/audio/*", http.StripPrefix("/audio/", http.FileServer(http.Dir(chunkRoot))))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	zl.Log(logger.LogEntry{
		Level:   "info",
		Message: "server started",
		Fields:  map[string]any{"port": port},
	})

	if err := http.ListenAndServe(":"+port, r); err != nil {
		zl.Log(logger.LogEntry{
			Level:   "error",
			Message: "server crashed",
			Error:   err,
		})
	}
}
