package delivery

import (
	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, hProfile *ProfileHandler, hRec *RecordingHandler, hChunk *ChunkHandler) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/profiles", hProfile.Create)
		r.Get("/profiles", hProfile.List)
		r.Get("/profiles/{id}", hProfile.Get)
		r.Delete("/profiles/{id}", hProfile.Delete)

		r.Post("/recordings", hRec.Upload)
		r.Get("/recordings", hRec.List)
		r.Get("/recordings/{id}", hRec.Get)
		r.Delete("/recordings/{id}", hRec.Delete)
		r.Post("/recordings/{id}/retry", hRec.Retry)

		r.Get("/recordings/{id}/chunks", hChunk.ListByRecording)
		r.Patch("/chunks/{id}", hChunk.UpdateNote)
	})
}
