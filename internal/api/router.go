package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/quill/internal/authservice"
	"github.com/starford/quill/internal/noteservice"
	"github.com/starford/quill/internal/shareservice"
)

// NewRouter creates a chi router with all API routes mounted. Registration,
// login, and the public-token lookup are the only unauthenticated routes;
// everything else sits behind AuthMiddleware.
func NewRouter(auth *authservice.Service, notes *noteservice.Service, shares *shareservice.Service) chi.Router {
	h := NewHandler(auth, notes, shares)

	r := chi.NewRouter()

	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	// Anonymous read path; the token itself is the credential.
	r.Get("/public/{token}", h.GetPublicNote)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(auth))

		r.Get("/auth/me", h.Me)
		r.Post("/auth/logout", h.Logout)

		// Notes CRUD. The static search route takes precedence over {id}.
		r.Get("/notes", h.ListNotes)
		r.Post("/notes", h.CreateNote)
		r.Get("/notes/search", h.SearchNotes)
		r.Get("/notes/{id}", h.GetNote)
		r.Put("/notes/{id}", h.UpdateNote)
		r.Delete("/notes/{id}", h.DeleteNote)

		// Sharing.
		r.Post("/notes/{id}/shares", h.CreateShare)
		r.Get("/notes/{id}/shares", h.ListNoteShares)
		r.Put("/shares/{id}", h.ChangeSharePermission)
		r.Delete("/shares/{id}", h.RevokeShare)
		r.Get("/shares/received", h.ListReceivedShares)
	})

	return r
}
