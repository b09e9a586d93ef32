package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quill/internal/apperr"
	"github.com/starford/quill/internal/authservice"
	"github.com/starford/quill/internal/models"
	"github.com/starford/quill/internal/noteservice"
	"github.com/starford/quill/internal/shareservice"
	"github.com/starford/quill/internal/store"
)

const maxBodyBytes = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	auth   *authservice.Service
	notes  *noteservice.Service
	shares *shareservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(auth *authservice.Service, notes *noteservice.Service, shares *shareservice.Service) *Handler {
	return &Handler{auth: auth, notes: notes, shares: shares}
}

// decode reads and validates a JSON request body into req.
func decode[T interface{ Validate() error }](w http.ResponseWriter, r *http.Request, req *T) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return false
	}
	if err := (*req).Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return false
	}
	return true
}

func pagination(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// CreateNote handles POST /notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decode(w, r, &req) {
		return
	}
	note, err := h.notes.Create(r.Context(), requestUser(r), noteservice.CreateInput{
		Title:      req.Title,
		Content:    req.Content,
		Tags:       req.Tags,
		Visibility: models.Visibility(req.Visibility),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// ListNotes handles GET /notes with optional visibility filter and paging.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	notes, total, err := h.notes.List(r.Context(), requestUser(r), store.NoteFilter{
		Visibility: models.Visibility(r.URL.Query().Get("visibility")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: total})
}

// SearchNotes handles GET /notes/search. The scope is the notes the requester
// owns or has a share on; q matches title, content, and tags, and repeated tag
// parameters narrow by tag.
func (h *Handler) SearchNotes(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	q := r.URL.Query()
	notes, err := h.notes.Search(r.Context(), requestUser(r), store.SearchFilter{
		Query:      q.Get("q"),
		Tags:       q["tag"],
		Visibility: models.Visibility(q.Get("visibility")),
		Limit:      limit,
		Offset:     offset,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SearchNotesResponse{Notes: notes, Query: q.Get("q")})
}

// GetNote handles GET /notes/{id}.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, lvl, err := h.notes.Get(r.Context(), chi.URLParam(r, "id"), requestUser(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NoteResponse{Note: *note, Permission: lvl})
}

// UpdateNote handles PUT /notes/{id}.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req UpdateNoteRequest
	if !decode(w, r, &req) {
		return
	}
	in := noteservice.UpdateInput{
		Title:   req.Title,
		Content: req.Content,
		Tags:    req.Tags,
	}
	if req.Visibility != nil {
		v := models.Visibility(*req.Visibility)
		in.Visibility = &v
	}
	note, err := h.notes.Update(r.Context(), chi.URLParam(r, "id"), requestUser(r), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /notes/{id}.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.notes.Delete(r.Context(), chi.URLParam(r, "id"), requestUser(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPublicNote handles GET /public/{token}. No authentication; the token is
// the only credential, and the response is the reduced projection.
func (h *Handler) GetPublicNote(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		writeError(w, apperr.ErrNotFound)
		return
	}
	note, err := h.notes.GetPublic(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}
