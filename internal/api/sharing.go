package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quill/internal/models"
)

// CreateShare handles POST /notes/{id}/shares.
func (h *Handler) CreateShare(w http.ResponseWriter, r *http.Request) {
	var req CreateShareRequest
	if !decode(w, r, &req) {
		return
	}
	perm := models.Permission(req.Permission)
	if perm == "" {
		perm = models.PermissionRead
	}
	detail, err := h.shares.Create(r.Context(), chi.URLParam(r, "id"), requestUser(r), req.Email, perm)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ShareResponse{
		ID:         detail.Share.ID,
		NoteID:     detail.Share.NoteID,
		Recipient:  ShareUser{Name: detail.RecipientName, Email: detail.RecipientEmail},
		Permission: detail.Share.Permission,
		CreatedAt:  detail.Share.CreatedAt,
	})
}

// ListNoteShares handles GET /notes/{id}/shares (owner-only view).
func (h *Handler) ListNoteShares(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	rows, err := h.shares.ListForNote(r.Context(), chi.URLParam(r, "id"), requestUser(r), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]ShareResponse, len(rows))
	for i, row := range rows {
		out[i] = ShareResponse{
			ID:         row.Share.ID,
			NoteID:     row.Share.NoteID,
			Recipient:  ShareUser{Name: row.RecipientName, Email: row.RecipientEmail},
			Permission: row.Share.Permission,
			CreatedAt:  row.Share.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"shares": out})
}

// ChangeSharePermission handles PUT /shares/{id}.
func (h *Handler) ChangeSharePermission(w http.ResponseWriter, r *http.Request) {
	var req UpdateShareRequest
	if !decode(w, r, &req) {
		return
	}
	share, err := h.shares.ChangePermission(r.Context(), chi.URLParam(r, "id"), requestUser(r),
		models.Permission(req.Permission))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, share)
}

// RevokeShare handles DELETE /shares/{id}.
func (h *Handler) RevokeShare(w http.ResponseWriter, r *http.Request) {
	if err := h.shares.Revoke(r.Context(), chi.URLParam(r, "id"), requestUser(r)); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListReceivedShares handles GET /shares/received (the recipient's inbox).
func (h *Handler) ListReceivedShares(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)
	rows, total, err := h.shares.ListReceived(r.Context(), requestUser(r), limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]ReceivedShareResponse, len(rows))
	for i, row := range rows {
		out[i] = ReceivedShareResponse{
			ID:         row.Share.ID,
			Note:       row.Note,
			SharedBy:   ShareUser{Name: row.GrantedByName},
			Permission: row.Share.Permission,
			CreatedAt:  row.Share.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, ReceivedShareListResponse{Shares: out, Total: total})
}
