package api

import (
	"log/slog"
	"net/http"

	"github.com/tatweerlabs/tahlil/internal/session"
)

type sessionHandler struct {
	sessions *session.Store
	logger   *slog.Logger
}

// deleteSession handles DELETE /api/sessions/{id}. Deleting an unknown
// session is a no-op and still returns 204 so the call is idempotent.
func (h *sessionHandler) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "invalid_id", "session id is required", h.logger)
		return
	}

	h.sessions.Delete(id)
	h.logger.Debug("session deleted", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}
