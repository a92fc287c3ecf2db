package gateway

import (
	"net/http"

	"github.com/mcdev12/livequiz/go/internal/auth"
	"github.com/mcdev12/livequiz/go/internal/progression"
)

// StateHandler serves one-shot snapshots under the same establishment rules as the streams.
type StateHandler struct {
	opener *Opener
}

func NewStateHandler(opener *Opener) *StateHandler {
	return &StateHandler{opener: opener}
}

// HandleGetTournamentState handles GET /api/tournaments/{id}/state
func (h *StateHandler) HandleGetTournamentState(w http.ResponseWriter, r *http.Request) {
	session, err := h.opener.Open(r.Context(), auth.WithQueryToken(r), r.PathValue("id"), TransportHTTP)
	if err != nil {
		writeOpenError(w, err)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, progression.Build(h.opener.Now(), session.Tournament, session.Answered))
}
