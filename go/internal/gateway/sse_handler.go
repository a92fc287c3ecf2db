package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mcdev12/livequiz/go/internal/auth"
	"github.com/mcdev12/livequiz/go/internal/progression"
	"github.com/rs/zerolog/log"
)

// SSEEventName is the event field of every snapshot frame.
const SSEEventName = "progression"

// SSEHandler streams snapshots as text/event-stream.
type SSEHandler struct {
	opener       *Opener
	manager      *ConnectionManager
	writeTimeout time.Duration
}

func NewSSEHandler(opener *Opener, manager *ConnectionManager, writeTimeout time.Duration) *SSEHandler {
	return &SSEHandler{
		opener:       opener,
		manager:      manager,
		writeTimeout: writeTimeout,
	}
}

// HandleStream handles GET /api/tournaments/{id}/stream
func (h *SSEHandler) HandleStream(w http.ResponseWriter, r *http.Request) {
	session, err := h.opener.Open(r.Context(), auth.WithQueryToken(r), r.PathValue("id"), TransportSSE)
	if err != nil {
		writeOpenError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sink := &sseSink{
		w:            w,
		rc:           http.NewResponseController(w),
		writeTimeout: h.writeTimeout,
	}

	log.Info().
		Str("session_id", session.ID.String()).
		Str("user_id", session.UserID.String()).
		Str("tournament_id", session.Tournament.ID.String()).
		Msg("SSE stream established")

	// Errors are logged by the manager; the response is already committed.
	_, _ = h.manager.Serve(r.Context(), session, sink)
}

type sseSink struct {
	w            http.ResponseWriter
	rc           *http.ResponseController
	writeTimeout time.Duration
}

func (s *sseSink) Send(ctx context.Context, snapshot progression.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if s.writeTimeout > 0 {
		// Write deadlines are wall-clock, independent of the session clock.
		if err := s.rc.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
			return fmt.Errorf("set write deadline: %w", err)
		}
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", SSEEventName, data); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	if err := s.rc.Flush(); err != nil {
		return fmt.Errorf("flush event: %w", err)
	}
	return nil
}
