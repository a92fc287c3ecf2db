package gateway

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/livequiz/go/internal/events"
	"github.com/rs/zerolog/log"
)

// ErrShuttingDown is the cancellation cause of sessions closed by CloseAll.
var ErrShuttingDown = errors.New("server shutting down")

// Close reasons carried by stream.closed events.
const (
	CloseReasonFinished   = "finished"
	CloseReasonClientGone = "client_gone"
	CloseReasonShutdown   = "shutdown"
	CloseReasonSendFailed = "send_failed"
)

// ConnectionManager tracks live sessions and runs their broadcast loops.
type ConnectionManager struct {
	// Sessions organized by tournament ID
	tournamentSessions map[uuid.UUID]map[*Session]context.CancelCauseFunc
	mu                 sync.RWMutex
	closed             bool

	broadcaster *Broadcaster
	publisher   *events.AsyncPublisher
	clock       clockwork.Clock
}

// ConnectionStats is the payload of the stats endpoint.
type ConnectionStats struct {
	TotalConnections      int            `json:"total_connections"`
	ActiveTournaments     int            `json:"active_tournaments"`
	TournamentConnections map[string]int `json:"tournament_connections"`
	TransportConnections  map[string]int `json:"transport_connections"`
}

// NewConnectionManager creates a manager. A nil publisher logs lifecycle events.
// Events are handed to a background worker, call Close to drain it.
func NewConnectionManager(broadcaster *Broadcaster, publisher events.Publisher, clock clockwork.Clock) *ConnectionManager {
	if publisher == nil {
		publisher = events.LogPublisher{}
	}
	return &ConnectionManager{
		tournamentSessions: make(map[uuid.UUID]map[*Session]context.CancelCauseFunc),
		broadcaster:        broadcaster,
		publisher:          events.NewAsyncPublisher(publisher, events.DefaultAsyncConfig()),
		clock:              clock,
	}
}

// Serve registers the session, runs its loop and unregisters it when the loop ends.
func (cm *ConnectionManager) Serve(ctx context.Context, s *Session, sink Sink) (Result, error) {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if err := cm.register(s, cancel); err != nil {
		return Result{}, err
	}
	defer cm.unregister(s)

	cm.publish(events.Event{Type: events.EventTypeStreamOpened}, s)

	res, err := cm.broadcaster.Run(ctx, s, sink)

	reason := closeReason(ctx, res, err)
	cm.publish(events.Event{Type: events.EventTypeStreamClosed, Reason: reason, Ticks: res.Ticks}, s)

	logEvent := log.Info()
	if reason == CloseReasonSendFailed {
		logEvent = log.Warn().Err(err)
	}
	logEvent.
		Str("session_id", s.ID.String()).
		Str("tournament_id", s.Tournament.ID.String()).
		Str("transport", s.Transport).
		Str("reason", reason).
		Int("ticks", res.Ticks).
		Msg("stream closed")

	if reason == CloseReasonShutdown {
		return res, ErrShuttingDown
	}
	return res, err
}

// CloseAll cancels every live session and rejects new ones.
func (cm *ConnectionManager) CloseAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.closed = true
	count := 0
	for _, sessions := range cm.tournamentSessions {
		for _, cancel := range sessions {
			cancel(ErrShuttingDown)
			count++
		}
	}

	log.Info().Int("sessions", count).Msg("closing all sessions")
}

// Close delivers the queued lifecycle events. Call it after the streams have ended.
func (cm *ConnectionManager) Close() {
	cm.publisher.Close()
}

// Stats returns statistics about live sessions.
func (cm *ConnectionManager) Stats() ConnectionStats {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	stats := ConnectionStats{
		TournamentConnections: make(map[string]int),
		TransportConnections:  make(map[string]int),
	}
	for tournamentID, sessions := range cm.tournamentSessions {
		stats.TotalConnections += len(sessions)
		stats.TournamentConnections[tournamentID.String()] = len(sessions)
		for s := range sessions {
			stats.TransportConnections[s.Transport]++
		}
	}
	stats.ActiveTournaments = len(cm.tournamentSessions)
	return stats
}

func (cm *ConnectionManager) register(s *Session, cancel context.CancelCauseFunc) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	if cm.closed {
		return ErrShuttingDown
	}

	tournamentID := s.Tournament.ID
	if cm.tournamentSessions[tournamentID] == nil {
		cm.tournamentSessions[tournamentID] = make(map[*Session]context.CancelCauseFunc)
	}
	cm.tournamentSessions[tournamentID][s] = cancel

	log.Debug().
		Str("session_id", s.ID.String()).
		Str("tournament_id", tournamentID.String()).
		Int("total_connections", len(cm.tournamentSessions[tournamentID])).
		Msg("session registered")
	return nil
}

func (cm *ConnectionManager) unregister(s *Session) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	tournamentID := s.Tournament.ID
	if sessions, exists := cm.tournamentSessions[tournamentID]; exists {
		delete(sessions, s)

		// Clean up empty tournament pools
		if len(sessions) == 0 {
			delete(cm.tournamentSessions, tournamentID)
		}
	}
}

func (cm *ConnectionManager) publish(event events.Event, s *Session) {
	event.ID = uuid.New()
	event.TournamentID = s.Tournament.ID
	event.UserID = s.UserID
	event.SessionID = s.ID
	event.Transport = s.Transport
	event.At = cm.clock.Now()

	// Never blocks, delivery happens on the publisher's worker
	if err := cm.publisher.Publish(context.Background(), event); err != nil {
		log.Warn().
			Err(err).
			Str("event_type", string(event.Type)).
			Str("session_id", s.ID.String()).
			Msg("lifecycle event dropped")
	}
}

func closeReason(ctx context.Context, res Result, err error) string {
	switch {
	case res.Finished:
		return CloseReasonFinished
	case errors.Is(context.Cause(ctx), ErrShuttingDown):
		return CloseReasonShutdown
	case errors.Is(err, ErrTickFailed):
		return CloseReasonSendFailed
	default:
		return CloseReasonClientGone
	}
}
