package gateway

import (
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/livequiz/go/internal/events"
	"github.com/rs/zerolog/log"
)

// Config holds configuration for the gateway service
type Config struct {
	TickInterval    time.Duration
	SSEWriteTimeout time.Duration
	WebSocket       WebSocketConfig
}

// DefaultConfig returns default configuration for the gateway
func DefaultConfig() Config {
	return Config{
		TickInterval:    DefaultTickInterval,
		SSEWriteTimeout: 10 * time.Second,
		WebSocket:       DefaultWebSocketConfig(),
	}
}

// Service wires the establishment, loop and transport adapters together.
type Service struct {
	connectionManager *ConnectionManager
	sseHandler        *SSEHandler
	wsHandler         *WebSocketHandler
	streamService     *StreamService
	stateHandler      *StateHandler
}

// NewService creates the gateway service. A nil publisher logs lifecycle events.
func NewService(config Config, opener *Opener, publisher events.Publisher, clock clockwork.Clock) *Service {
	broadcaster := NewBroadcaster(clock, config.TickInterval)
	connectionManager := NewConnectionManager(broadcaster, publisher, clock)

	return &Service{
		connectionManager: connectionManager,
		sseHandler:        NewSSEHandler(opener, connectionManager, config.SSEWriteTimeout),
		wsHandler:         NewWebSocketHandler(opener, connectionManager, config.WebSocket),
		streamService:     NewStreamService(opener, connectionManager),
		stateHandler:      NewStateHandler(opener),
	}
}

// RegisterRoutes registers the streaming and REST routes
func (s *Service) RegisterRoutes(mux *http.ServeMux, opts ...connect.HandlerOption) {
	mux.HandleFunc("GET /api/tournaments/{id}/stream", s.sseHandler.HandleStream)
	mux.HandleFunc("GET /api/tournaments/{id}/state", s.stateHandler.HandleGetTournamentState)
	mux.HandleFunc("GET /ws/tournament", s.wsHandler.HandleTournamentConnection)
	mux.HandleFunc("GET /api/stats", s.HandleStats)
	mux.Handle(s.streamService.Handler(opts...))
	log.Info().Msg("gateway routes registered")
}

// HandleStats handles GET /api/stats
func (s *Service) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.connectionManager.Stats())
}

// Stats returns statistics about live sessions.
func (s *Service) Stats() ConnectionStats {
	return s.connectionManager.Stats()
}

// CloseAll ends every live stream. Register it with http.Server.RegisterOnShutdown.
func (s *Service) CloseAll() {
	s.connectionManager.CloseAll()
}

// Close flushes pending lifecycle events. Call it after the HTTP server has shut down.
func (s *Service) Close() {
	s.connectionManager.Close()
}

// HandleHealth handles GET /health
func HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		log.Error().Err(err).Msg("failed to write health check response")
	}
}
