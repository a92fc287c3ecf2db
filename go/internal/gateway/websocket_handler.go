package gateway

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mcdev12/livequiz/go/internal/auth"
	"github.com/mcdev12/livequiz/go/internal/progression"
	"github.com/rs/zerolog/log"
)

// WebSocketConfig holds configuration for WebSocket connections
type WebSocketConfig struct {
	WriteTimeout    time.Duration
	ReadTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultWebSocketConfig returns default WebSocket configuration
func DefaultWebSocketConfig() WebSocketConfig {
	return WebSocketConfig{
		WriteTimeout:    10 * time.Second,
		ReadTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024, // clients never send payloads
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// CORS is enforced by the outer middleware
			return true
		},
	}
}

// WebSocketHandler upgrades tournament stream requests to WebSocket.
type WebSocketHandler struct {
	opener   *Opener
	manager  *ConnectionManager
	upgrader websocket.Upgrader
	config   WebSocketConfig
}

func NewWebSocketHandler(opener *Opener, manager *ConnectionManager, config WebSocketConfig) *WebSocketHandler {
	defaults := DefaultWebSocketConfig()
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = defaults.WriteTimeout
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = defaults.ReadTimeout
	}
	if config.MaxMessageSize <= 0 {
		config.MaxMessageSize = defaults.MaxMessageSize
	}
	if config.PingInterval <= 0 {
		config.PingInterval = defaults.PingInterval
	}
	if config.CheckOrigin == nil {
		config.CheckOrigin = defaults.CheckOrigin
	}
	return &WebSocketHandler{
		opener:  opener,
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config: config,
	}
}

// HandleTournamentConnection handles GET /ws/tournament?tournament_id=
func (h *WebSocketHandler) HandleTournamentConnection(w http.ResponseWriter, r *http.Request) {
	// Establishment errors are answered with a plain HTTP error before the upgrade
	session, err := h.opener.Open(r.Context(), auth.WithQueryToken(r), r.URL.Query().Get("tournament_id"), TransportWebSocket)
	if err != nil {
		writeOpenError(w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("session_id", session.ID.String()).Msg("failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	log.Info().
		Str("session_id", session.ID.String()).
		Str("user_id", session.UserID.String()).
		Str("tournament_id", session.Tournament.ID.String()).
		Msg("WebSocket connection established")

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	c := &wsConnection{conn: conn, config: h.config}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		c.readPump(cancel)
	}()
	go func() {
		defer wg.Done()
		c.pingPump(ctx, cancel)
	}()

	_, err = h.manager.Serve(ctx, session, c)
	switch {
	case err == nil:
		c.close(websocket.CloseNormalClosure, CloseReasonFinished)
	case errors.Is(err, ErrShuttingDown):
		c.close(websocket.CloseGoingAway, CloseReasonShutdown)
	}

	cancel()
	// Unblocks the read pump
	conn.Close()
	wg.Wait()
}

// wsConnection is the Sink of one WebSocket connection.
type wsConnection struct {
	conn   *websocket.Conn
	config WebSocketConfig
}

func (c *wsConnection) Send(ctx context.Context, snapshot progression.Snapshot) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(snapshot)
}

func (c *wsConnection) close(code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	if err := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.config.WriteTimeout)); err != nil {
		log.Debug().Err(err).Msg("failed to send close frame")
	}
}

// readPump discards client frames and cancels the session once the peer is gone.
func (c *wsConnection) readPump(cancel context.CancelFunc) {
	defer cancel()

	c.conn.SetReadLimit(c.config.MaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Debug().Err(err).Msg("unexpected WebSocket close error")
			}
			return
		}
		_ = c.conn.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
	}
}

// pingPump keeps the connection alive. WriteControl is safe next to the loop's writes.
func (c *wsConnection) pingPump(ctx context.Context, cancel context.CancelFunc) {
	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.config.WriteTimeout)); err != nil {
				log.Debug().Err(err).Msg("failed to send ping")
				cancel()
				return
			}
		}
	}
}
