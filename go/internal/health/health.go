package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

type Status struct {
	Healthy           bool     `json:"healthy"`
	DatabaseConnected bool     `json:"database_connected"`
	NATSConnected     bool     `json:"nats_connected"`
	ListenerActive    bool     `json:"listener_active"`
	ActiveStreams     int      `json:"active_streams"`
	Errors            []string `json:"errors"`
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Connection is satisfied by the JetStream publisher.
type Connection interface {
	IsConnected() bool
}

// Listener is satisfied by the tournament invalidation listener.
type Listener interface {
	Active() bool
}

// Checker reports readiness of the configured dependencies. Nil dependencies
// are not configured and are skipped.
type Checker struct {
	DB       Pinger
	NATS     Connection
	Listener Listener
	// Streams returns the number of live sessions.
	Streams func() int
	Timeout time.Duration
}

func (h *Checker) Check(ctx context.Context) Status {
	status := Status{
		Healthy: true,
		Errors:  []string{},
	}

	// Check database connection
	if h.DB != nil {
		if err := h.DB.PingContext(ctx); err != nil {
			status.Healthy = false
			status.Errors = append(status.Errors, fmt.Sprintf("database ping failed: %v", err))
		} else {
			status.DatabaseConnected = true
		}
	}

	// Check NATS connection
	if h.NATS != nil {
		status.NATSConnected = h.NATS.IsConnected()
		if !status.NATSConnected {
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
	}

	if h.Listener != nil {
		status.ListenerActive = h.Listener.Active()
		if !status.ListenerActive {
			status.Healthy = false
			status.Errors = append(status.Errors, "tournament listener not active")
		}
	}

	if h.Streams != nil {
		status.ActiveStreams = h.Streams()
	}
	return status
}

// ServeHTTP handles GET /health/ready
func (h *Checker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(status); err != nil {
		log.Error().Err(err).Msg("failed to encode health status")
	}
}

// MetricsHandler serves the status in Prometheus text format.
func (h *Checker) MetricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		fmt.Fprint(w, Export(h.Check(ctx)))
	}
}

func Export(status Status) string {
	return fmt.Sprintf(`# HELP livequiz_healthy Whether the gateway is healthy
# TYPE livequiz_healthy gauge
livequiz_healthy %d

# HELP livequiz_active_streams Current number of live progression streams
# TYPE livequiz_active_streams gauge
livequiz_active_streams %d

# HELP livequiz_database_connected Whether the database is connected
# TYPE livequiz_database_connected gauge
livequiz_database_connected %d

# HELP livequiz_nats_connected Whether NATS is connected
# TYPE livequiz_nats_connected gauge
livequiz_nats_connected %d

# HELP livequiz_listener_active Whether the tournament listener is active
# TYPE livequiz_listener_active gauge
livequiz_listener_active %d
`,
		gauge(status.Healthy),
		status.ActiveStreams,
		gauge(status.DatabaseConnected),
		gauge(status.NATSConnected),
		gauge(status.ListenerActive),
	)
}

func gauge(b bool) int {
	if b {
		return 1
	}
	return 0
}
