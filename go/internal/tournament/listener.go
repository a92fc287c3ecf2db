package tournament

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

type ListenerConfig struct {
	DatabaseURL   string        // Postgres DSN for LISTEN/NOTIFY
	NotifyChannel string        // Channel name to LISTEN on
	PingInterval  time.Duration // How often to check the listener connection
	MinReconnect  time.Duration
	MaxReconnect  time.Duration
}

func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		NotifyChannel: "tournament_changed",
		PingInterval:  90 * time.Second,
		MinReconnect:  10 * time.Second,
		MaxReconnect:  time.Minute,
	}
}

// Invalidator drops cached tournaments.
type Invalidator interface {
	Invalidate(id uuid.UUID)
}

// notificationSource is the slice of pq.Listener this package uses.
type notificationSource interface {
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

// InvalidationListener evicts cached tournaments when the database reports a change.
type InvalidationListener struct {
	listener    notificationSource
	invalidator Invalidator
	cfg         ListenerConfig
	// onReconnect runs when the connection was lost and notifications may be missing.
	onReconnect func()
	running     atomic.Bool
}

func NewInvalidationListener(invalidator Invalidator, onReconnect func(), cfg ListenerConfig) (*InvalidationListener, error) {
	l := pq.NewListener(
		cfg.DatabaseURL,
		cfg.MinReconnect,
		cfg.MaxReconnect,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("tournament listener event")
			}
		},
	)
	if err := l.Listen(cfg.NotifyChannel); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("failed to listen to channel: %w", err)
	}

	log.Info().
		Str("channel", cfg.NotifyChannel).
		Msg("listening for tournament changes")

	return newInvalidationListener(l, invalidator, onReconnect, cfg), nil
}

func newInvalidationListener(src notificationSource, invalidator Invalidator, onReconnect func(), cfg ListenerConfig) *InvalidationListener {
	return &InvalidationListener{
		listener:    src,
		invalidator: invalidator,
		cfg:         cfg,
		onReconnect: onReconnect,
	}
}

// Start blocks until ctx is cancelled.
func (l *InvalidationListener) Start(ctx context.Context) error {
	l.running.Store(true)
	defer l.running.Store(false)

	pingTicker := time.NewTicker(l.cfg.PingInterval)
	defer pingTicker.Stop()

	notifications := l.listener.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("tournament listener shutting down")
			return l.listener.Close()
		case note := <-notifications:
			if note == nil {
				// nil notification means the connection was re-established; changes may have been missed
				if l.onReconnect != nil {
					l.onReconnect()
				}
				continue
			}
			l.handleNotification(note.Extra)
		case <-pingTicker.C:
			if err := l.listener.Ping(); err != nil {
				log.Error().Err(err).Msg("failed to ping tournament listener")
			}
		}
	}
}

// Active reports whether Start is running.
func (l *InvalidationListener) Active() bool {
	return l.running.Load()
}

// handleNotification evicts the tournament named by the payload.
func (l *InvalidationListener) handleNotification(extra string) {
	id, err := uuid.Parse(extra)
	if err != nil {
		log.Error().Err(err).Str("payload", extra).Msg("invalid tournament ID in notification")
		return
	}

	l.invalidator.Invalidate(id)
	log.Debug().Str("tournament_id", id.String()).Msg("tournament cache entry invalidated")
}
