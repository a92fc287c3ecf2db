package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// EventType names a stream lifecycle event.
type EventType string

const (
	EventTypeStreamOpened EventType = "stream.opened"
	EventTypeStreamClosed EventType = "stream.closed"
)

// Event describes one connection opening or closing.
type Event struct {
	ID           uuid.UUID `json:"id"`
	Type         EventType `json:"type"`
	TournamentID uuid.UUID `json:"tournament_id"`
	UserID       uuid.UUID `json:"user_id"`
	SessionID    uuid.UUID `json:"session_id"`
	Transport    string    `json:"transport"`
	Reason       string    `json:"reason,omitempty"`
	Ticks        int       `json:"ticks,omitempty"`
	At           time.Time `json:"at"`
}

// Publisher delivers lifecycle events. Delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// LogPublisher writes events to the log when no broker is configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, event Event) error {
	log.Info().
		Str("event_id", event.ID.String()).
		Str("event_type", string(event.Type)).
		Str("tournament_id", event.TournamentID.String()).
		Str("session_id", event.SessionID.String()).
		Str("transport", event.Transport).
		Str("reason", event.Reason).
		Int("ticks", event.Ticks).
		Msg("stream lifecycle event")
	return nil
}
