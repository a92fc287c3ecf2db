package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/livequiz/go/internal/answers"
	"github.com/mcdev12/livequiz/go/internal/auth"
	"github.com/mcdev12/livequiz/go/internal/models"
)

// ErrInvalidTournamentID is returned when the tournament id is missing or not a UUID.
var ErrInvalidTournamentID = errors.New("invalid tournament id")

// Transport names the delivery channel of a session.
const (
	TransportSSE       = "sse"
	TransportWebSocket = "websocket"
	TransportConnect   = "connect"
	TransportHTTP      = "http"
)

// TournamentLoader is what establishment needs from the tournament app.
type TournamentLoader interface {
	LoadTournamentWithQuestions(ctx context.Context, id uuid.UUID) (*models.Tournament, error)
	CheckRegistration(ctx context.Context, userID, tournamentID uuid.UUID) error
}

// AnswerFetcher reads the answered set of a user once.
type AnswerFetcher interface {
	Fetch(ctx context.Context, userID, tournamentID uuid.UUID) (answers.Set, error)
}

// Session is the per-connection state. Tournament is shared and read-only,
// Answered is fixed for the lifetime of the session.
type Session struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Tournament *models.Tournament
	Answered   answers.Set
	Transport  string
	OpenedAt   time.Time
}

// Opener establishes sessions. Nothing is streamed unless Open succeeds.
type Opener struct {
	resolver    auth.Resolver
	tournaments TournamentLoader
	answers     AnswerFetcher
	clock       clockwork.Clock
}

func NewOpener(resolver auth.Resolver, tournaments TournamentLoader, answers AnswerFetcher, clock clockwork.Clock) *Opener {
	return &Opener{
		resolver:    resolver,
		tournaments: tournaments,
		answers:     answers,
		clock:       clock,
	}
}

// Open authenticates the caller, loads the tournament, applies the
// registration gate and fetches the answered set, in that order.
func (o *Opener) Open(ctx context.Context, header http.Header, rawTournamentID, transport string) (*Session, error) {
	userID, err := o.resolver.Resolve(ctx, header)
	if err != nil {
		return nil, err
	}

	tournamentID, err := parseTournamentID(rawTournamentID)
	if err != nil {
		return nil, err
	}

	t, err := o.tournaments.LoadTournamentWithQuestions(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	if err := o.tournaments.CheckRegistration(ctx, userID, tournamentID); err != nil {
		return nil, err
	}

	answered, err := o.answers.Fetch(ctx, userID, tournamentID)
	if err != nil {
		return nil, err
	}

	return &Session{
		ID:         uuid.New(),
		UserID:     userID,
		Tournament: t,
		Answered:   answered,
		Transport:  transport,
		OpenedAt:   o.clock.Now(),
	}, nil
}

// Now is the clock the opener stamps sessions with.
func (o *Opener) Now() time.Time {
	return o.clock.Now()
}

func parseTournamentID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: tournament id is required", ErrInvalidTournamentID)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %q", ErrInvalidTournamentID, raw)
	}
	return id, nil
}
