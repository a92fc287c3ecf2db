package gateway

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/livequiz/go/internal/answers"
	"github.com/mcdev12/livequiz/go/internal/auth"
	"github.com/mcdev12/livequiz/go/internal/events"
	"github.com/mcdev12/livequiz/go/internal/memory"
	"github.com/mcdev12/livequiz/go/internal/models"
	"github.com/mcdev12/livequiz/go/internal/progression"
	"github.com/mcdev12/livequiz/go/internal/tournament"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

const receiveTimeout = 5 * time.Second

type fixture struct {
	clock      *clockwork.FakeClock
	store      *memory.Store
	tournament *models.Tournament
	userID     uuid.UUID
	opener     *Opener
	publisher  *recordingPublisher
}

// newFixture seeds a three question tournament starting at t0 and a paid
// registration for userID. The clock starts at now.
func newFixture(t *testing.T, now time.Time, requireRegistration bool) *fixture {
	t.Helper()

	clock := clockwork.NewFakeClockAt(now)
	store := memory.NewStore()

	tour := &models.Tournament{
		ID:                  uuid.New(),
		Title:               "Friday Trivia",
		Status:              models.TournamentStatusPublished,
		StartTime:           t0,
		DurationPerQuestion: 30 * time.Second,
		TotalQuestions:      3,
	}
	for i, text := range []string{"Capital of France?", "2 + 2?", "Largest planet?"} {
		tour.Questions = append(tour.Questions, models.Question{
			ID:       uuid.New(),
			Text:     text,
			Position: i + 1,
			Options:  []models.Option{{ID: uuid.New(), Text: "A"}, {ID: uuid.New(), Text: "B"}},
		})
	}
	store.PutTournament(tour)

	userID := uuid.New()
	store.Register(userID, tour.ID, true)

	var registrations tournament.RegistrationChecker
	if requireRegistration {
		registrations = store
	}
	app := tournament.NewApp(store, registrations, tournament.NewCache(time.Minute, clock))
	opener := NewOpener(auth.HeaderResolver{}, app, answers.NewLookup(store, time.Second), clock)

	return &fixture{
		clock:      clock,
		store:      store,
		tournament: tour,
		userID:     userID,
		opener:     opener,
		publisher:  &recordingPublisher{},
	}
}

func (f *fixture) header() http.Header {
	header := http.Header{}
	header.Set(auth.UserIDHeader, f.userID.String())
	return header
}

func (f *fixture) open(t *testing.T) *Session {
	t.Helper()
	s, err := f.opener.Open(context.Background(), f.header(), f.tournament.ID.String(), TransportSSE)
	require.NoError(t, err)
	return s
}

// advance waits until the loop sleeps on the clock, then moves it forward.
func (f *fixture) advance(t *testing.T, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), receiveTimeout)
	defer cancel()
	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
	f.clock.Advance(d)
}

type recordingSink struct {
	snapshots chan progression.Snapshot
	err       error
	mu        sync.Mutex
	calls     int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{snapshots: make(chan progression.Snapshot, 16)}
}

func (s *recordingSink) Send(ctx context.Context, snapshot progression.Snapshot) error {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.snapshots <- snapshot
	return nil
}

func (s *recordingSink) next(t *testing.T) progression.Snapshot {
	t.Helper()
	select {
	case snap := <-s.snapshots:
		return snap
	case <-time.After(receiveTimeout):
		t.Fatal("timed out waiting for snapshot")
		return progression.Snapshot{}
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) recorded() []events.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.Event(nil), p.events...)
}

type failingSource struct{}

func (failingSource) FetchAnsweredQuestionIDs(ctx context.Context, userID, tournamentID uuid.UUID) ([]uuid.UUID, error) {
	return nil, errors.New("connection refused")
}

type outcome struct {
	res Result
	err error
}

func waitOutcome(t *testing.T, done <-chan outcome) outcome {
	t.Helper()
	select {
	case out := <-done:
		return out
	case <-time.After(receiveTimeout):
		t.Fatal("timed out waiting for loop to end")
		return outcome{}
	}
}
