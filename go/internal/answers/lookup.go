package answers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Source is the persistence collaborator that knows which questions a user answered.
type Source interface {
	FetchAnsweredQuestionIDs(ctx context.Context, userID, tournamentID uuid.UUID) ([]uuid.UUID, error)
}

// Lookup turns a Source into a single bounded fetch per connection.
type Lookup struct {
	source  Source
	timeout time.Duration
}

// NewLookup creates a lookup. A zero timeout means the caller's context is the only bound.
func NewLookup(source Source, timeout time.Duration) *Lookup {
	return &Lookup{
		source:  source,
		timeout: timeout,
	}
}

// Fetch reads the answered set once. The returned set is never refreshed.
func (l *Lookup) Fetch(ctx context.Context, userID, tournamentID uuid.UUID) (Set, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	ids, err := l.source.FetchAnsweredQuestionIDs(ctx, userID, tournamentID)
	if err != nil {
		return Set{}, fmt.Errorf("failed to fetch answered questions: %w", err)
	}

	set := NewSet(ids...)
	log.Debug().
		Str("user_id", userID.String()).
		Str("tournament_id", tournamentID.String()).
		Int("answered", set.Len()).
		Msg("answered set fetched")
	return set, nil
}
