package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/livequiz/go/internal/progression"
)

// ErrTickFailed wraps a delivery failure. The loop is not retried.
var ErrTickFailed = errors.New("failed to deliver snapshot")

// DefaultTickInterval is the pause between two snapshots.
const DefaultTickInterval = time.Second

// Sink delivers one snapshot to the client.
type Sink interface {
	Send(ctx context.Context, snapshot progression.Snapshot) error
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(ctx context.Context, snapshot progression.Snapshot) error

func (f SinkFunc) Send(ctx context.Context, snapshot progression.Snapshot) error {
	return f(ctx, snapshot)
}

// Result summarizes a finished loop.
type Result struct {
	Ticks    int
	Finished bool
}

// Broadcaster recomputes and pushes a snapshot every interval.
type Broadcaster struct {
	clock    clockwork.Clock
	interval time.Duration
}

func NewBroadcaster(clock clockwork.Clock, interval time.Duration) *Broadcaster {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Broadcaster{clock: clock, interval: interval}
}

// Run sends the first snapshot immediately and then one per interval until the
// FINISHED snapshot has been sent, the sink fails or ctx is cancelled.
func (b *Broadcaster) Run(ctx context.Context, s *Session, sink Sink) (Result, error) {
	var res Result
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		snapshot := progression.Build(b.clock.Now(), s.Tournament, s.Answered)
		if err := sink.Send(ctx, snapshot); err != nil {
			return res, fmt.Errorf("%w: %w", ErrTickFailed, err)
		}
		res.Ticks++

		if snapshot.Terminal() {
			res.Finished = true
			return res, nil
		}

		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-b.clock.After(b.interval):
		}
	}
}
