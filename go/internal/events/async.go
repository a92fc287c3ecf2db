package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

var (
	ErrBufferFull      = errors.New("event buffer full")
	ErrPublisherClosed = errors.New("event publisher closed")
)

// AsyncConfig sizes the queue in front of a slow publisher.
type AsyncConfig struct {
	BufferSize     int
	PublishTimeout time.Duration
}

func DefaultAsyncConfig() AsyncConfig {
	return AsyncConfig{
		BufferSize:     1024,
		PublishTimeout: 2 * time.Second,
	}
}

// AsyncPublisher queues events for a single worker goroutine so that Publish
// never waits on the broker. Events that do not fit in the buffer are dropped.
type AsyncPublisher struct {
	next    Publisher
	timeout time.Duration
	queue   chan Event
	done    chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewAsyncPublisher(next Publisher, cfg AsyncConfig) *AsyncPublisher {
	defaults := DefaultAsyncConfig()
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaults.BufferSize
	}
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = defaults.PublishTimeout
	}

	p := &AsyncPublisher{
		next:    next,
		timeout: cfg.PublishTimeout,
		queue:   make(chan Event, cfg.BufferSize),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Publish enqueues the event and returns immediately.
func (p *AsyncPublisher) Publish(ctx context.Context, event Event) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPublisherClosed
	}
	select {
	case p.queue <- event:
		return nil
	default:
		return ErrBufferFull
	}
}

// Close stops accepting events and waits until the queued ones are delivered.
func (p *AsyncPublisher) Close() {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.queue)
	}
	p.mu.Unlock()

	<-p.done
}

func (p *AsyncPublisher) run() {
	defer close(p.done)

	for event := range p.queue {
		ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
		err := p.next.Publish(ctx, event)
		cancel()

		if err != nil {
			log.Error().
				Err(err).
				Str("event_type", string(event.Type)).
				Str("session_id", event.SessionID.String()).
				Msg("failed to publish lifecycle event")
		}
	}
}
