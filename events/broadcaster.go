package events

import (
	"log/slog"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// DefaultBufferSize is how many events a slow client may fall behind
// before events are dropped for it.
const DefaultBufferSize = 32

type client struct {
	ch      chan Event
	dropped atomic.Int64
}

// Broadcaster manages subscribed clients and publishes events to all of them.
type Broadcaster struct {
	mu         sync.RWMutex
	clients    map[string]*client
	bufferSize int
	seq        atomic.Uint64
	logger     *slog.Logger
}

// NewBroadcaster creates a Broadcaster. A bufferSize below 1 uses DefaultBufferSize.
func NewBroadcaster(bufferSize int, logger *slog.Logger) *Broadcaster {
	if bufferSize < 1 {
		bufferSize = DefaultBufferSize
	}
	return &Broadcaster{
		clients:    make(map[string]*client),
		bufferSize: bufferSize,
		logger:     logger,
	}
}

// Subscribe registers a new client and returns its id and event channel.
// The channel is closed by Unsubscribe.
func (b *Broadcaster) Subscribe() (string, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uuid.NewString()
	c := &client{ch: make(chan Event, b.bufferSize)}
	b.clients[id] = c
	b.logger.Debug("event client subscribed", "client_id", id, "clients", len(b.clients))
	return id, c.ch
}

// Unsubscribe removes the client and closes its channel. Unknown ids are ignored.
func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	c, ok := b.clients[id]
	if !ok {
		return
	}
	close(c.ch)
	delete(b.clients, id)
	b.logger.Debug("event client unsubscribed", "client_id", id, "dropped", c.dropped.Load())
}

// Publish assigns the event an id and delivers it to every client without
// blocking. Clients whose buffer is full miss the event.
func (b *Broadcaster) Publish(e Event) {
	e.ID = strconv.FormatUint(b.seq.Add(1), 10)

	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, c := range b.clients {
		select {
		case c.ch <- e:
		default:
			c.dropped.Add(1)
			b.logger.Warn("event dropped for slow client", "client_id", id, "event", e.Type)
		}
	}
}

// ClientCount returns the number of subscribed clients.
func (b *Broadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Close unsubscribes every client.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, c := range b.clients {
		close(c.ch)
		delete(b.clients, id)
	}
}
