// Package observer streams weekly-problem lifecycle events to connected
// websocket clients. Grounded on the teacher's EventsStreamHandler: a
// component-scoped logger, one buffered channel per connected client, and
// a non-blocking publish that drops the event for any client whose buffer
// is full rather than stalling the solve loop.
package observer

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/aristath/adequacy-core/internal/weekly"
)

// Event is what Broadcaster sends to every connected client.
type Event struct {
	Type      string    `json:"type"`
	RunID     string    `json:"run_id"`
	Year      int       `json:"year"`
	Week      int       `json:"week"`
	Timestamp time.Time `json:"timestamp"`
}

type client struct {
	ch chan Event
}

// Broadcaster fans out weekly solve events to every connected websocket
// client. It implements driver.Observer.
type Broadcaster struct {
	log     zerolog.Logger
	mu      sync.RWMutex
	clients map[*client]struct{}
}

// New returns an empty Broadcaster.
func New(log zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		log:     log.With().Str("component", "observer").Logger(),
		clients: make(map[*client]struct{}),
	}
}

// Notify implements driver.Observer, broadcasting event for p to every
// connected client without blocking the solve loop.
func (b *Broadcaster) Notify(event string, p *weekly.Problem) {
	ev := Event{
		Type:      event,
		RunID:     p.RunID.String(),
		Year:      p.Year,
		Week:      p.Week,
		Timestamp: time.Now(),
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for c := range b.clients {
		select {
		case c.ch <- ev:
		default:
			b.log.Warn().Msg("observer client buffer full, dropping event")
		}
	}
}

// Router mounts the websocket endpoint on a chi router with permissive
// CORS, matching the teacher's "Access-Control-Allow-Origin: *" stance for
// this kind of read-only stream.
func (b *Broadcaster) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))
	r.Get("/stream", b.serveWS)
	return r
}

func (b *Broadcaster) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		b.log.Error().Err(err).Msg("websocket accept failed")
		return
	}
	defer conn.CloseNow()

	c := &client{ch: make(chan Event, 100)}
	b.addClient(c)
	defer b.removeClient(c)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-c.ch:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, conn, ev)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

func (b *Broadcaster) addClient(c *client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.clients[c] = struct{}{}
}

func (b *Broadcaster) removeClient(c *client) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.clients, c)
}

// NewTestClient, AddTestClient and RemoveTestClient exist so tests can
// exercise Notify's fan-out without dialing a real websocket connection.
func NewTestClient(ch chan Event) *client {
	return &client{ch: ch}
}

func (b *Broadcaster) AddTestClient(c *client) { b.addClient(c) }

func (b *Broadcaster) RemoveTestClient(c *client) { b.removeClient(c) }
