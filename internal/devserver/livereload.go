package devserver

import (
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// livereloadScript is injected into served HTML pages. It reloads the
// page whenever the server broadcasts a change.
const livereloadScript = `<script>
(() => {
  const ws = new WebSocket("ws://" + location.host + "/_floe/livereload");
  ws.onmessage = () => location.reload();
})();
</script>`

// Livereload tracks connected browser clients and broadcasts reloads.
type Livereload struct {
	mu      sync.Mutex
	clients map[string]*websocket.Conn
	metrics *Metrics
}

// NewLivereload creates an empty client registry.
func NewLivereload(metrics *Metrics) *Livereload {
	return &Livereload{
		clients: make(map[string]*websocket.Conn),
		metrics: metrics,
	}
}

// Handler returns the websocket handler registering one browser client.
// It blocks until the client disconnects.
func (l *Livereload) Handler() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		id := uuid.New().String()

		l.mu.Lock()
		l.clients[id] = conn
		l.mu.Unlock()
		l.metrics.livereloadConns.Inc()
		log.Debug().Str("client", id).Msg("Livereload client connected")

		// Drain reads until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}

		l.mu.Lock()
		delete(l.clients, id)
		l.mu.Unlock()
		l.metrics.livereloadConns.Dec()
		log.Debug().Str("client", id).Msg("Livereload client disconnected")
	}
}

// Broadcast tells every connected client to reload.
func (l *Livereload) Broadcast(changed string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, conn := range l.clients {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(changed)); err != nil {
			log.Debug().Str("client", id).Err(err).Msg("Dropping livereload client")
			delete(l.clients, id)
			l.metrics.livereloadConns.Dec()
		}
	}
}
