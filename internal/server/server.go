// Package server exposes the engine over a websocket: every tick's
// snapshot is broadcast to all connected clients, and clients send
// back control commands.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/rathgar/idlebot/internal/engine"
)

// Command is one client control message.
type Command struct {
	Type   string  `json:"type"`
	Action string  `json:"action,omitempty"`
	Mode   string  `json:"mode,omitempty"`
	X      float64 `json:"x,omitempty"`
	Y      float64 `json:"y,omitempty"`
}

// Message is the envelope of every frame sent to clients.
type Message struct {
	Type     string           `json:"type"`
	Snapshot *engine.Snapshot `json:"snapshot,omitempty"`
	Error    string           `json:"error,omitempty"`
}

type client struct {
	id   string
	send chan []byte
}

// Server broadcasts engine snapshots and routes client commands.
type Server struct {
	engine *engine.Engine
	log    *slog.Logger

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[string]*client
}

// New wires a server to the engine and subscribes to its snapshots.
func New(eng *engine.Engine, logger *slog.Logger) *Server {
	s := &Server{
		engine: eng,
		log:    logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[string]*client),
	}
	eng.OnStateChange(s.Broadcast)
	return s
}

// Broadcast fans a snapshot out to every connected client. Slow
// clients drop frames rather than stalling the tick loop.
func (s *Server) Broadcast(snap engine.Snapshot) {
	payload, err := json.Marshal(Message{Type: "snapshot", Snapshot: &snap})
	if err != nil {
		s.log.Error("snapshot marshal failed", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		select {
		case c.send <- payload:
		default:
		}
	}
}

// Handler returns the websocket endpoint.
func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		c := &client{id: uuid.NewString(), send: make(chan []byte, 16)}
		s.register(c)
		s.log.Info("client connected", "client", c.id)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for payload := range c.send {
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					return
				}
			}
		}()

		// Send the current state right away so the client does not
		// wait a full tick for its first frame.
		s.sendSnapshot(c)

		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var cmd Command
			if err := json.Unmarshal(raw, &cmd); err != nil {
				s.sendError(c, "malformed command")
				continue
			}
			if err := s.dispatch(cmd); err != nil {
				s.sendError(c, err.Error())
			}
		}

		s.unregisterAndClose(c)
		<-done
		s.log.Info("client disconnected", "client", c.id)
	}
}

func (s *Server) dispatch(cmd Command) error {
	switch cmd.Type {
	case "execute-action":
		return s.engine.ExecuteAction(cmd.Action)
	case "pause":
		s.engine.Pause()
	case "resume":
		s.engine.Resume()
	case "set-mode":
		return s.engine.SetMode(engine.Mode(cmd.Mode))
	case "travel":
		return s.engine.TravelToCoordinates(cmd.X, cmd.Y)
	default:
		return &unknownCommandError{cmd.Type}
	}
	return nil
}

type unknownCommandError struct{ kind string }

func (e *unknownCommandError) Error() string {
	return "unknown command type: " + e.kind
}

func (s *Server) sendSnapshot(c *client) {
	snap := s.engine.Snapshot()
	payload, err := json.Marshal(Message{Type: "snapshot", Snapshot: &snap})
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

func (s *Server) sendError(c *client, msg string) {
	payload, err := json.Marshal(Message{Type: "error", Error: msg})
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

func (s *Server) register(c *client) {
	s.mu.Lock()
	s.clients[c.id] = c
	s.mu.Unlock()
}

// unregisterAndClose removes the client and closes its send channel so
// the writer goroutine exits.
func (s *Server) unregisterAndClose(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c.id]; ok {
		delete(s.clients, c.id)
		close(c.send)
	}
	s.mu.Unlock()
}
