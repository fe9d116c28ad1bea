package inspect

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"sync"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

// Server serves the latest published snapshots over HTTP and streams every
// publish to websocket clients. The frame loop calls Publish; handlers run on
// HTTP goroutines.
type Server struct {
	mu      sync.RWMutex
	frame   uint64
	snaps   []Snapshot
	last    []byte
	clients map[*client]bool

	upgrader websocket.Upgrader
}

func NewServer() *Server {
	return &Server{
		clients: make(map[*client]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// frameMessage is the websocket payload.
type frameMessage struct {
	Frame     uint64     `json:"frame"`
	Snapshots []Snapshot `json:"snapshots"`
}

// Publish replaces the served snapshots and broadcasts them. Slow clients
// drop frames rather than stall the caller.
func (s *Server) Publish(snaps []Snapshot) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.frame++
	s.snaps = snaps
	data, err := json.Marshal(frameMessage{Frame: s.frame, Snapshots: snaps})
	if err != nil {
		log.Printf("[inspect] marshal frame %d: %v", s.frame, err)
		return
	}
	s.last = data
	for c := range s.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// Snapshots returns the most recently published snapshots.
func (s *Server) Snapshots() []Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snaps
}

func (s *Server) find(entity string) (Snapshot, bool) {
	for _, snap := range s.Snapshots() {
		if snap.Entity == entity {
			return snap, true
		}
	}
	return Snapshot{}, false
}

// Router builds the inspector routes without logging or recovery.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/json/entities", s.handleEntities)
	r.HandleFunc("/json/bones", s.handleBones)
	r.HandleFunc("/json/bones/{entity}", s.handleBones)
	r.HandleFunc("/json/slots", s.handleSlots)
	r.HandleFunc("/json/slots/{entity}", s.handleSlots)
	r.HandleFunc("/json/tracks", s.handleTracks)
	r.HandleFunc("/json/tracks/{entity}", s.handleTracks)
	r.HandleFunc("/dump", s.handleDump)
	r.HandleFunc("/dump/{entity}", s.handleDump)
	r.HandleFunc("/ws", s.handleSocket)
	return r
}

func (s *Server) Handler() http.Handler {
	h := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(s.Router())
	return handlers.LoggingHandler(os.Stdout, h)
}

// ListenAndServe blocks serving the inspector on addr.
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("[inspect] Starting server %v", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) register(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c] = true
	if s.last != nil {
		c.send <- s.last
	}
}

func (s *Server) unregister(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
}

// ClientCount is the number of connected websocket clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}
