// Package inspector is a live VM-step transport: it upgrades an HTTP
// connection to a websocket (grounded on the teacher's
// internal/network/websocket.go server setup) and pushes one JSON event
// per instruction the debug hook observes (grounded on the teacher's
// internal/debugger/vm_hook.go OnInstruction shape), so an external
// client can watch execution step by step. The transport is one-way:
// messages a client sends are read and discarded, so there is no
// stepping control, breakpoint setting, or frame-state query.
package inspector

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"ecmavm/internal/bytecode"
	"ecmavm/internal/frame"
	"ecmavm/internal/vm"
)

// StepEvent is one instruction-boundary notification sent to attached
// clients.
type StepEvent struct {
	Session string `json:"session"`
	Offset  int    `json:"offset"`
	Op      string `json:"op"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	File    string `json:"file"`
}

// Server upgrades HTTP connections to websockets and broadcasts StepEvent
// messages produced by an attached Machine's DebugHook. One Server can
// back several concurrently-running Machines, each registered under its
// own session ID.
type Server struct {
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	sessions map[string]*session
}

type session struct {
	mu      sync.Mutex
	clients map[string]*websocket.Conn
}

func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sessions: make(map[string]*session),
	}
}

// Attach wires m's DebugHook to broadcast a StepEvent per instruction to
// every client of a new session, returning the session ID clients connect
// to (via Handler's "session" query parameter).
func (s *Server) Attach(m *vm.Machine) string {
	id := uuid.NewString()
	sess := &session{clients: make(map[string]*websocket.Conn)}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	m.Debug = true
	m.DebugHook = func(_ *vm.Machine, f *frame.Frame, ip int, d bytecode.DebugInfo) bool {
		op := bytecode.OpCode(f.Unit.Code[ip])
		sess.broadcast(StepEvent{
			Session: id,
			Offset:  ip,
			Op:      op.String(),
			Line:    d.Line,
			Column:  d.Column,
			File:    d.File,
		})
		return true
	}
	return id
}

func (sess *session) broadcast(evt StepEvent) {
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	for id, c := range sess.clients {
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			c.Close()
			delete(sess.clients, id)
		}
	}
}

// Handler upgrades the request to a websocket and registers the
// connection against the "session" query parameter's session, streaming
// StepEvents until the client disconnects.
func (s *Server) Handler(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("session")
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		http.Error(w, fmt.Sprintf("inspector: unknown session %q", id), http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("inspector: upgrade failed: %v", err)
		return
	}

	clientID := uuid.NewString()
	sess.mu.Lock()
	sess.clients[clientID] = conn
	sess.mu.Unlock()

	defer func() {
		sess.mu.Lock()
		delete(sess.clients, clientID)
		sess.mu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// Detach removes a session and closes every attached client connection.
func (s *Server) Detach(id string) {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	for _, c := range sess.clients {
		c.Close()
	}
}
