// File: server/server.go
package server

import (
	"sync"

	"golang.org/x/net/websocket"

	"github.com/lguibr/troupe/monitoring"
	"github.com/lguibr/troupe/supervisor"
)

// Server streams runtime events to WebSocket subscribers and serves
// HTTP status queries over the supervision tree. It implements
// monitoring.Monitor, so it plugs into a node like any other sink.
type Server struct {
	mu     sync.Mutex
	conns  map[*websocket.Conn]bool
	node   *supervisor.SupervisorNode
	memory *monitoring.Memory
}

// NewServer creates a server over the given tree. The memory monitor is
// optional; when present its snapshot is exposed on /events.
func NewServer(node *supervisor.SupervisorNode, memory *monitoring.Memory) *Server {
	return &Server{
		conns:  make(map[*websocket.Conn]bool),
		node:   node,
		memory: memory,
	}
}

// AttachTree sets the tree served by /status. It exists because the
// server is usually wired as a monitor sink of the very node it reports
// on, so the node cannot be passed at construction.
func (s *Server) AttachTree(node *supervisor.SupervisorNode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.node = node
}

// streamedEvent is the wire shape of one event on the stream.
type streamedEvent struct {
	Time     string      `json:"time"`
	Severity string      `json:"severity"`
	Kind     string      `json:"kind"`
	Event    interface{} `json:"event"`
}

// Record implements monitoring.Monitor by broadcasting the event to
// every subscriber. Connections that fail to take the write are dropped.
func (s *Server) Record(e monitoring.Event) {
	msg := streamedEvent{
		Time:     e.EventTime().Format("2006-01-02T15:04:05.000Z07:00"),
		Severity: e.Severity().String(),
		Kind:     e.EventKind(),
		Event:    e,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		if err := websocket.JSON.Send(conn, msg); err != nil {
			delete(s.conns, conn)
			_ = conn.Close()
		}
	}
}

// subscribe registers the connection and blocks until the peer goes
// away. The read loop only drains; subscribers never send.
func (s *Server) subscribe(ws *websocket.Conn) {
	s.mu.Lock()
	s.conns[ws] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.conns, ws)
		s.mu.Unlock()
		_ = ws.Close()
	}()

	buffer := make([]byte, 512)
	for {
		if _, err := ws.Read(buffer); err != nil {
			return
		}
	}
}

// SubscriberCount returns the number of live stream subscribers.
func (s *Server) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Close drops every subscriber.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.conns = make(map[*websocket.Conn]bool)
}
