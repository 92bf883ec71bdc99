// File: server/handlers.go
package server

import (
	"encoding/json"
	"net/http"

	"golang.org/x/net/websocket"
)

// Handler returns the full HTTP surface of the server:
//
//	/subscribe  WebSocket event stream
//	/status     JSON snapshot of the supervision tree
//	/events     JSON snapshot of the in-memory event history
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/subscribe", websocket.Handler(s.subscribe))
	mux.HandleFunc("/status", s.HandleStatus())
	mux.HandleFunc("/events", s.HandleEvents())
	return mux
}

// statusReply is the wire shape of /status.
type statusReply struct {
	Supervisor  string      `json:"supervisor"`
	Strategy    string      `json:"strategy,omitempty"`
	Healthy     bool        `json:"healthy"`
	Reason      string      `json:"reason,omitempty"`
	Subscribers int         `json:"subscribers"`
	Children    interface{} `json:"children"`
}

// HandleStatus serves a point-in-time view of the supervision tree.
func (s *Server) HandleStatus() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		node := s.node
		s.mu.Unlock()
		if node == nil {
			http.Error(w, `{"error":"no supervision tree attached"}`, http.StatusServiceUnavailable)
			return
		}
		health := node.HealthCheck()
		reply := statusReply{
			Supervisor:  node.Name(),
			Healthy:     health.IsHealthy(),
			Reason:      health.Reason(),
			Subscribers: s.SubscriberCount(),
			Children:    node.Children(),
		}
		writeJSON(w, reply)
	}
}

// eventsReply is the wire shape of /events.
type eventsReply struct {
	Snapshot interface{}     `json:"snapshot"`
	Events   []streamedEvent `json:"events"`
}

// HandleEvents serves the retained event history of the memory monitor.
func (s *Server) HandleEvents() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.memory == nil {
			http.Error(w, `{"error":"no event history attached"}`, http.StatusServiceUnavailable)
			return
		}
		retained := s.memory.Events()
		events := make([]streamedEvent, 0, len(retained))
		for _, e := range retained {
			events = append(events, streamedEvent{
				Time:     e.EventTime().Format("2006-01-02T15:04:05.000Z07:00"),
				Severity: e.Severity().String(),
				Kind:     e.EventKind(),
				Event:    e,
			})
		}
		writeJSON(w, eventsReply{Snapshot: s.memory.Snapshot(), Events: events})
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(v)
}
