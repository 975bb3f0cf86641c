// Package realtime exposes the attendance event stream over websockets.
package realtime

import (
	"context"
	"log"
	"net/http"

	"golang.org/x/net/websocket"

	"classroll/internal/broadcast"
	"classroll/internal/metrics"
)

// clientFrame is what a listener may send. A join declares interest in one
// session's events.
type clientFrame struct {
	Type        string `json:"type"`
	SessionCode string `json:"sessionCode,omitempty"`
}

// serverFrame is what the server pushes to listeners.
type serverFrame struct {
	Type           string `json:"type"`
	SessionCode    string `json:"sessionCode,omitempty"`
	StudentID      string `json:"studentId,omitempty"`
	StudentName    string `json:"studentName,omitempty"`
	TotalAttendees int    `json:"totalAttendees,omitempty"`
	Timestamp      string `json:"timestamp,omitempty"`
}

// Server bridges the broadcast bus to websocket listeners.
//
// Joining a session is acknowledged but does not filter delivery: every
// connected listener receives every attendance event. That is the
// compatibility baseline; a per-session subscriber registry would be a
// behavior change for multi-session deployments.
type Server struct {
	bus       broadcast.Bus
	collector *metrics.Collector
}

// NewServer creates a realtime server over the bus.
func NewServer(bus broadcast.Bus, collector *metrics.Collector) *Server {
	return &Server{bus: bus, collector: collector}
}

// Handler returns the http.Handler for the websocket endpoint. The join is
// unauthenticated: listeners only ever receive data the session code already
// unlocks.
func (s *Server) Handler() http.Handler {
	return websocket.Handler(func(conn *websocket.Conn) {
		s.serve(conn)
	})
}

func (s *Server) serve(conn *websocket.Conn) {
	defer conn.Close()

	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	events, cancel, err := s.bus.Subscribe(ctx)
	if err != nil {
		log.Printf("realtime subscribe failed: %v", err)
		return
	}
	defer cancel()

	if s.collector != nil {
		s.collector.ClientConnected()
		defer s.collector.ClientDisconnected()
	}

	// Reader goroutine: acks joins and unblocks the writer when the peer
	// goes away.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var frame clientFrame
			if err := websocket.JSON.Receive(conn, &frame); err != nil {
				return
			}
			if frame.Type == "join" {
				ack := serverFrame{Type: "joined", SessionCode: frame.SessionCode}
				if err := websocket.JSON.Send(conn, ack); err != nil {
					return
				}
			}
		}
	}()

	for {
		select {
		case evt, ok := <-events:
			if !ok {
				return
			}
			frame := serverFrame{
				Type:           "attendanceUpdate",
				SessionCode:    evt.SessionCode,
				StudentID:      evt.StudentID,
				StudentName:    evt.StudentName,
				TotalAttendees: evt.TotalAttendees,
				Timestamp:      evt.Timestamp.Format("2006-01-02T15:04:05.000Z07:00"),
			}
			if err := websocket.JSON.Send(conn, frame); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
