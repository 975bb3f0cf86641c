package realtime

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/net/websocket"

	"classroll/internal/broadcast"
)

func dialTestServer(t *testing.T, bus broadcast.Bus) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(NewServer(bus, nil).Handler())
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, err := websocket.Dial(url, "", ts.URL)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func TestJoinIsAcknowledged(t *testing.T) {
	conn := dialTestServer(t, broadcast.NewMemory())

	if err := websocket.JSON.Send(conn, clientFrame{Type: "join", SessionCode: "code-1"}); err != nil {
		t.Fatalf("send join: %v", err)
	}
	var ack serverFrame
	if err := websocket.JSON.Receive(conn, &ack); err != nil {
		t.Fatalf("receive ack: %v", err)
	}
	if ack.Type != "joined" || ack.SessionCode != "code-1" {
		t.Fatalf("ack = %+v", ack)
	}
}

func TestListenerSeesAttendanceUpdate(t *testing.T) {
	bus := broadcast.NewMemory()
	conn := dialTestServer(t, bus)

	// Join first so the subscription is in place before the event fires.
	if err := websocket.JSON.Send(conn, clientFrame{Type: "join", SessionCode: "code-1"}); err != nil {
		t.Fatalf("send join: %v", err)
	}
	var ack serverFrame
	if err := websocket.JSON.Receive(conn, &ack); err != nil {
		t.Fatalf("receive ack: %v", err)
	}

	evt := broadcast.Event{
		SessionCode:    "code-1",
		StudentID:      "CSE001",
		StudentName:    "Priya Patel",
		TotalAttendees: 1,
		Timestamp:      time.Now().UTC(),
	}
	if err := bus.Publish(context.Background(), evt); err != nil {
		t.Fatalf("publish: %v", err)
	}

	var frame serverFrame
	if err := websocket.JSON.Receive(conn, &frame); err != nil {
		t.Fatalf("receive event: %v", err)
	}
	if frame.Type != "attendanceUpdate" || frame.StudentID != "CSE001" || frame.TotalAttendees != 1 {
		t.Fatalf("frame = %+v", frame)
	}
}

func TestEventsAreNotFilteredByJoinedSession(t *testing.T) {
	bus := broadcast.NewMemory()
	conn := dialTestServer(t, bus)

	if err := websocket.JSON.Send(conn, clientFrame{Type: "join", SessionCode: "code-1"}); err != nil {
		t.Fatalf("send join: %v", err)
	}
	var ack serverFrame
	if err := websocket.JSON.Receive(conn, &ack); err != nil {
		t.Fatalf("receive ack: %v", err)
	}

	// Event for a session the listener never joined still arrives.
	if err := bus.Publish(context.Background(), broadcast.Event{SessionCode: "other", StudentID: "S9", TotalAttendees: 3}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	var frame serverFrame
	if err := websocket.JSON.Receive(conn, &frame); err != nil {
		t.Fatalf("receive event: %v", err)
	}
	if frame.SessionCode != "other" {
		t.Fatalf("frame = %+v, want the other session's event", frame)
	}
}
