package attendance

import (
	"context"
	"errors"
	"testing"
	"time"

	"classroll/internal/broadcast"
	"classroll/internal/session"
	"classroll/internal/store"
)

var faculty = session.Requester{Username: "faculty_cse", Name: "Anita Sharma", Role: store.RoleFaculty}

func startSession(t *testing.T) (*store.Sessions, store.Session, *Service, broadcast.Bus) {
	t.Helper()
	reg := store.NewSessions()
	sess, err := session.NewService(reg, nil).Start(faculty, "Computer Science 101")
	if err != nil {
		t.Fatalf("start session: %v", err)
	}
	bus := broadcast.NewMemory()
	return reg, sess, NewService(reg, bus, nil), bus
}

func TestMarkAppendsOnce(t *testing.T) {
	reg, sess, svc, _ := startSession(t)
	ctx := context.Background()

	res, err := svc.Mark(ctx, sess.Code, "CSE001", "Priya Patel")
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if res.AlreadyRecorded || res.TotalAttendees != 1 || res.StudentName != "Priya Patel" {
		t.Fatalf("first mark result = %+v", res)
	}

	res, err = svc.Mark(ctx, sess.Code, "CSE001", "Priya Patel")
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if !res.AlreadyRecorded || res.TotalAttendees != 1 {
		t.Fatalf("second mark result = %+v, want already recorded with total 1", res)
	}

	got, _ := reg.FindByID(sess.ID)
	if len(got.Attendees) != 1 {
		t.Fatalf("attendees = %d, want 1", len(got.Attendees))
	}
	if got.Attendees[0].Method != MethodScan {
		t.Errorf("method = %q, want %q", got.Attendees[0].Method, MethodScan)
	}
}

func TestMarkAfterEndFails(t *testing.T) {
	reg, sess, svc, _ := startSession(t)
	if err := session.NewService(reg, nil).End(faculty, sess.ID); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, err := svc.Mark(context.Background(), sess.Code, "CSE001", ""); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestMarkUnknownCodeFails(t *testing.T) {
	_, _, svc, _ := startSession(t)
	if _, err := svc.Mark(context.Background(), "never-existed", "CSE001", ""); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestMarkSynthesizesMissingName(t *testing.T) {
	_, sess, svc, _ := startSession(t)
	res, err := svc.Mark(context.Background(), sess.Code, "CSE007", "")
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if res.StudentName != "Student CSE007" {
		t.Fatalf("name = %q, want %q", res.StudentName, "Student CSE007")
	}
}

func TestMarkBroadcastsExactlyOneEvent(t *testing.T) {
	_, sess, svc, bus := startSession(t)
	ctx := context.Background()

	events, cancel, err := bus.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	if _, err := svc.Mark(ctx, sess.Code, "CSE001", "Priya Patel"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	// Duplicate must not publish.
	if _, err := svc.Mark(ctx, sess.Code, "CSE001", "Priya Patel"); err != nil {
		t.Fatalf("duplicate mark: %v", err)
	}

	select {
	case evt := <-events:
		if evt.SessionCode != sess.Code || evt.StudentID != "CSE001" || evt.TotalAttendees != 1 {
			t.Fatalf("event = %+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatal("no event observed")
	}

	select {
	case evt := <-events:
		t.Fatalf("unexpected second event: %+v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}
