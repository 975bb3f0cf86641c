package attendance

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"classroll/internal/broadcast"
	"classroll/internal/metrics"
	"classroll/internal/store"
)

// ErrSessionNotFound covers both a code that never existed and a session
// that has already ended. The two cases are deliberately not distinguished
// to the caller.
var ErrSessionNotFound = errors.New("session not found")

// MethodScan tags records captured by scanning the session code. No other
// capture method is currently produced.
const MethodScan = "scan"

// Result is the outcome of a mark request.
type Result struct {
	AlreadyRecorded bool   `json:"alreadyRecorded"`
	StudentName     string `json:"studentName"`
	TotalAttendees  int    `json:"totalAttendees"`
}

// Service records attendance against active sessions and publishes one
// event per appended record.
type Service struct {
	sessions  *store.Sessions
	bus       broadcast.Bus
	collector *metrics.Collector
}

// NewService creates a recorder over the registry and event bus.
func NewService(sessions *store.Sessions, bus broadcast.Bus, collector *metrics.Collector) *Service {
	return &Service{sessions: sessions, bus: bus, collector: collector}
}

// Mark appends at most one record per student per session. Knowing a valid
// active code is the only credential required; there is no caller identity
// check on this operation.
func (s *Service) Mark(ctx context.Context, sessionCode, studentID, studentName string) (Result, error) {
	if studentName == "" {
		studentName = fmt.Sprintf("Student %s", studentID)
	}
	rec := store.AttendanceRecord{
		ID:          uuid.NewString(),
		StudentID:   studentID,
		StudentName: studentName,
		Timestamp:   time.Now().UTC(),
		Method:      MethodScan,
	}
	total, duplicate, found := s.sessions.AppendAttendee(sessionCode, rec)
	if !found {
		return Result{}, ErrSessionNotFound
	}
	if duplicate {
		if s.collector != nil {
			s.collector.AttendanceDuplicate()
		}
		return Result{AlreadyRecorded: true, StudentName: studentName, TotalAttendees: total}, nil
	}
	if s.collector != nil {
		s.collector.AttendanceMarked()
	}
	evt := broadcast.Event{
		SessionCode:    sessionCode,
		StudentID:      studentID,
		StudentName:    studentName,
		TotalAttendees: total,
		Timestamp:      rec.Timestamp,
	}
	if err := s.bus.Publish(ctx, evt); err != nil {
		log.Printf("broadcast publish failed: %v", err)
	}
	return Result{StudentName: studentName, TotalAttendees: total}, nil
}
