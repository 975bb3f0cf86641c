package store

import (
	"sync"
	"time"
)

// AttendanceRecord is one captured presence mark. Immutable once appended.
type AttendanceRecord struct {
	ID          string    `json:"id"`
	StudentID   string    `json:"studentId"`
	StudentName string    `json:"studentName"`
	Timestamp   time.Time `json:"timestamp"`
	Method      string    `json:"method"`
}

// Session is one attendance-collection window owned by a faculty account.
// The registry is the sole owner; callers mutate only through its methods.
type Session struct {
	ID           int64              `json:"id"`
	Code         string             `json:"code"`
	FacultyID    string             `json:"facultyId"`
	FacultyName  string             `json:"facultyName"`
	ClassName    string             `json:"className"`
	QRImage      string             `json:"qrImage"`
	Active       bool               `json:"active"`
	StartedAt    time.Time          `json:"startedAt"`
	EndedAt      *time.Time         `json:"endedAt,omitempty"`
	Attendees    []AttendanceRecord `json:"attendees"`
}

// Sessions is the session registry. Sessions are appended, deactivated, and
// scanned; never deleted, so ended sessions remain available for audit.
//
// Lookups are linear scans over the insertion-ordered slice. The registry is
// operationally small and insertion order doubles as the audit order, so no
// index is kept.
type Sessions struct {
	mu       sync.Mutex
	sessions []*Session
	nextID   int64
}

// NewSessions creates an empty registry.
func NewSessions() *Sessions {
	return &Sessions{nextID: 1}
}

// Append assigns the next sequential id, stores the session, and returns a
// snapshot of it.
func (s *Sessions) Append(sess Session) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess.ID = s.nextID
	s.nextID++
	stored := sess
	s.sessions = append(s.sessions, &stored)
	return snapshot(&stored)
}

// FindByID returns a snapshot of the session with the given id.
func (s *Sessions) FindByID(id int64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.ID == id {
			return snapshot(sess), true
		}
	}
	return Session{}, false
}

// FindActiveByCode returns a snapshot of the active session with the given
// code. Ended sessions do not match, so a stale code behaves exactly like a
// code that never existed.
func (s *Sessions) FindActiveByCode(code string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.Code == code && sess.Active {
			return snapshot(sess), true
		}
	}
	return Session{}, false
}

// ActiveOwnedBy returns snapshots of the caller's active sessions in
// insertion order.
func (s *Sessions) ActiveOwnedBy(facultyID string) []Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []Session{}
	for _, sess := range s.sessions {
		if sess.Active && sess.FacultyID == facultyID {
			out = append(out, snapshot(sess))
		}
	}
	return out
}

// Deactivate marks the session inactive and records the end time. Re-ending
// an already-inactive session re-applies, refreshing the end timestamp.
func (s *Sessions) Deactivate(id int64, at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.ID == id {
			sess.Active = false
			ended := at
			sess.EndedAt = &ended
			return true
		}
	}
	return false
}

// AppendAttendee appends a record to the active session with the given code,
// unless the student is already present. The check and the append happen
// under one lock so concurrent marks for the same student cannot both land.
// Returns the resulting attendee count, whether the record was a duplicate,
// and whether an active session matched at all.
func (s *Sessions) AppendAttendee(code string, rec AttendanceRecord) (total int, duplicate, found bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sess := range s.sessions {
		if sess.Code != code || !sess.Active {
			continue
		}
		for _, a := range sess.Attendees {
			if a.StudentID == rec.StudentID {
				return len(sess.Attendees), true, true
			}
		}
		sess.Attendees = append(sess.Attendees, rec)
		return len(sess.Attendees), false, true
	}
	return 0, false, false
}

// snapshot copies a session so callers never hold a mutable reference into
// the registry. Caller must hold s.mu.
func snapshot(sess *Session) Session {
	out := *sess
	out.Attendees = append([]AttendanceRecord(nil), sess.Attendees...)
	if sess.EndedAt != nil {
		ended := *sess.EndedAt
		out.EndedAt = &ended
	}
	return out
}
