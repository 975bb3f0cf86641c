package session

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"classroll/internal/metrics"
	"classroll/internal/store"
)

var (
	// ErrForbidden means the caller's role or identity does not permit the
	// operation.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means no session has the given id.
	ErrNotFound = errors.New("session not found")
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// qrSize is the pixel edge of the generated PNG.
const qrSize = 256

// Service manages the session lifecycle: creation, code distribution, and
// termination. All session state lives in the registry.
type Service struct {
	sessions  *store.Sessions
	collector *metrics.Collector
}

// NewService creates a lifecycle manager over the registry.
func NewService(sessions *store.Sessions, collector *metrics.Collector) *Service {
	return &Service{sessions: sessions, collector: collector}
}

// Start opens a new session owned by the requester. Only faculty may start
// sessions. The returned session carries the scannable image payload.
func (s *Service) Start(requester Requester, className string) (store.Session, error) {
	if requester.Role != store.RoleFaculty {
		return store.Session{}, ErrForbidden
	}
	code, err := newCode()
	if err != nil {
		return store.Session{}, err
	}
	img, err := qrImage(code)
	if err != nil {
		return store.Session{}, fmt.Errorf("render session code: %w", err)
	}
	sess := s.sessions.Append(store.Session{
		Code:        code,
		FacultyID:   requester.Username,
		FacultyName: requester.Name,
		ClassName:   className,
		QRImage:     img,
		Active:      true,
		StartedAt:   time.Now().UTC(),
		Attendees:   []store.AttendanceRecord{},
	})
	if s.collector != nil {
		s.collector.SessionStarted()
	}
	return sess, nil
}

// End terminates a session. Only the owning faculty may end it. Ending an
// already-ended session succeeds again and refreshes the end timestamp.
func (s *Service) End(requester Requester, sessionID int64) error {
	sess, ok := s.sessions.FindByID(sessionID)
	if !ok {
		return ErrNotFound
	}
	if sess.FacultyID != requester.Username {
		return ErrForbidden
	}
	s.sessions.Deactivate(sessionID, time.Now().UTC())
	if s.collector != nil {
		s.collector.SessionEnded()
	}
	return nil
}

// ListActive returns the requester's active sessions in creation order.
func (s *Service) ListActive(requester Requester) ([]store.Session, error) {
	if requester.Role != store.RoleFaculty {
		return nil, ErrForbidden
	}
	return s.sessions.ActiveOwnedBy(requester.Username), nil
}

// Requester is the slice of the token claims the lifecycle manager checks.
type Requester struct {
	Username string
	Name     string
	Role     store.Role
}

// newCode builds a session code from the millisecond wall clock plus an
// 8-character random suffix. The timestamp prevents reuse across the process
// lifetime; the suffix makes the code unguessable.
func newCode() (string, error) {
	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}
	for i, b := range suffix {
		suffix[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), suffix), nil
}

// qrImage renders the raw code as a PNG and returns it as a data URL, ready
// for an <img> tag.
func qrImage(code string) (string, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, qrSize)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
