package analytics

import (
	"errors"
	"math"

	"classroll/internal/store"
)

// ErrNotFound means the caller has no roster entry.
var ErrNotFound = errors.New("roster entry not found")

// atRiskThreshold is the attendance percentage below which a student counts
// as at risk.
const atRiskThreshold = 75

// DepartmentSummary is the per-department aggregate shown to the principal.
type DepartmentSummary struct {
	Department     string `json:"department"`
	TotalStudents  int    `json:"totalStudents"`
	MeanAttendance int    `json:"meanAttendance"`
	AtRisk         int    `json:"atRisk"`
	Remark         string `json:"remark"`
}

// AtRiskStudent is a roster entry banded by how far below the threshold it
// sits.
type AtRiskStudent struct {
	store.RosterEntry
	Band string `json:"band"`
}

// HODView is the department head's own-department breakdown.
type HODView struct {
	Department     string          `json:"department"`
	TotalStudents  int             `json:"totalStudents"`
	MeanAttendance int             `json:"meanAttendance"`
	AtRisk         []AtRiskStudent `json:"atRisk"`
}

// FacultyView is the faculty roster plus aggregates for one department.
type FacultyView struct {
	Department     string              `json:"department"`
	Students       []store.RosterEntry `json:"students"`
	MeanAttendance int                 `json:"meanAttendance"`
	MeanMarks      int                 `json:"meanMarks"`
	AtRisk         int                 `json:"atRisk"`
}

// StudentView is one student's own record plus illustrative trend data. The
// trends are static placeholders, not derived from session history.
type StudentView struct {
	Student         store.RosterEntry `json:"student"`
	AttendanceTrend []int             `json:"attendanceTrend"`
	MarksTrend      []int             `json:"marksTrend"`
}

// Service computes role dashboards over the static roster. Read-only, so it
// is safe to share across requests.
type Service struct {
	roster *store.Roster
}

// NewService creates an aggregator over the roster.
func NewService(roster *store.Roster) *Service {
	return &Service{roster: roster}
}

// DepartmentSummaries aggregates every fixed department for the principal.
// An empty department yields a zero mean, not an error.
func (s *Service) DepartmentSummaries() []DepartmentSummary {
	out := []DepartmentSummary{}
	for _, dept := range s.roster.Departments() {
		entries := s.roster.ByDepartment(dept)
		mean := meanAttendance(entries)
		out = append(out, DepartmentSummary{
			Department:     dept,
			TotalStudents:  len(entries),
			MeanAttendance: mean,
			AtRisk:         countAtRisk(entries),
			Remark:         remark(mean),
		})
	}
	return out
}

// DepartmentHead restricts the threshold logic to the caller's department
// and bands each at-risk student.
func (s *Service) DepartmentHead(dept string) HODView {
	entries := s.roster.ByDepartment(dept)
	view := HODView{
		Department:     dept,
		TotalStudents:  len(entries),
		MeanAttendance: meanAttendance(entries),
		AtRisk:         []AtRiskStudent{},
	}
	for _, e := range entries {
		if e.Attendance >= atRiskThreshold {
			continue
		}
		view.AtRisk = append(view.AtRisk, AtRiskStudent{RosterEntry: e, Band: band(e.Attendance)})
	}
	return view
}

// Faculty returns the department roster with aggregate means.
func (s *Service) Faculty(dept string) FacultyView {
	entries := s.roster.ByDepartment(dept)
	return FacultyView{
		Department:     dept,
		Students:       entries,
		MeanAttendance: meanAttendance(entries),
		MeanMarks:      meanMarks(entries),
		AtRisk:         countAtRisk(entries),
	}
}

// Student returns the caller's own roster entry with the illustrative
// trends. Unknown roll numbers are an error, never an empty record.
func (s *Service) Student(rollNo string) (StudentView, error) {
	entry := s.roster.ByRollNo(rollNo)
	if entry == nil {
		return StudentView{}, ErrNotFound
	}
	return StudentView{
		Student:         *entry,
		AttendanceTrend: []int{78, 82, 85, 80, 88, 90},
		MarksTrend:      []int{72, 75, 80, 78, 84, 86},
	}, nil
}

// remark bands a department mean.
func remark(mean int) string {
	switch {
	case mean >= 85:
		return "Excellent"
	case mean >= 75:
		return "Good"
	default:
		return "Needs Improvement"
	}
}

// band classifies one at-risk attendance value.
func band(attendance int) string {
	switch {
	case attendance < 60:
		return "Critical"
	case attendance < 70:
		return "Warning"
	default:
		return "Needs Counseling"
	}
}

func meanAttendance(entries []store.RosterEntry) int {
	if len(entries) == 0 {
		return 0
	}
	sum := 0
	for _, e := range entries {
		sum += e.Attendance
	}
	return int(math.Round(float64(sum) / float64(len(entries))))
}

func meanMarks(entries []store.RosterEntry) int {
	if len(entries) == 0 {
		return 0
	}
	sum := 0
	for _, e := range entries {
		sum += e.Marks
	}
	return int(math.Round(float64(sum) / float64(len(entries))))
}

func countAtRisk(entries []store.RosterEntry) int {
	n := 0
	for _, e := range entries {
		if e.Attendance < atRiskThreshold {
			n++
		}
	}
	return n
}
