package store

// RosterEntry is one student's static analytics record, independent of live
// sessions.
type RosterEntry struct {
	RollNo     string `json:"rollNo"`
	Name       string `json:"name"`
	Department string `json:"department"`
	Attendance int    `json:"attendance"`
	Marks      int    `json:"marks"`
}

// Roster holds the static per-student dataset. Read-only in this scope, so
// no lock is needed after construction.
type Roster struct {
	departments []string
	entries     []RosterEntry
}

// NewRoster builds a roster over the given department codes and entries.
func NewRoster(departments []string, entries []RosterEntry) *Roster {
	return &Roster{departments: departments, entries: entries}
}

// Departments returns the fixed department codes in declaration order.
func (r *Roster) Departments() []string {
	return append([]string(nil), r.departments...)
}

// ByDepartment returns the entries belonging to one department.
func (r *Roster) ByDepartment(dept string) []RosterEntry {
	out := []RosterEntry{}
	for _, e := range r.entries {
		if e.Department == dept {
			out = append(out, e)
		}
	}
	return out
}

// ByRollNo returns the entry with the given roll number, or nil.
func (r *Roster) ByRollNo(rollNo string) *RosterEntry {
	for i := range r.entries {
		if r.entries[i].RollNo == rollNo {
			e := r.entries[i]
			return &e
		}
	}
	return nil
}

// SeedRoster builds the fixed roster created at process start.
func SeedRoster() *Roster {
	return NewRoster(
		[]string{"CSE", "ECE", "EEE", "MECH"},
		[]RosterEntry{
			{RollNo: "CSE001", Name: "Priya Patel", Department: "CSE", Attendance: 92, Marks: 88},
			{RollNo: "CSE002", Name: "Vikram Singh", Department: "CSE", Attendance: 68, Marks: 72},
			{RollNo: "CSE003", Name: "Ananya Desai", Department: "CSE", Attendance: 85, Marks: 91},
			{RollNo: "CSE004", Name: "Rohan Gupta", Department: "CSE", Attendance: 58, Marks: 64},
			{RollNo: "ECE001", Name: "Sneha Reddy", Department: "ECE", Attendance: 94, Marks: 89},
			{RollNo: "ECE002", Name: "Karthik Kumar", Department: "ECE", Attendance: 74, Marks: 78},
			{RollNo: "ECE003", Name: "Divya Joshi", Department: "ECE", Attendance: 80, Marks: 83},
			{RollNo: "ECE004", Name: "Amit Verma", Department: "ECE", Attendance: 69, Marks: 70},
			{RollNo: "EEE001", Name: "Lakshmi Pillai", Department: "EEE", Attendance: 88, Marks: 90},
			{RollNo: "EEE002", Name: "Suresh Babu", Department: "EEE", Attendance: 71, Marks: 66},
			{RollNo: "MECH001", Name: "Arjun Nambiar", Department: "MECH", Attendance: 77, Marks: 75},
			{RollNo: "MECH002", Name: "Farhan Ali", Department: "MECH", Attendance: 63, Marks: 69},
		},
	)
}
