package models

import (
	"fmt"
	"time"
)

// SubstitutionRecord is a vacancy left by an absent teacher and, once
// resolved, its proxy assignment. An empty substitute teacher id means the
// vacancy is still pending.
type SubstitutionRecord struct {
	ID                    string    `db:"id" json:"id"`
	Date                  time.Time `db:"date" json:"date"`
	Slot                  int       `db:"slot" json:"slot"`
	ClassName             string    `db:"class_name" json:"class_name"`
	Subject               string    `db:"subject" json:"subject"`
	Section               string    `db:"section" json:"section"`
	AbsentTeacherID       string    `db:"absent_teacher_id" json:"absent_teacher_id"`
	AbsentTeacherName     string    `db:"absent_teacher_name" json:"absent_teacher_name"`
	SubstituteTeacherID   string    `db:"substitute_teacher_id" json:"substitute_teacher_id"`
	SubstituteTeacherName string    `db:"substitute_teacher_name" json:"substitute_teacher_name"`
	IsArchived            bool      `db:"is_archived" json:"is_archived"`
	CreatedAt             time.Time `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time `db:"updated_at" json:"updated_at"`
}

// Resolved reports whether a substitute has been committed.
func (r *SubstitutionRecord) Resolved() bool {
	return r != nil && r.SubstituteTeacherID != ""
}

// DedupKey identifies the duty tuple the vacancy scanner keys on. Re-scans
// of the same date never create a second record with the same key.
func (r *SubstitutionRecord) DedupKey() string {
	return SubstitutionDedupKey(r.Date, r.AbsentTeacherID, r.Slot, r.ClassName)
}

// SubstitutionDedupKey builds the (date, absent teacher, slot, class) key.
func SubstitutionDedupKey(date time.Time, absentTeacherID string, slot int, className string) string {
	return fmt.Sprintf("%s|%s|%d|%s", DateKey(date), absentTeacherID, slot, className)
}

// ShadowEntryID returns the id of the record's timetable override entry.
func (r *SubstitutionRecord) ShadowEntryID() string {
	return ShadowEntryID(r.ID)
}

// SubstitutionFilter scopes listing queries.
type SubstitutionFilter struct {
	Date            *time.Time
	Section         string
	IncludeArchived bool
	OnlyPending     bool
}

// Workload is a read-only snapshot of one teacher's weekly load, recomputed
// on every query.
type Workload struct {
	TeacherID string    `json:"teacher_id"`
	WeekStart time.Time `json:"week_start"`
	WeekEnd   time.Time `json:"week_end"`
	Base      int       `json:"base"`
	Group     int       `json:"group"`
	Proxy     int       `json:"proxy"`
	Total     int       `json:"total"`
	Cap       int       `json:"cap"`
	Remaining int       `json:"remaining"`
}

// Availability is the verdict for one teacher at one (date, slot).
type Availability struct {
	TeacherID string    `json:"teacher_id"`
	Date      time.Time `json:"date"`
	Slot      int       `json:"slot"`
	Available bool      `json:"available"`
	Reason    string    `json:"reason,omitempty"`
}

// Busy-set reason codes surfaced through Availability.Reason.
const (
	BusyReasonAbsent        = "absent"
	BusyReasonScheduled     = "scheduled"
	BusyReasonCombinedBlock = "combined-block"
	BusyReasonSubstituting  = "substituting"
)

// Candidate is one ranked substitute option for a vacancy. Unavailable
// candidates are informational only and never auto-selected.
type Candidate struct {
	TeacherID   string `json:"teacher_id"`
	TeacherName string `json:"teacher_name"`
	Total       int    `json:"total"`
	Remaining   int    `json:"remaining"`
	Available   bool   `json:"available"`
	Reason      string `json:"reason,omitempty"`
}
