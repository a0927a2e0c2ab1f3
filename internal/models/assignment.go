package models

import (
	"time"

	"github.com/lib/pq"
)

// LoadAssignment is a teacher's teaching-load profile for one grade
// context. A teacher may hold several; weekly totals sum across all of them.
type LoadAssignment struct {
	ID               string         `db:"id" json:"id"`
	TeacherID        string         `db:"teacher_id" json:"teacher_id"`
	GradeID          string         `db:"grade_id" json:"grade_id"`
	TargetSectionIDs pq.StringArray `db:"target_section_ids" json:"target_section_ids"`
	GroupPeriods     int            `db:"group_periods" json:"group_periods"`
	Subjects         []SubjectLoad  `json:"subjects"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}

// SubjectLoad is one subject line inside a load assignment.
type SubjectLoad struct {
	AssignmentID   string `db:"assignment_id" json:"-"`
	Subject        string `db:"subject" json:"subject"`
	PeriodsPerWeek int    `db:"periods_per_week" json:"periods_per_week"`
	Room           string `db:"room" json:"room"`
}

// BasePeriods sums the assignment's subject periods.
func (a *LoadAssignment) BasePeriods() int {
	total := 0
	for _, s := range a.Subjects {
		total += s.PeriodsPerWeek
	}
	return total
}
