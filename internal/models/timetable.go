package models

import "time"

// ShadowEntryPrefix is the synthetic id prefix linking a substitution's
// timetable override back to its substitution record.
const ShadowEntryPrefix = "sub-entry-"

// TimetableEntry is one scheduled duty. Recurring entries carry DayOfWeek
// and a nil Date; a non-nil Date pins the entry to a single calendar day and
// supersedes the recurring entry at the same (section, slot) for that day.
type TimetableEntry struct {
	ID             string     `db:"id" json:"id"`
	Section        string     `db:"section" json:"section"`
	ClassName      string     `db:"class_name" json:"class_name"`
	DayOfWeek      string     `db:"day_of_week" json:"day_of_week"`
	Date           *time.Time `db:"date" json:"date,omitempty"`
	Slot           int        `db:"slot" json:"slot"`
	Subject        string     `db:"subject" json:"subject"`
	TeacherID      string     `db:"teacher_id" json:"teacher_id"`
	TeacherName    string     `db:"teacher_name" json:"teacher_name"`
	BlockID        *string    `db:"block_id" json:"block_id,omitempty"`
	IsSubstitution bool       `db:"is_substitution" json:"is_substitution"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// OccursOn reports whether the entry is in effect on the given date, either
// by exact date pin or by recurring weekday match.
func (e *TimetableEntry) OccursOn(date time.Time) bool {
	if e.Date != nil {
		return SameDate(*e.Date, date)
	}
	return e.DayOfWeek == WeekdayName(date)
}

// ShadowEntryID derives the synthetic timetable entry id for a substitution.
func ShadowEntryID(substitutionID string) string {
	return ShadowEntryPrefix + substitutionID
}

// CombinedBlock models a single slot taught jointly by several teachers.
// Every allocated teacher counts as occupied for the block's slot.
type CombinedBlock struct {
	ID          string            `db:"id" json:"id"`
	Name        string            `db:"name" json:"name"`
	Allocations []BlockAllocation `json:"allocations"`
}

// BlockAllocation binds one teacher into a combined block.
type BlockAllocation struct {
	BlockID     string `db:"block_id" json:"-"`
	TeacherID   string `db:"teacher_id" json:"teacher_id"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	Subject     string `db:"subject" json:"subject"`
}

// HasTeacher reports whether the teacher is allocated into the block.
func (b *CombinedBlock) HasTeacher(teacherID string) bool {
	if b == nil {
		return false
	}
	for _, alloc := range b.Allocations {
		if alloc.TeacherID == teacherID {
			return true
		}
	}
	return false
}
