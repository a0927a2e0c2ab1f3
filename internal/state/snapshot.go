package state

import (
	"strconv"
	"time"

	"github.com/noah-isme/sma-proxy-api/internal/models"
)

// Snapshot is one consistent view of the scheduling collections. Every
// ranking or validation pass reads a single snapshot so candidates are never
// judged against a half-updated busy set.
type Snapshot struct {
	Teachers      map[string]models.Teacher
	Entries       []models.TimetableEntry
	Assignments   []models.LoadAssignment
	Attendance    map[string]models.AttendanceRecord
	Substitutions []models.SubstitutionRecord
	Blocks        map[string]models.CombinedBlock
}

// AttendanceFor returns the teacher's attendance record for the date, or nil.
func (s *Snapshot) AttendanceFor(teacherID string, date time.Time) *models.AttendanceRecord {
	if rec, ok := s.Attendance[models.AttendanceKey(teacherID, date)]; ok {
		cp := rec
		return &cp
	}
	return nil
}

// TeacherAbsent reports whether the teacher is absent on the date: no
// attendance record, or the MEDICAL leave sentinel.
func (s *Snapshot) TeacherAbsent(teacherID string, date time.Time) bool {
	return !s.AttendanceFor(teacherID, date).Present()
}

// SubstitutionByID returns a copy of the substitution record, or nil.
func (s *Snapshot) SubstitutionByID(id string) *models.SubstitutionRecord {
	for i := range s.Substitutions {
		if s.Substitutions[i].ID == id {
			cp := s.Substitutions[i]
			return &cp
		}
	}
	return nil
}

// EffectiveEntriesOn resolves the timetable for one date: all date-pinned
// entries for that day, plus recurring weekday entries whose (section, slot)
// is not superseded by a date-pinned entry.
func (s *Snapshot) EffectiveEntriesOn(date time.Time) []models.TimetableEntry {
	weekday := models.WeekdayName(date)

	pinned := make(map[string]struct{})
	var result []models.TimetableEntry
	for _, entry := range s.Entries {
		if entry.Date != nil && models.SameDate(*entry.Date, date) {
			pinned[sectionSlotKey(entry.Section, entry.Slot)] = struct{}{}
			result = append(result, entry)
		}
	}
	for _, entry := range s.Entries {
		if entry.Date != nil || entry.DayOfWeek != weekday {
			continue
		}
		if _, shadowed := pinned[sectionSlotKey(entry.Section, entry.Slot)]; shadowed {
			continue
		}
		result = append(result, entry)
	}
	return result
}

func sectionSlotKey(section string, slot int) string {
	return section + "|" + strconv.Itoa(slot)
}
