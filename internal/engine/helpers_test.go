package engine

import (
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/noah-isme/sma-proxy-api/internal/models"
	"github.com/noah-isme/sma-proxy-api/internal/state"
)

// 2026-01-05 is a Monday; its work-week runs 2026-01-04 (Sunday) through
// 2026-01-08 (Thursday).
const monday = "2026-01-05"

func mustDate(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		t.Fatalf("parse date %q: %v", value, err)
	}
	return parsed.UTC()
}

func present(teacherID string, date time.Time) models.AttendanceRecord {
	return models.AttendanceRecord{
		ID:      "att-" + teacherID + "-" + models.DateKey(date),
		UserID:  teacherID,
		Date:    date,
		CheckIn: "07:15",
	}
}

func medical(teacherID string, date time.Time) models.AttendanceRecord {
	rec := present(teacherID, date)
	rec.CheckIn = models.CheckInMedical
	return rec
}

func teacher(id, name string, roles ...string) models.Teacher {
	return models.Teacher{ID: id, FullName: name, Roles: pq.StringArray(roles), Active: true}
}

func recurringEntry(id, section, class, day string, slot int, teacherID string) models.TimetableEntry {
	return models.TimetableEntry{
		ID:        id,
		Section:   section,
		ClassName: class,
		DayOfWeek: day,
		Slot:      slot,
		Subject:   "Mathematics",
		TeacherID: teacherID,
	}
}

func newSnapshot(mutate func(*state.Snapshot)) *state.Snapshot {
	snap := &state.Snapshot{
		Teachers:   make(map[string]models.Teacher),
		Attendance: make(map[string]models.AttendanceRecord),
		Blocks:     make(map[string]models.CombinedBlock),
	}
	if mutate != nil {
		mutate(snap)
	}
	return snap
}

func addTeacher(snap *state.Snapshot, t models.Teacher) {
	snap.Teachers[t.ID] = t
}

func addAttendance(snap *state.Snapshot, rec models.AttendanceRecord) {
	snap.Attendance[models.AttendanceKey(rec.UserID, rec.Date)] = rec
}
