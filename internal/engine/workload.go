package engine

import (
	"time"

	"github.com/noah-isme/sma-proxy-api/internal/models"
	"github.com/noah-isme/sma-proxy-api/internal/state"
)

// DefaultWeeklyCap is the fallback maximum of teaching periods per teacher
// per work-week.
const DefaultWeeklyCap = 35

// WorkWeekOf returns the Sunday..Thursday teaching window containing date.
// Friday and Saturday dates map into the window opened by the preceding
// Sunday.
func WorkWeekOf(date time.Time) (time.Time, time.Time) {
	d := date.UTC()
	civil := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	start := civil.AddDate(0, 0, -int(civil.Weekday()))
	return start, start.AddDate(0, 0, 4)
}

// InWorkWeek reports whether date falls inside the window [start, end].
func InWorkWeek(date, start, end time.Time) bool {
	key := models.DateKey(date)
	return key >= models.DateKey(start) && key <= models.DateKey(end)
}

// ComputeWorkload recomputes the teacher's weekly load from the snapshot.
// Proxy duties count only committed, non-archived substitutions inside the
// work-week window of the reference date.
func ComputeWorkload(snap *state.Snapshot, teacherID string, date time.Time, cap int) models.Workload {
	if cap <= 0 {
		cap = DefaultWeeklyCap
	}
	start, end := WorkWeekOf(date)

	load := models.Workload{
		TeacherID: teacherID,
		WeekStart: start,
		WeekEnd:   end,
		Cap:       cap,
	}

	for _, assignment := range snap.Assignments {
		if assignment.TeacherID != teacherID {
			continue
		}
		load.Base += assignment.BasePeriods()
		load.Group += assignment.GroupPeriods
	}

	for _, sub := range snap.Substitutions {
		if sub.IsArchived || sub.SubstituteTeacherID != teacherID {
			continue
		}
		if InWorkWeek(sub.Date, start, end) {
			load.Proxy++
		}
	}

	load.Total = load.Base + load.Group + load.Proxy
	load.Remaining = load.Cap - load.Total
	if load.Remaining < 0 {
		load.Remaining = 0
	}
	return load
}
