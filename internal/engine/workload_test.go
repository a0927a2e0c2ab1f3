package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-proxy-api/internal/models"
	"github.com/noah-isme/sma-proxy-api/internal/state"
)

func TestWorkWeekOf(t *testing.T) {
	cases := []struct {
		name  string
		date  string
		start string
		end   string
	}{
		{"sunday opens its own week", "2026-01-04", "2026-01-04", "2026-01-08"},
		{"midweek maps back to sunday", "2026-01-06", "2026-01-04", "2026-01-08"},
		{"thursday still inside", "2026-01-08", "2026-01-04", "2026-01-08"},
		{"friday belongs to the elapsed window", "2026-01-09", "2026-01-04", "2026-01-08"},
		{"saturday belongs to the elapsed window", "2026-01-10", "2026-01-04", "2026-01-08"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			start, end := WorkWeekOf(mustDate(t, tc.date))
			assert.Equal(t, tc.start, models.DateKey(start))
			assert.Equal(t, tc.end, models.DateKey(end))
		})
	}
}

func TestComputeWorkloadSumsBaseGroupAndProxy(t *testing.T) {
	day := mustDate(t, monday)
	snap := newSnapshot(func(s *state.Snapshot) {
		s.Assignments = []models.LoadAssignment{
			{
				ID: "load-1", TeacherID: "t-budi", GradeID: "grade-7", GroupPeriods: 2,
				Subjects: []models.SubjectLoad{
					{Subject: "Mathematics", PeriodsPerWeek: 6},
					{Subject: "Physics", PeriodsPerWeek: 4},
				},
			},
			{
				ID: "load-2", TeacherID: "t-budi", GradeID: "grade-8", GroupPeriods: 1,
				Subjects: []models.SubjectLoad{
					{Subject: "Mathematics", PeriodsPerWeek: 5},
				},
			},
			{
				ID: "load-other", TeacherID: "t-cito", GradeID: "grade-7",
				Subjects: []models.SubjectLoad{{Subject: "Biology", PeriodsPerWeek: 30}},
			},
		}
		s.Substitutions = []models.SubstitutionRecord{
			{ID: "sub-1", Date: day, Slot: 2, SubstituteTeacherID: "t-budi"},
			{ID: "sub-2", Date: mustDate(t, "2026-01-07"), Slot: 1, SubstituteTeacherID: "t-budi"},
			// Outside the work-week window.
			{ID: "sub-3", Date: mustDate(t, "2026-01-12"), Slot: 1, SubstituteTeacherID: "t-budi"},
			// Archived proxies no longer count.
			{ID: "sub-4", Date: day, Slot: 5, SubstituteTeacherID: "t-budi", IsArchived: true},
			// Pending vacancy, no substitute yet.
			{ID: "sub-5", Date: day, Slot: 6},
		}
	})

	load := ComputeWorkload(snap, "t-budi", day, 35)
	assert.Equal(t, 15, load.Base)
	assert.Equal(t, 3, load.Group)
	assert.Equal(t, 2, load.Proxy)
	assert.Equal(t, 20, load.Total)
	assert.Equal(t, 15, load.Remaining)
	assert.Equal(t, 35, load.Cap)
}

func TestComputeWorkloadDefaultsCapAndClampsRemaining(t *testing.T) {
	day := mustDate(t, monday)
	snap := newSnapshot(func(s *state.Snapshot) {
		s.Assignments = []models.LoadAssignment{
			{ID: "load-1", TeacherID: "t-eko", Subjects: []models.SubjectLoad{{Subject: "History", PeriodsPerWeek: 40}}},
		}
	})

	load := ComputeWorkload(snap, "t-eko", day, 0)
	assert.Equal(t, DefaultWeeklyCap, load.Cap)
	assert.Equal(t, 40, load.Total)
	assert.Equal(t, 0, load.Remaining)
}

func TestComputeWorkloadMonotonicAfterCommit(t *testing.T) {
	day := mustDate(t, monday)
	snap := newSnapshot(func(s *state.Snapshot) {
		s.Assignments = []models.LoadAssignment{
			{ID: "load-1", TeacherID: "t-budi", Subjects: []models.SubjectLoad{{Subject: "Mathematics", PeriodsPerWeek: 10}}},
		}
	})

	before := ComputeWorkload(snap, "t-budi", day, 35)
	snap.Substitutions = append(snap.Substitutions, models.SubstitutionRecord{
		ID: "sub-new", Date: day, Slot: 3, SubstituteTeacherID: "t-budi",
	})
	after := ComputeWorkload(snap, "t-budi", day, 35)

	assert.Equal(t, before.Proxy+1, after.Proxy)
	assert.Equal(t, before.Total+1, after.Total)
	assert.Equal(t, before.Base, after.Base)
	assert.Equal(t, before.Group, after.Group)
}
