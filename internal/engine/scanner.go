package engine

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/sma-proxy-api/internal/models"
	"github.com/noah-isme/sma-proxy-api/internal/state"
)

// ScanVacancies finds every duty on the target date whose teacher is absent
// and has no substitution record yet, and returns the new unresolved
// records. Existing records, resolved ones included, are never touched;
// re-running over the same snapshot yields the same set.
func ScanVacancies(snap *state.Snapshot, date time.Time) []models.SubstitutionRecord {
	seen := make(map[string]struct{}, len(snap.Substitutions))
	for _, sub := range snap.Substitutions {
		seen[sub.DedupKey()] = struct{}{}
	}

	absentees := make([]models.Teacher, 0)
	for _, teacher := range snap.Teachers {
		if snap.TeacherAbsent(teacher.ID, date) {
			absentees = append(absentees, teacher)
		}
	}
	sort.Slice(absentees, func(i, j int) bool { return absentees[i].ID < absentees[j].ID })

	// Only recurring duties count; a date-pinned override already reflects a
	// one-off decision for that day.
	duties := make([]models.TimetableEntry, 0)
	for _, entry := range snap.EffectiveEntriesOn(date) {
		if entry.Date == nil && !entry.IsSubstitution {
			duties = append(duties, entry)
		}
	}
	sort.Slice(duties, func(i, j int) bool {
		if duties[i].Slot != duties[j].Slot {
			return duties[i].Slot < duties[j].Slot
		}
		return duties[i].ClassName < duties[j].ClassName
	})

	now := time.Now().UTC()
	var created []models.SubstitutionRecord
	for _, teacher := range absentees {
		for _, duty := range duties {
			if !dutyBelongsTo(snap, duty, teacher.ID) {
				continue
			}
			key := models.SubstitutionDedupKey(date, teacher.ID, duty.Slot, duty.ClassName)
			if _, exists := seen[key]; exists {
				continue
			}
			seen[key] = struct{}{}
			created = append(created, models.SubstitutionRecord{
				ID:                uuid.NewString(),
				Date:              date,
				Slot:              duty.Slot,
				ClassName:         duty.ClassName,
				Subject:           duty.Subject,
				Section:           duty.Section,
				AbsentTeacherID:   teacher.ID,
				AbsentTeacherName: teacher.FullName,
				CreatedAt:         now,
				UpdatedAt:         now,
			})
		}
	}
	return created
}

func dutyBelongsTo(snap *state.Snapshot, entry models.TimetableEntry, teacherID string) bool {
	if entry.TeacherID == teacherID {
		return true
	}
	if entry.BlockID == nil {
		return false
	}
	block, ok := snap.Blocks[*entry.BlockID]
	if !ok {
		return false
	}
	return block.HasTeacher(teacherID)
}
