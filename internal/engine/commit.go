package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/sma-proxy-api/internal/models"
	"github.com/noah-isme/sma-proxy-api/internal/state"
	appErrors "github.com/noah-isme/sma-proxy-api/pkg/errors"
)

// ValidateCommit runs the full fail-closed gate sequence for assigning
// candidate to the vacancy. Advisory proposals and manual picks both pass
// through here; there is no trusted path around it.
func ValidateCommit(snap *state.Snapshot, vacancy *models.SubstitutionRecord, candidate *models.Teacher, weeklyCap int) error {
	if candidate.ID == vacancy.AbsentTeacherID {
		return appErrors.Clone(appErrors.ErrAbsentIsCandidate,
			fmt.Sprintf("teacher %s is the absent teacher of vacancy %s", candidate.ID, vacancy.ID))
	}

	if !candidate.EligibleForWing(vacancy.Section) {
		return appErrors.Clone(appErrors.ErrIneligibleWing,
			fmt.Sprintf("teacher %s is not assignable to section %s", candidate.ID, vacancy.Section))
	}

	busy := BuildBusySet(snap, vacancy.Date, vacancy.Slot, vacancy.ID)
	if verdict := Resolve(snap, busy, candidate.ID, vacancy.Date, vacancy.Slot); !verdict.Available {
		return appErrors.Clone(appErrors.ErrSlotConflict,
			fmt.Sprintf("teacher %s is %s at %s slot %d", candidate.ID, verdict.Reason, models.DateKey(vacancy.Date), vacancy.Slot))
	}

	load := ComputeWorkload(snap, candidate.ID, vacancy.Date, weeklyCap)
	hypothetical := load.Total + 1
	if vacancy.SubstituteTeacherID == candidate.ID {
		// Re-committing the current substitute: the proxy duty is already in
		// the total.
		hypothetical = load.Total
	}
	if hypothetical > load.Cap {
		return appErrors.Clone(appErrors.ErrWorkloadCapExceeded,
			fmt.Sprintf("teacher %s would reach %d of %d weekly periods", candidate.ID, hypothetical, load.Cap))
	}

	return nil
}

// ResolveVacancy returns the vacancy with the substitute fields populated.
func ResolveVacancy(vacancy models.SubstitutionRecord, candidate *models.Teacher) models.SubstitutionRecord {
	vacancy.SubstituteTeacherID = candidate.ID
	vacancy.SubstituteTeacherName = candidate.FullName
	vacancy.UpdatedAt = time.Now().UTC()
	return vacancy
}

// BuildShadowEntry derives the date-pinned timetable override reflecting a
// committed substitution. Its id is stable across re-assignments of the
// same vacancy so an overwrite replaces rather than accumulates.
func BuildShadowEntry(vacancy models.SubstitutionRecord, candidate *models.Teacher) models.TimetableEntry {
	date := vacancy.Date
	now := time.Now().UTC()
	return models.TimetableEntry{
		ID:             vacancy.ShadowEntryID(),
		Section:        vacancy.Section,
		ClassName:      vacancy.ClassName,
		DayOfWeek:      models.WeekdayName(date),
		Date:           &date,
		Slot:           vacancy.Slot,
		Subject:        vacancy.Subject,
		TeacherID:      candidate.ID,
		TeacherName:    candidate.FullName,
		IsSubstitution: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// RankCandidates evaluates every active, wing-eligible teacher for the
// vacancy. Available candidates come first, lightest weekly load leading;
// unavailable ones trail with their blocking reason and are informational
// only. Ties break by teacher id so repeated calls over one snapshot agree.
func RankCandidates(snap *state.Snapshot, vacancy *models.SubstitutionRecord, weeklyCap int) []models.Candidate {
	busy := BuildBusySet(snap, vacancy.Date, vacancy.Slot, vacancy.ID)

	candidates := make([]models.Candidate, 0, len(snap.Teachers))
	for _, teacher := range snap.Teachers {
		if !teacher.Active || teacher.ID == vacancy.AbsentTeacherID {
			continue
		}
		if !teacher.EligibleForWing(vacancy.Section) {
			continue
		}

		load := ComputeWorkload(snap, teacher.ID, vacancy.Date, weeklyCap)
		verdict := Resolve(snap, busy, teacher.ID, vacancy.Date, vacancy.Slot)
		if verdict.Available && load.Remaining == 0 {
			verdict.Available = false
			verdict.Reason = "at-capacity"
		}

		candidates = append(candidates, models.Candidate{
			TeacherID:   teacher.ID,
			TeacherName: teacher.FullName,
			Total:       load.Total,
			Remaining:   load.Remaining,
			Available:   verdict.Available,
			Reason:      verdict.Reason,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Available != b.Available {
			return a.Available
		}
		if a.Total != b.Total {
			return a.Total < b.Total
		}
		return a.TeacherID < b.TeacherID
	})
	return candidates
}
