package engine

import (
	"time"

	"github.com/noah-isme/sma-proxy-api/internal/models"
	"github.com/noah-isme/sma-proxy-api/internal/state"
)

// BusySet maps occupied teacher ids to the reason they are occupied at one
// (date, slot). It is computed once per resolution pass and reused for every
// candidate, then discarded; commits invalidate it by producing a fresh
// snapshot.
type BusySet map[string]string

// BuildBusySet collects every teacher occupied at (date, slot): direct
// owners of effective timetable entries, combined-block allocations behind
// those entries, and committed substitutes for other vacancies at the same
// slot. excludeSubstitutionID skips one record so a re-assignment does not
// conflict with itself.
func BuildBusySet(snap *state.Snapshot, date time.Time, slot int, excludeSubstitutionID string) BusySet {
	busy := make(BusySet)

	for _, entry := range snap.EffectiveEntriesOn(date) {
		if entry.Slot != slot {
			continue
		}
		if entry.TeacherID != "" {
			if _, taken := busy[entry.TeacherID]; !taken {
				busy[entry.TeacherID] = models.BusyReasonScheduled
			}
		}
		if entry.BlockID == nil {
			continue
		}
		if block, ok := snap.Blocks[*entry.BlockID]; ok {
			for _, alloc := range block.Allocations {
				if _, taken := busy[alloc.TeacherID]; !taken {
					busy[alloc.TeacherID] = models.BusyReasonCombinedBlock
				}
			}
		}
	}

	for _, sub := range snap.Substitutions {
		if sub.IsArchived || !sub.Resolved() || sub.ID == excludeSubstitutionID {
			continue
		}
		if sub.Slot != slot || !models.SameDate(sub.Date, date) {
			continue
		}
		busy[sub.SubstituteTeacherID] = models.BusyReasonSubstituting
	}

	return busy
}

// Resolve answers whether the teacher can take a duty at (date, slot) given
// an already computed busy set. Absence always wins over occupancy.
func Resolve(snap *state.Snapshot, busy BusySet, teacherID string, date time.Time, slot int) models.Availability {
	verdict := models.Availability{
		TeacherID: teacherID,
		Date:      date,
		Slot:      slot,
	}

	if snap.TeacherAbsent(teacherID, date) {
		verdict.Reason = models.BusyReasonAbsent
		return verdict
	}
	if reason, occupied := busy[teacherID]; occupied {
		verdict.Reason = reason
		return verdict
	}

	verdict.Available = true
	return verdict
}

// Availability is the single-teacher entry point; it builds a one-off busy
// set. Ranking passes use BuildBusySet + Resolve to share one set.
func Availability(snap *state.Snapshot, teacherID string, date time.Time, slot int) models.Availability {
	return Resolve(snap, BuildBusySet(snap, date, slot, ""), teacherID, date, slot)
}
