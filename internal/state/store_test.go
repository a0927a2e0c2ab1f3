package state

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-proxy-api/internal/models"
)

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", value)
	require.NoError(t, err)
	return parsed.UTC()
}

func pendingVacancy(id string, date time.Time, slot int, class string) models.SubstitutionRecord {
	return models.SubstitutionRecord{
		ID: id, Date: date, Slot: slot, ClassName: class,
		Subject: "Mathematics", Section: "north", AbsentTeacherID: "t-amir",
	}
}

func TestStoreAddSubstitutionsDeduplicates(t *testing.T) {
	store := NewStore()
	date := day(t, "2026-01-05")

	added := store.AddSubstitutions([]models.SubstitutionRecord{
		pendingVacancy("vac-1", date, 2, "7A"),
	})
	require.Len(t, added, 1)

	// Same duty tuple under a fresh id must be dropped.
	again := store.AddSubstitutions([]models.SubstitutionRecord{
		pendingVacancy("vac-dup", date, 2, "7A"),
		pendingVacancy("vac-2", date, 3, "7A"),
	})
	require.Len(t, again, 1)
	assert.Equal(t, "vac-2", again[0].ID)
	assert.Nil(t, store.SubstitutionByID("vac-dup"))
}

func TestStoreApplyCommitAtomicVisibility(t *testing.T) {
	store := NewStore()
	date := day(t, "2026-01-05")
	vacancy := pendingVacancy("vac-1", date, 2, "7A")
	store.AddSubstitutions([]models.SubstitutionRecord{vacancy})

	vacancy.SubstituteTeacherID = "t-budi"
	vacancy.SubstituteTeacherName = "Budi"
	shadow := models.TimetableEntry{
		ID: vacancy.ShadowEntryID(), Section: "north", ClassName: "7A",
		Date: &date, Slot: 2, TeacherID: "t-budi", IsSubstitution: true,
	}
	store.ApplyCommit(vacancy, shadow)

	got := store.SubstitutionByID("vac-1")
	require.NotNil(t, got)
	assert.True(t, got.Resolved())
	entry := store.EntryByID("sub-entry-vac-1")
	require.NotNil(t, entry)
	assert.Equal(t, "t-budi", entry.TeacherID)

	snap := store.Snapshot()
	assert.Len(t, snap.Substitutions, 1)
	assert.Len(t, snap.Entries, 1)
}

func TestStoreArchiveMatchingIdempotentAndScoped(t *testing.T) {
	store := NewStore()
	date := day(t, "2026-01-05")
	other := day(t, "2026-01-06")

	inScope := pendingVacancy("vac-1", date, 2, "7A")
	otherDate := pendingVacancy("vac-2", other, 2, "7A")
	otherSection := pendingVacancy("vac-3", date, 3, "7B")
	otherSection.Section = "south"
	store.AddSubstitutions([]models.SubstitutionRecord{inScope, otherDate, otherSection})

	archived := store.ArchiveMatching(date, "north")
	assert.Equal(t, []string{"vac-1"}, archived)
	assert.True(t, store.SubstitutionByID("vac-1").IsArchived)
	assert.False(t, store.SubstitutionByID("vac-2").IsArchived)
	assert.False(t, store.SubstitutionByID("vac-3").IsArchived)

	// Second run is a no-op.
	assert.Empty(t, store.ArchiveMatching(date, "north"))
}

func TestStoreArchiveMatchingEmptySectionSweepsWholeDate(t *testing.T) {
	store := NewStore()
	date := day(t, "2026-01-05")
	other := day(t, "2026-01-06")

	north := pendingVacancy("vac-1", date, 2, "7A")
	south := pendingVacancy("vac-2", date, 3, "7B")
	south.Section = "south"
	otherDate := pendingVacancy("vac-3", other, 2, "7A")
	store.AddSubstitutions([]models.SubstitutionRecord{north, south, otherDate})

	archived := store.ArchiveMatching(date, "")
	assert.ElementsMatch(t, []string{"vac-1", "vac-2"}, archived)
	assert.True(t, store.SubstitutionByID("vac-1").IsArchived)
	assert.True(t, store.SubstitutionByID("vac-2").IsArchived)
	assert.False(t, store.SubstitutionByID("vac-3").IsArchived)
}

func TestStoreRemoveSubstitutionDropsShadowEntry(t *testing.T) {
	store := NewStore()
	date := day(t, "2026-01-05")
	vacancy := pendingVacancy("vac-1", date, 2, "7A")
	store.AddSubstitutions([]models.SubstitutionRecord{vacancy})

	vacancy.SubstituteTeacherID = "t-budi"
	store.ApplyCommit(vacancy, models.TimetableEntry{ID: vacancy.ShadowEntryID(), IsSubstitution: true})

	require.True(t, store.RemoveSubstitution("vac-1"))
	assert.Nil(t, store.SubstitutionByID("vac-1"))
	assert.Nil(t, store.EntryByID("sub-entry-vac-1"))
	assert.False(t, store.RemoveSubstitution("vac-1"))
}

func TestStoreSlotLockSerialisesSameSlotOnly(t *testing.T) {
	store := NewStore()
	date := day(t, "2026-01-05")

	unlock := store.LockSlot(date, 2)

	// A different slot is not blocked.
	done := make(chan struct{})
	go func() {
		u := store.LockSlot(date, 3)
		u()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("different slot lock should not block")
	}

	// The same slot waits for release.
	var order []string
	var mu sync.Mutex
	sameSlot := make(chan struct{})
	go func() {
		u := store.LockSlot(date, 2)
		mu.Lock()
		order = append(order, "second")
		mu.Unlock()
		u()
		close(sameSlot)
	}()

	mu.Lock()
	order = append(order, "first")
	mu.Unlock()
	unlock()
	select {
	case <-sameSlot:
	case <-time.After(2 * time.Second):
		t.Fatal("same slot lock never released")
	}
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestSnapshotEffectiveEntriesOn(t *testing.T) {
	store := NewStore()
	date := day(t, "2026-01-05") // Monday
	override := models.TimetableEntry{
		ID: "e-override", Section: "north", ClassName: "7A", DayOfWeek: "MONDAY",
		Date: &date, Slot: 2, TeacherID: "t-fita",
	}
	store.Bootstrap(nil, []models.TimetableEntry{
		{ID: "e-regular", Section: "north", ClassName: "7A", DayOfWeek: "MONDAY", Slot: 2, TeacherID: "t-budi"},
		{ID: "e-tuesday", Section: "north", ClassName: "7A", DayOfWeek: "TUESDAY", Slot: 2, TeacherID: "t-budi"},
		override,
	}, nil, nil, nil, nil)

	effective := store.Snapshot().EffectiveEntriesOn(date)
	require.Len(t, effective, 1)
	assert.Equal(t, "e-override", effective[0].ID)

	tuesday := day(t, "2026-01-06")
	effective = store.Snapshot().EffectiveEntriesOn(tuesday)
	require.Len(t, effective, 1)
	assert.Equal(t, "e-tuesday", effective[0].ID)
}
