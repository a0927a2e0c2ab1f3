package state

import (
	"strconv"
	"sync"
	"time"

	"github.com/noah-isme/sma-proxy-api/internal/models"
)

// Store owns the in-memory scheduling collections. Reads go through
// Snapshot; mutations happen only after the durable store has acknowledged
// the corresponding write, so readers never observe optimistic state.
type Store struct {
	mu            sync.RWMutex
	teachers      map[string]models.Teacher
	entries       map[string]models.TimetableEntry
	assignments   []models.LoadAssignment
	attendance    map[string]models.AttendanceRecord
	substitutions map[string]models.SubstitutionRecord
	dedup         map[string]string
	blocks        map[string]models.CombinedBlock

	slotMu    sync.Mutex
	slotLocks map[string]*sync.Mutex
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		teachers:      make(map[string]models.Teacher),
		entries:       make(map[string]models.TimetableEntry),
		attendance:    make(map[string]models.AttendanceRecord),
		substitutions: make(map[string]models.SubstitutionRecord),
		dedup:         make(map[string]string),
		blocks:        make(map[string]models.CombinedBlock),
		slotLocks:     make(map[string]*sync.Mutex),
	}
}

// Bootstrap replaces every collection at once, typically at startup from the
// durable store.
func (s *Store) Bootstrap(
	teachers []models.Teacher,
	entries []models.TimetableEntry,
	assignments []models.LoadAssignment,
	attendance []models.AttendanceRecord,
	substitutions []models.SubstitutionRecord,
	blocks []models.CombinedBlock,
) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.teachers = make(map[string]models.Teacher, len(teachers))
	for _, t := range teachers {
		s.teachers[t.ID] = t
	}
	s.entries = make(map[string]models.TimetableEntry, len(entries))
	for _, e := range entries {
		s.entries[e.ID] = e
	}
	s.assignments = append([]models.LoadAssignment(nil), assignments...)
	s.attendance = make(map[string]models.AttendanceRecord, len(attendance))
	for _, a := range attendance {
		s.attendance[models.AttendanceKey(a.UserID, a.Date)] = a
	}
	s.substitutions = make(map[string]models.SubstitutionRecord, len(substitutions))
	s.dedup = make(map[string]string, len(substitutions))
	for _, sub := range substitutions {
		s.substitutions[sub.ID] = sub
		s.dedup[sub.DedupKey()] = sub.ID
	}
	s.blocks = make(map[string]models.CombinedBlock, len(blocks))
	for _, b := range blocks {
		s.blocks[b.ID] = b
	}
}

// RefreshAttendance swaps in the latest attendance feed.
func (s *Store) RefreshAttendance(records []models.AttendanceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attendance = make(map[string]models.AttendanceRecord, len(records))
	for _, a := range records {
		s.attendance[models.AttendanceKey(a.UserID, a.Date)] = a
	}
}

// Snapshot copies the current state into a consistent read-only view.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		Teachers:      make(map[string]models.Teacher, len(s.teachers)),
		Entries:       make([]models.TimetableEntry, 0, len(s.entries)),
		Assignments:   append([]models.LoadAssignment(nil), s.assignments...),
		Attendance:    make(map[string]models.AttendanceRecord, len(s.attendance)),
		Substitutions: make([]models.SubstitutionRecord, 0, len(s.substitutions)),
		Blocks:        make(map[string]models.CombinedBlock, len(s.blocks)),
	}
	for id, t := range s.teachers {
		snap.Teachers[id] = t
	}
	for _, e := range s.entries {
		snap.Entries = append(snap.Entries, e)
	}
	for k, a := range s.attendance {
		snap.Attendance[k] = a
	}
	for _, sub := range s.substitutions {
		snap.Substitutions = append(snap.Substitutions, sub)
	}
	for id, b := range s.blocks {
		snap.Blocks[id] = b
	}
	return snap
}

// LockSlot serialises commits touching one (date, slot). Commits for
// different slots proceed concurrently. The returned func releases the lock.
func (s *Store) LockSlot(date time.Time, slot int) func() {
	key := models.DateKey(date) + "|" + strconv.Itoa(slot)

	s.slotMu.Lock()
	lock, ok := s.slotLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.slotLocks[key] = lock
	}
	s.slotMu.Unlock()

	lock.Lock()
	return lock.Unlock
}

// AddSubstitutions inserts records whose dedup tuple is not yet present and
// returns the ones actually added. Safe to interleave with commits.
func (s *Store) AddSubstitutions(records []models.SubstitutionRecord) []models.SubstitutionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	var added []models.SubstitutionRecord
	for _, rec := range records {
		key := rec.DedupKey()
		if _, exists := s.dedup[key]; exists {
			continue
		}
		s.substitutions[rec.ID] = rec
		s.dedup[key] = rec.ID
		added = append(added, rec)
	}
	return added
}

// ApplyCommit installs a resolved substitution record and its shadow
// timetable entry in one critical section so readers see both or neither.
func (s *Store) ApplyCommit(record models.SubstitutionRecord, entry models.TimetableEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.substitutions[record.ID] = record
	s.dedup[record.DedupKey()] = record.ID
	s.entries[entry.ID] = entry
}

// ArchiveMatching flags non-archived substitutions for the date and returns
// the affected ids. An empty section matches every wing; re-running is a
// no-op.
func (s *Store) ArchiveMatching(date time.Time, section string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var archived []string
	for id, sub := range s.substitutions {
		if sub.IsArchived || !models.SameDate(sub.Date, date) {
			continue
		}
		if section != "" && sub.Section != section {
			continue
		}
		sub.IsArchived = true
		sub.UpdatedAt = time.Now().UTC()
		s.substitutions[id] = sub
		archived = append(archived, id)
	}
	return archived
}

// RemoveSubstitution hard-deletes a record and its shadow entry. Returns
// false when the id is unknown.
func (s *Store) RemoveSubstitution(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.substitutions[id]
	if !ok {
		return false
	}
	delete(s.substitutions, id)
	if existing, found := s.dedup[sub.DedupKey()]; found && existing == id {
		delete(s.dedup, sub.DedupKey())
	}
	delete(s.entries, sub.ShadowEntryID())
	return true
}

// SubstitutionByID returns a copy of the record, or nil when unknown.
func (s *Store) SubstitutionByID(id string) *models.SubstitutionRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sub, ok := s.substitutions[id]; ok {
		cp := sub
		return &cp
	}
	return nil
}

// TeacherByID returns a copy of the teacher, or nil when unknown.
func (s *Store) TeacherByID(id string) *models.Teacher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if t, ok := s.teachers[id]; ok {
		cp := t
		return &cp
	}
	return nil
}

// EntryByID returns a copy of the timetable entry, or nil when unknown.
func (s *Store) EntryByID(id string) *models.TimetableEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e, ok := s.entries[id]; ok {
		cp := e
		return &cp
	}
	return nil
}
