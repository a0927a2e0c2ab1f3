package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-proxy-api/internal/engine"
	"github.com/noah-isme/sma-proxy-api/internal/models"
	"github.com/noah-isme/sma-proxy-api/internal/state"
	"github.com/noah-isme/sma-proxy-api/internal/suggest"
	appErrors "github.com/noah-isme/sma-proxy-api/pkg/errors"
)

type substitutionSyncer interface {
	CreateBatch(ctx context.Context, records []models.SubstitutionRecord) error
	SaveCommit(ctx context.Context, record models.SubstitutionRecord, entry models.TimetableEntry) error
}

type attendanceReader interface {
	ListByDateRange(ctx context.Context, from, to time.Time) ([]models.AttendanceRecord, error)
}

type assignmentNotifier interface {
	AssignmentCommitted(ctx context.Context, record models.SubstitutionRecord)
}

type proposalSource interface {
	Fetch(ctx context.Context, date time.Time) ([]suggest.Proposal, error)
}

type engineMetrics interface {
	RecordScan(created int)
	RecordCommit(outcome string)
}

// ScanRequest targets one calendar date.
type ScanRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// CommitRequest pairs a vacancy with a candidate substitute.
type CommitRequest struct {
	TeacherID string `json:"teacher_id" validate:"required"`
}

// ApplyProposalsRequest asks the advisory source for pairings on one date.
type ApplyProposalsRequest struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

// ProposalOutcome reports how one advisory pairing fared in validation.
type ProposalOutcome struct {
	VacancyID string `json:"vacancy_id"`
	TeacherID string `json:"teacher_id"`
	Committed bool   `json:"committed"`
	Reason    string `json:"reason,omitempty"`
}

// SubstitutionService owns vacancy scanning, candidate ranking and the
// commit pipeline. It is the only writer of substitute assignments.
type SubstitutionService struct {
	store     *state.Store
	syncer    substitutionSyncer
	feed      attendanceReader
	notifier  assignmentNotifier
	proposals proposalSource
	metrics   engineMetrics
	validator *validator.Validate
	logger    *zap.Logger
	weeklyCap int
}

// NewSubstitutionService creates a service instance. notifier, feed,
// proposals and metrics may be nil.
func NewSubstitutionService(
	store *state.Store,
	syncer substitutionSyncer,
	feed attendanceReader,
	notifier assignmentNotifier,
	proposals proposalSource,
	metrics engineMetrics,
	validate *validator.Validate,
	logger *zap.Logger,
	weeklyCap int,
) *SubstitutionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if weeklyCap <= 0 {
		weeklyCap = engine.DefaultWeeklyCap
	}
	return &SubstitutionService{
		store:     store,
		syncer:    syncer,
		feed:      feed,
		notifier:  notifier,
		proposals: proposals,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		weeklyCap: weeklyCap,
	}
}

// Scan detects duties vacated by absences on the requested date and
// persists the new unresolved records. Re-running never duplicates.
func (s *SubstitutionService) Scan(ctx context.Context, req ScanRequest) ([]models.SubstitutionRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid scan payload")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	if s.feed != nil {
		start, end := engine.WorkWeekOf(date)
		records, err := s.feed.ListByDateRange(ctx, start, end)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to refresh attendance feed")
		}
		s.store.RefreshAttendance(records)
	}

	snap := s.store.Snapshot()
	created := engine.ScanVacancies(snap, date)
	if len(created) == 0 {
		return []models.SubstitutionRecord{}, nil
	}

	if err := s.syncer.CreateBatch(ctx, created); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to persist scanned vacancies")
	}
	added := s.store.AddSubstitutions(created)
	if s.metrics != nil {
		s.metrics.RecordScan(len(added))
	}

	s.logger.Info("vacancy scan completed",
		zap.String("date", models.DateKey(date)),
		zap.Int("created", len(added)))
	return added, nil
}

// List returns substitution records matching the filter, pending first.
func (s *SubstitutionService) List(ctx context.Context, filter models.SubstitutionFilter) ([]models.SubstitutionRecord, error) {
	snap := s.store.Snapshot()

	records := make([]models.SubstitutionRecord, 0, len(snap.Substitutions))
	for _, sub := range snap.Substitutions {
		if sub.IsArchived && !filter.IncludeArchived {
			continue
		}
		if filter.OnlyPending && sub.Resolved() {
			continue
		}
		if filter.Section != "" && sub.Section != filter.Section {
			continue
		}
		if filter.Date != nil && !models.SameDate(sub.Date, *filter.Date) {
			continue
		}
		records = append(records, sub)
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Slot != b.Slot {
			return a.Slot < b.Slot
		}
		return a.ClassName < b.ClassName
	})
	return records, nil
}

// Candidates ranks substitutes for one vacancy.
func (s *SubstitutionService) Candidates(ctx context.Context, vacancyID string) ([]models.Candidate, error) {
	snap := s.store.Snapshot()
	vacancy := snap.SubstitutionByID(vacancyID)
	if vacancy == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "vacancy not found")
	}
	return engine.RankCandidates(snap, vacancy, s.weeklyCap), nil
}

// Commit validates the pairing and atomically resolves the vacancy. Every
// caller, manual or advisory, goes through this path.
func (s *SubstitutionService) Commit(ctx context.Context, vacancyID string, req CommitRequest) (*models.SubstitutionRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid commit payload")
	}

	target := s.store.SubstitutionByID(vacancyID)
	if target == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "vacancy not found")
	}

	// Serialise against other commits for this (date, slot); validation must
	// see the latest busy set, never a stale one.
	unlock := s.store.LockSlot(target.Date, target.Slot)
	defer unlock()

	snap := s.store.Snapshot()
	vacancy := snap.SubstitutionByID(vacancyID)
	if vacancy == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "vacancy not found")
	}

	teacher, ok := snap.Teachers[req.TeacherID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "candidate teacher not found")
	}
	if !teacher.Active {
		return nil, appErrors.Clone(appErrors.ErrValidation, "candidate teacher is inactive")
	}

	if err := engine.ValidateCommit(snap, vacancy, &teacher, s.weeklyCap); err != nil {
		if s.metrics != nil {
			s.metrics.RecordCommit(appErrors.FromError(err).Code)
		}
		return nil, err
	}

	resolved := engine.ResolveVacancy(*vacancy, &teacher)
	shadow := engine.BuildShadowEntry(resolved, &teacher)

	if err := s.syncer.SaveCommit(ctx, resolved, shadow); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "vacancy not found")
		}
		if s.metrics != nil {
			s.metrics.RecordCommit(appErrors.ErrPersistence.Code)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to persist commit")
	}
	s.store.ApplyCommit(resolved, shadow)
	if s.metrics != nil {
		s.metrics.RecordCommit("committed")
	}

	if s.notifier != nil {
		s.notifier.AssignmentCommitted(ctx, resolved)
	}

	s.logger.Info("substitution committed",
		zap.String("vacancy_id", resolved.ID),
		zap.String("substitute_teacher_id", resolved.SubstituteTeacherID),
		zap.String("date", models.DateKey(resolved.Date)),
		zap.Int("slot", resolved.Slot))
	return &resolved, nil
}

// ApplyProposals pulls advisory pairings and runs each through the commit
// pipeline. A rejected proposal never aborts the batch.
func (s *SubstitutionService) ApplyProposals(ctx context.Context, req ApplyProposalsRequest) ([]ProposalOutcome, error) {
	if s.proposals == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "advisory source not configured")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid proposals payload")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	proposals, err := s.proposals.Fetch(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch advisory proposals")
	}

	outcomes := make([]ProposalOutcome, 0, len(proposals))
	for _, proposal := range proposals {
		outcome := ProposalOutcome{VacancyID: proposal.VacancyID, TeacherID: proposal.TeacherID}
		if _, err := s.Commit(ctx, proposal.VacancyID, CommitRequest{TeacherID: proposal.TeacherID}); err != nil {
			outcome.Reason = appErrors.FromError(err).Code
		} else {
			outcome.Committed = true
		}
		outcomes = append(outcomes, outcome)
	}
	return outcomes, nil
}

func parseDate(value string) (time.Time, error) {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid date, expected YYYY-MM-DD")
	}
	return parsed.UTC(), nil
}
