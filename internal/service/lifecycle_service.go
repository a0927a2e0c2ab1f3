package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-proxy-api/internal/state"
	appErrors "github.com/noah-isme/sma-proxy-api/pkg/errors"
)

type lifecycleSyncer interface {
	Archive(ctx context.Context, date time.Time, section string) (int64, error)
	Delete(ctx context.Context, id string) error
}

// ArchiveRequest scopes an archive sweep to one date, optionally one section.
type ArchiveRequest struct {
	Date    string `json:"date" validate:"required,datetime=2006-01-02"`
	Section string `json:"section"`
	Confirm bool   `json:"confirm"`
}

// ArchiveResult reports which records the sweep retired.
type ArchiveResult struct {
	ArchivedIDs []string `json:"archived_ids"`
	Count       int      `json:"count"`
}

// LifecycleService handles archive sweeps and permanent purges. Both are
// destructive and refuse to run without explicit confirmation.
type LifecycleService struct {
	store     *state.Store
	syncer    lifecycleSyncer
	validator *validator.Validate
	logger    *zap.Logger
}

func NewLifecycleService(store *state.Store, syncer lifecycleSyncer, validate *validator.Validate, logger *zap.Logger) *LifecycleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleService{store: store, syncer: syncer, validator: validate, logger: logger}
}

// Archive marks every matching record archived. Already archived records
// are left alone, so repeating a sweep is harmless.
func (s *LifecycleService) Archive(ctx context.Context, req ArchiveRequest) (*ArchiveResult, error) {
	if !req.Confirm {
		return nil, appErrors.Clone(appErrors.ErrConfirmationRequired, "archive requires confirm=true")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid archive payload")
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return nil, err
	}

	if _, err := s.syncer.Archive(ctx, date, req.Section); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to archive substitution records")
	}
	ids := s.store.ArchiveMatching(date, req.Section)

	s.logger.Info("substitutions archived",
		zap.String("date", req.Date),
		zap.String("section", req.Section),
		zap.Int("count", len(ids)))
	return &ArchiveResult{ArchivedIDs: ids, Count: len(ids)}, nil
}

// Purge permanently removes one record and its shadow timetable entry.
func (s *LifecycleService) Purge(ctx context.Context, id string, confirm bool) error {
	if !confirm {
		return appErrors.Clone(appErrors.ErrConfirmationRequired, "purge requires confirm=true")
	}
	if s.store.SubstitutionByID(id) == nil {
		return appErrors.Clone(appErrors.ErrNotFound, "substitution record not found")
	}

	if err := s.syncer.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "substitution record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrPersistence.Code, appErrors.ErrPersistence.Status, "failed to delete substitution record")
	}
	s.store.RemoveSubstitution(id)

	s.logger.Info("substitution purged", zap.String("id", id))
	return nil
}
