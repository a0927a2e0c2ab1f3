package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-proxy-api/internal/engine"
	"github.com/noah-isme/sma-proxy-api/internal/models"
	"github.com/noah-isme/sma-proxy-api/internal/state"
	appErrors "github.com/noah-isme/sma-proxy-api/pkg/errors"
)

// WorkloadService answers read-only workload and availability queries.
type WorkloadService struct {
	store     *state.Store
	logger    *zap.Logger
	weeklyCap int
}

func NewWorkloadService(store *state.Store, logger *zap.Logger, weeklyCap int) *WorkloadService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if weeklyCap <= 0 {
		weeklyCap = engine.DefaultWeeklyCap
	}
	return &WorkloadService{store: store, logger: logger, weeklyCap: weeklyCap}
}

// Workload computes the weekly totals for the work week containing dateStr.
func (s *WorkloadService) Workload(ctx context.Context, teacherID, dateStr string) (*models.Workload, error) {
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}
	snap := s.store.Snapshot()
	if _, ok := snap.Teachers[teacherID]; !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	workload := engine.ComputeWorkload(snap, teacherID, date, s.weeklyCap)
	return &workload, nil
}

// Availability resolves whether the teacher is free at one (date, slot).
func (s *WorkloadService) Availability(ctx context.Context, teacherID, dateStr string, slot int) (*models.Availability, error) {
	date, err := parseDate(dateStr)
	if err != nil {
		return nil, err
	}
	if slot <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "slot must be a positive period number")
	}
	snap := s.store.Snapshot()
	if _, ok := snap.Teachers[teacherID]; !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
	}
	availability := engine.Availability(snap, teacherID, date, slot)
	return &availability, nil
}
