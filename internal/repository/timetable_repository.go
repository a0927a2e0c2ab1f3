package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-proxy-api/internal/models"
)

// TimetableRepository reads timetable entries and combined blocks.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// ListEntries returns every timetable entry, recurring and date-pinned.
func (r *TimetableRepository) ListEntries(ctx context.Context) ([]models.TimetableEntry, error) {
	const query = `SELECT id, section, class_name, day_of_week, date, slot, subject,
       teacher_id, teacher_name, block_id, is_substitution, created_at, updated_at
FROM timetable_entries
ORDER BY day_of_week ASC, slot ASC, class_name ASC`
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}

// ListBlocks returns combined blocks with their teacher allocations.
func (r *TimetableRepository) ListBlocks(ctx context.Context) ([]models.CombinedBlock, error) {
	const blockQuery = `SELECT id, name FROM combined_blocks ORDER BY id ASC`
	var blocks []models.CombinedBlock
	if err := r.db.SelectContext(ctx, &blocks, blockQuery); err != nil {
		return nil, fmt.Errorf("list combined blocks: %w", err)
	}

	const allocQuery = `SELECT block_id, teacher_id, teacher_name, subject
FROM block_allocations
ORDER BY block_id ASC, teacher_id ASC`
	var allocations []models.BlockAllocation
	if err := r.db.SelectContext(ctx, &allocations, allocQuery); err != nil {
		return nil, fmt.Errorf("list block allocations: %w", err)
	}

	byBlock := make(map[string][]models.BlockAllocation, len(blocks))
	for _, alloc := range allocations {
		byBlock[alloc.BlockID] = append(byBlock[alloc.BlockID], alloc)
	}
	for i := range blocks {
		blocks[i].Allocations = byBlock[blocks[i].ID]
	}
	return blocks, nil
}
