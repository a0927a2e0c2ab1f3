package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-proxy-api/internal/models"
)

// AssignmentRepository reads teacher load assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// List returns all load assignments with their subject lines attached.
func (r *AssignmentRepository) List(ctx context.Context) ([]models.LoadAssignment, error) {
	const assignmentQuery = `SELECT id, teacher_id, grade_id, target_section_ids, group_periods, created_at
FROM load_assignments
ORDER BY teacher_id ASC, grade_id ASC`
	var assignments []models.LoadAssignment
	if err := r.db.SelectContext(ctx, &assignments, assignmentQuery); err != nil {
		return nil, fmt.Errorf("list load assignments: %w", err)
	}

	const loadQuery = `SELECT assignment_id, subject, periods_per_week, room
FROM subject_loads
ORDER BY assignment_id ASC, subject ASC`
	var loads []models.SubjectLoad
	if err := r.db.SelectContext(ctx, &loads, loadQuery); err != nil {
		return nil, fmt.Errorf("list subject loads: %w", err)
	}

	byAssignment := make(map[string][]models.SubjectLoad, len(assignments))
	for _, load := range loads {
		byAssignment[load.AssignmentID] = append(byAssignment[load.AssignmentID], load)
	}
	for i := range assignments {
		assignments[i].Subjects = byAssignment[assignments[i].ID]
	}
	return assignments, nil
}
