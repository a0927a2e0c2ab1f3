package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-proxy-api/internal/models"
)

// SubstitutionRepository durably stores substitution records and their
// shadow timetable entries. Commit and purge span both tables inside one
// transaction so the durable store never holds a half-applied resolution.
type SubstitutionRepository struct {
	db *sqlx.DB
}

// NewSubstitutionRepository constructs the repository.
func NewSubstitutionRepository(db *sqlx.DB) *SubstitutionRepository {
	return &SubstitutionRepository{db: db}
}

// List returns all substitution records, archived ones included; the
// in-memory store filters views.
func (r *SubstitutionRepository) List(ctx context.Context) ([]models.SubstitutionRecord, error) {
	const query = `SELECT id, date, slot, class_name, subject, section,
       absent_teacher_id, absent_teacher_name, substitute_teacher_id, substitute_teacher_name,
       is_archived, created_at, updated_at
FROM substitution_records
ORDER BY date ASC, slot ASC, class_name ASC`
	var records []models.SubstitutionRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, fmt.Errorf("list substitution records: %w", err)
	}
	return records, nil
}

// CreateBatch inserts newly scanned vacancies. Conflicts on the duty tuple
// are ignored so concurrent scans stay idempotent.
func (r *SubstitutionRepository) CreateBatch(ctx context.Context, records []models.SubstitutionRecord) error {
	if len(records) == 0 {
		return nil
	}
	const query = `INSERT INTO substitution_records
	(id, date, slot, class_name, subject, section,
	 absent_teacher_id, absent_teacher_name, substitute_teacher_id, substitute_teacher_name,
	 is_archived, created_at, updated_at)
VALUES (:id, :date, :slot, :class_name, :subject, :section,
	:absent_teacher_id, :absent_teacher_name, :substitute_teacher_id, :substitute_teacher_name,
	:is_archived, :created_at, :updated_at)
ON CONFLICT (date, absent_teacher_id, slot, class_name) DO NOTHING`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create batch: %w", err)
	}
	for i := range records {
		if _, err := tx.NamedExecContext(ctx, query, records[i]); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("create substitution record: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create batch: %w", err)
	}
	return nil
}

// SaveCommit writes a resolved record and upserts its shadow entry in one
// transaction.
func (r *SubstitutionRepository) SaveCommit(ctx context.Context, record models.SubstitutionRecord, entry models.TimetableEntry) error {
	const recordQuery = `UPDATE substitution_records
SET substitute_teacher_id = :substitute_teacher_id,
    substitute_teacher_name = :substitute_teacher_name,
    updated_at = :updated_at
WHERE id = :id`
	const entryQuery = `INSERT INTO timetable_entries
	(id, section, class_name, day_of_week, date, slot, subject,
	 teacher_id, teacher_name, block_id, is_substitution, created_at, updated_at)
VALUES (:id, :section, :class_name, :day_of_week, :date, :slot, :subject,
	:teacher_id, :teacher_name, :block_id, :is_substitution, :created_at, :updated_at)
ON CONFLICT (id) DO UPDATE
SET teacher_id = EXCLUDED.teacher_id,
    teacher_name = EXCLUDED.teacher_name,
    subject = EXCLUDED.subject,
    updated_at = EXCLUDED.updated_at`

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit: %w", err)
	}
	result, err := tx.NamedExecContext(ctx, recordQuery, record)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update substitution record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("check updated substitution rows: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return sql.ErrNoRows
	}
	if _, err := tx.NamedExecContext(ctx, entryQuery, entry); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert shadow entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit substitution: %w", err)
	}
	return nil
}

// Archive flags all non-archived records of the date and returns how many
// rows changed. An empty section matches every wing.
func (r *SubstitutionRepository) Archive(ctx context.Context, date time.Time, section string) (int64, error) {
	const query = `UPDATE substitution_records
SET is_archived = TRUE, updated_at = $3
WHERE date = $1 AND ($2 = '' OR section = $2) AND is_archived = FALSE`
	result, err := r.db.ExecContext(ctx, query, date, section, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("archive substitution records: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check archived rows: %w", err)
	}
	return affected, nil
}

// Delete removes a record and its shadow entry in one transaction.
func (r *SubstitutionRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin purge: %w", err)
	}
	result, err := tx.ExecContext(ctx, `DELETE FROM substitution_records WHERE id = $1`, id)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete substitution record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("check deleted substitution rows: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return sql.ErrNoRows
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM timetable_entries WHERE id = $1`, models.ShadowEntryID(id)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete shadow entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit purge: %w", err)
	}
	return nil
}
