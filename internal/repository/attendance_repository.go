package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-proxy-api/internal/models"
)

// AttendanceRepository reads the externally synced attendance feed.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ListByDateRange returns attendance records with dates inside [from, to].
func (r *AttendanceRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]models.AttendanceRecord, error) {
	const query = `SELECT id, user_id, date, check_in, check_out
FROM attendance_records
WHERE date BETWEEN $1 AND $2
ORDER BY date ASC, user_id ASC`
	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, from, to); err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	return records, nil
}
