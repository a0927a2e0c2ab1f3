package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-proxy-api/internal/models"
)

func newSubstitutionMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSubstitutionRepositoryList(t *testing.T) {
	db, mock, cleanup := newSubstitutionMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{
		"id", "date", "slot", "class_name", "subject", "section",
		"absent_teacher_id", "absent_teacher_name", "substitute_teacher_id", "substitute_teacher_name",
		"is_archived", "created_at", "updated_at",
	}).AddRow("vac-1", now, 2, "7A", "Mathematics", "north", "t-amir", "Amir", "", "", false, now, now)
	mock.ExpectQuery("SELECT id, date, slot, class_name, subject, section").WillReturnRows(rows)

	records, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "vac-1", records[0].ID)
	assert.False(t, records[0].Resolved())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryCreateBatch(t *testing.T) {
	db, mock, cleanup := newSubstitutionMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO substitution_records").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO substitution_records").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.CreateBatch(context.Background(), []models.SubstitutionRecord{
		{ID: "vac-1", Date: time.Now(), Slot: 2, ClassName: "7A", AbsentTeacherID: "t-amir"},
		{ID: "vac-2", Date: time.Now(), Slot: 3, ClassName: "7B", AbsentTeacherID: "t-amir"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryCreateBatchEmpty(t *testing.T) {
	db, _, cleanup := newSubstitutionMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)
	require.NoError(t, repo.CreateBatch(context.Background(), nil))
}

func TestSubstitutionRepositorySaveCommit(t *testing.T) {
	db, mock, cleanup := newSubstitutionMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE substitution_records").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO timetable_entries").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	date := time.Now()
	record := models.SubstitutionRecord{ID: "vac-1", SubstituteTeacherID: "t-budi", SubstituteTeacherName: "Budi"}
	entry := models.TimetableEntry{ID: models.ShadowEntryID("vac-1"), Date: &date, IsSubstitution: true, TeacherID: "t-budi"}

	require.NoError(t, repo.SaveCommit(context.Background(), record, entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositorySaveCommitUnknownVacancy(t *testing.T) {
	db, mock, cleanup := newSubstitutionMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE substitution_records").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.SaveCommit(context.Background(), models.SubstitutionRecord{ID: "missing"}, models.TimetableEntry{})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryArchive(t *testing.T) {
	db, mock, cleanup := newSubstitutionMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	mock.ExpectExec("UPDATE substitution_records").
		WillReturnResult(sqlmock.NewResult(0, 3))

	affected, err := repo.Archive(context.Background(), time.Now(), "north")
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryArchiveWholeDate(t *testing.T) {
	db, mock, cleanup := newSubstitutionMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	date := time.Now()
	mock.ExpectExec("UPDATE substitution_records").
		WithArgs(date, "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))

	affected, err := repo.Archive(context.Background(), date, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newSubstitutionMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM substitution_records").
		WithArgs("vac-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM timetable_entries").
		WithArgs("sub-entry-vac-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), "vac-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubstitutionRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newSubstitutionMock(t)
	defer cleanup()
	repo := NewSubstitutionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM substitution_records").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
