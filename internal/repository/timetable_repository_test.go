package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohitbihal/smart-classroom-api/internal/models"
)

func TestTimetableRepositoryReplaceAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM timetable_entries").
		WithArgs("inst-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM unscheduled_sessions").
		WithArgs("inst-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO timetable_entries").
		WithArgs(sqlmock.AnyArg(), "inst-1", "Monday", "09:00-10:00", "CSE-2-A", "Data Structures", "Dr. Rao", "101", "Theory", "regular", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO timetable_entries").
		WithArgs(sqlmock.AnyArg(), "inst-1", "Monday", "10:00-11:00", "CSE-2-A", "Operating Systems", "Dr. Iyer", "101", "Theory", "fixed", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO unscheduled_sessions").
		WithArgs(sqlmock.AnyArg(), "inst-1", "CSE-2-B", "Algorithms", "no feasible slot", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	entries := []models.TimetableEntry{
		{Day: "Monday", Time: "09:00-10:00", ClassName: "CSE-2-A", Subject: "Data Structures", Faculty: "Dr. Rao", Room: "101", Type: models.SessionTheory, ClassType: models.EntryRegular},
		{Day: "Monday", Time: "10:00-11:00", ClassName: "CSE-2-A", Subject: "Operating Systems", Faculty: "Dr. Iyer", Room: "101", Type: models.SessionTheory, ClassType: models.EntryFixed},
	}
	unscheduled := []models.UnscheduledSession{
		{ClassName: "CSE-2-B", Subject: "Algorithms", Reason: "no feasible slot"},
	}
	require.NoError(t, repo.ReplaceAll(context.Background(), "inst-1", entries, unscheduled))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryReplaceAllRollsBackOnInsertError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM timetable_entries").
		WithArgs("inst-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("DELETE FROM unscheduled_sessions").
		WithArgs("inst-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO timetable_entries").
		WillReturnError(fmt.Errorf("connection reset"))
	mock.ExpectRollback()

	entries := []models.TimetableEntry{
		{Day: "Monday", Time: "09:00-10:00", ClassName: "CSE-2-A", Subject: "Data Structures", Faculty: "Dr. Rao", Room: "101", Type: models.SessionTheory, ClassType: models.EntryRegular},
	}
	err := repo.ReplaceAll(context.Background(), "inst-1", entries, nil)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryReplaceAllEmptyClearsStore(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM timetable_entries").
		WithArgs("inst-1").
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectExec("DELETE FROM unscheduled_sessions").
		WithArgs("inst-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceAll(context.Background(), "inst-1", nil, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListAll(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "day", "time", "class_name", "subject", "faculty", "room", "type", "class_type", "created_at"}).
		AddRow("entry-1", "Monday", "09:00-10:00", "CSE-2-A", "Data Structures", "Dr. Rao", "101", "Theory", "regular", now).
		AddRow("entry-2", "Monday", "10:00-11:00", "CSE-2-A", "Algorithms", "Dr. Iyer", "102", "Theory", "regular", now)
	mock.ExpectQuery("SELECT id, day, time").
		WithArgs("inst-1").
		WillReturnRows(rows)

	entries, err := repo.ListAll(context.Background(), "inst-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "CSE-2-A", entries[0].ClassName)
	assert.Equal(t, models.SessionTheory, entries[1].Type)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTimetableRepositoryListUnscheduled(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTimetableRepository(db)

	rows := sqlmock.NewRows([]string{"class_name", "subject", "reason"}).
		AddRow("CSE-2-B", "Algorithms", "no feasible slot")
	mock.ExpectQuery("SELECT class_name, subject, reason").
		WithArgs("inst-1").
		WillReturnRows(rows)

	sessions, err := repo.ListUnscheduled(context.Background(), "inst-1")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "no feasible slot", sessions[0].Reason)
	require.NoError(t, mock.ExpectationsWereMet())
}
