package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohitbihal/smart-classroom-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestConstraintRepositoryGet(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConstraintRepository(db)

	doc := models.DefaultConstraints()
	payload, err := json.Marshal(doc)
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"document"}).AddRow(payload)
	mock.ExpectQuery("SELECT document FROM scheduling_constraints").
		WithArgs("inst-1").
		WillReturnRows(rows)

	constraints, err := repo.Get(context.Background(), "inst-1")
	require.NoError(t, err)
	assert.Equal(t, "09:00", constraints.TimePreferences.StartTime)
	assert.Len(t, constraints.TimePreferences.WorkingDays, 5)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConstraintRepositoryGetMissingRowsPassThrough(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConstraintRepository(db)

	mock.ExpectQuery("SELECT document FROM scheduling_constraints").
		WithArgs("inst-missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "inst-missing")
	// Services rely on the bare sentinel to seed defaults.
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConstraintRepositoryGetRejectsCorruptDocument(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConstraintRepository(db)

	rows := sqlmock.NewRows([]string{"document"}).AddRow([]byte("{not json"))
	mock.ExpectQuery("SELECT document FROM scheduling_constraints").
		WithArgs("inst-1").
		WillReturnRows(rows)

	_, err := repo.Get(context.Background(), "inst-1")
	assert.Error(t, err)
}

func TestConstraintRepositoryReplace(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewConstraintRepository(db)

	mock.ExpectExec("INSERT INTO scheduling_constraints").
		WithArgs("inst-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	doc := models.DefaultConstraints()
	require.NoError(t, repo.Replace(context.Background(), "inst-1", &doc))
	require.NoError(t, mock.ExpectationsWereMet())
}
