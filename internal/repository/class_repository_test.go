package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohitbihal/smart-classroom-api/internal/models"
)

func TestClassRepositoryListWithFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "name", "branch", "year", "section", "student_count", "block", "created_at", "updated_at"}).
		AddRow("class-1", "CSE-2-A", "CSE", 2, "A", 60, nil, now, now)
	mock.ExpectQuery("SELECT id, name, branch").
		WithArgs("CSE", 2).
		WillReturnRows(rows)
	mock.ExpectQuery("SELECT COUNT").
		WithArgs("CSE", 2).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	classes, total, err := repo.List(context.Background(), models.ClassFilter{Branch: "CSE", Year: 2})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, classes, 1)
	assert.Equal(t, "CSE-2-A", classes[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("INSERT INTO classes").
		WillReturnResult(sqlmock.NewResult(1, 1))

	class := &models.Class{Name: "CSE-2-A", Branch: "CSE", Year: 2, Section: "A", StudentCount: 60}
	require.NoError(t, repo.Create(context.Background(), class))
	assert.NotEmpty(t, class.ID)
	assert.False(t, class.CreatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClassRepositoryUpdateMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("UPDATE classes").
		WillReturnResult(sqlmock.NewResult(0, 0))

	class := &models.Class{ID: "ghost", Name: "CSE-2-A", Branch: "CSE", Year: 2, Section: "A"}
	err := repo.Update(context.Background(), class)
	assert.Error(t, err)
}

func TestClassRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectExec("DELETE FROM classes").
		WithArgs("class-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "class-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
